package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canpog/realestate-app-sub000/internal/types"
)

const clientColumns = `id, agent_id, name, email, phone, preferred_type, preferred_cities,
	min_rooms, budget_min, budget_max, notes, created_at, updated_at`

// CreateClient inserts c and fills its ID and timestamps.
func (db *DB) CreateClient(ctx context.Context, c *types.Client) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO clients (agent_id, name, email, phone, preferred_type, preferred_cities,
		                      min_rooms, budget_min, budget_max, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		c.AgentID, c.Name, c.Email, c.Phone, c.PreferredType, nonNil(c.PreferredCities),
		c.MinRooms, c.BudgetMin, c.BudgetMax, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetClient retrieves one of the agent's clients. Returns nil, nil when absent.
func (db *DB) GetClient(ctx context.Context, agentID, id uuid.UUID) (*types.Client, error) {
	c, err := scanClient(db.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND agent_id = $2`, id, agentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// ListClients returns the agent's clients ordered by name.
func (db *DB) ListClients(ctx context.Context, agentID uuid.UUID) ([]types.Client, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE agent_id = $1 ORDER BY name`, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := []types.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// UpdateClient writes every editable field of c.
func (db *DB) UpdateClient(ctx context.Context, c *types.Client) error {
	err := db.pool.QueryRow(ctx,
		`UPDATE clients SET name = $1, email = $2, phone = $3, preferred_type = $4,
		        preferred_cities = $5, min_rooms = $6, budget_min = $7, budget_max = $8,
		        notes = $9, updated_at = NOW()
		 WHERE id = $10 AND agent_id = $11
		 RETURNING updated_at`,
		c.Name, c.Email, c.Phone, c.PreferredType, nonNil(c.PreferredCities),
		c.MinRooms, c.BudgetMin, c.BudgetMax, c.Notes, c.ID, c.AgentID,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

// DeleteClient removes a client with its notes and follow-ups.
func (db *DB) DeleteClient(ctx context.Context, agentID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1 AND agent_id = $2`, id, agentID)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return expectOne(tag)
}

// CreateNote adds a note to a client.
func (db *DB) CreateNote(ctx context.Context, n *types.Note) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO client_notes (client_id, agent_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		n.ClientID, n.AgentID, n.Body,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// ListNotes returns a client's notes, newest first.
func (db *DB) ListNotes(ctx context.Context, agentID, clientID uuid.UUID) ([]types.Note, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, client_id, agent_id, body, created_at
		 FROM client_notes
		 WHERE client_id = $1 AND agent_id = $2
		 ORDER BY created_at DESC`,
		clientID, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []types.Note{}
	for rows.Next() {
		var n types.Note
		if err := rows.Scan(&n.ID, &n.ClientID, &n.AgentID, &n.Body, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func scanClient(row pgx.Row) (*types.Client, error) {
	var c types.Client
	err := row.Scan(
		&c.ID, &c.AgentID, &c.Name, &c.Email, &c.Phone, &c.PreferredType, &c.PreferredCities,
		&c.MinRooms, &c.BudgetMin, &c.BudgetMax, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.PreferredCities = nonNil(c.PreferredCities)
	return &c, nil
}
