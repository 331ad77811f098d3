package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canpog/realestate-app-sub000/internal/types"
)

// AgentRecord is an agent row including its password hash.
type AgentRecord struct {
	types.Agent
	PasswordHash string
}

const agentColumns = `id, name, email, phone, password_hash, created_at, updated_at`

// CreateAgent inserts an agent. Emails are stored lower-cased; a taken
// email yields ErrDuplicate.
func (db *DB) CreateAgent(ctx context.Context, name, email, phone, passwordHash string) (*AgentRecord, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO agents (name, email, phone, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+agentColumns,
		name, normalizeEmail(email), phone, passwordHash,
	)
	a, err := scanAgent(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	return a, nil
}

// GetAgent retrieves an agent by ID. Returns nil, nil when absent.
func (db *DB) GetAgent(ctx context.Context, id uuid.UUID) (*AgentRecord, error) {
	a, err := scanAgent(db.pool.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return a, nil
}

// GetAgentByEmail retrieves an agent by email. Returns nil, nil when absent.
func (db *DB) GetAgentByEmail(ctx context.Context, email string) (*AgentRecord, error) {
	if email == "" {
		return nil, nil
	}
	a, err := scanAgent(db.pool.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE email = $1`, normalizeEmail(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent by email: %w", err)
	}
	return a, nil
}

// UpdateAgentPassword replaces an agent's password hash.
func (db *DB) UpdateAgentPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE agents SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return expectOne(tag)
}

func scanAgent(row pgx.Row) (*AgentRecord, error) {
	var a AgentRecord
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
