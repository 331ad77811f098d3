package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canpog/realestate-app-sub000/internal/types"
)

const followUpColumns = `id, agent_id, client_id, title, description, due_at, status,
	completed_at, created_at, updated_at`

// CreateFollowUp inserts f as pending and fills its ID and timestamps.
func (db *DB) CreateFollowUp(ctx context.Context, f *types.FollowUp) error {
	if f.Status == "" {
		f.Status = types.FollowUpPending
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO follow_ups (agent_id, client_id, title, description, due_at, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		f.AgentID, f.ClientID, f.Title, f.Description, f.DueAt, string(f.Status),
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create follow-up: %w", err)
	}
	return nil
}

// GetFollowUp retrieves one of the agent's follow-ups. Returns nil, nil when absent.
func (db *DB) GetFollowUp(ctx context.Context, agentID, id uuid.UUID) (*types.FollowUp, error) {
	f, err := scanFollowUp(db.pool.QueryRow(ctx,
		`SELECT `+followUpColumns+` FROM follow_ups WHERE id = $1 AND agent_id = $2`, id, agentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get follow-up: %w", err)
	}
	return f, nil
}

// ListFollowUps returns the agent's follow-ups, soonest due first.
func (db *DB) ListFollowUps(ctx context.Context, agentID uuid.UUID, filters types.FollowUpFilters) ([]types.FollowUp, error) {
	w := followUpWhere(agentID, filters)
	query := fmt.Sprintf(`SELECT %s FROM follow_ups %s ORDER BY due_at ASC`, followUpColumns, w.clause())

	rows, err := db.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	defer rows.Close()

	items := []types.FollowUp{}
	for rows.Next() {
		f, err := scanFollowUp(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan follow-up: %w", err)
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// UpdateFollowUpStatus moves a follow-up from one status to another. A
// done follow-up gets its completion time stamped.
func (db *DB) UpdateFollowUpStatus(ctx context.Context, agentID, id uuid.UUID, from, status types.FollowUpStatus) error {
	var completedAt *time.Time
	if status == types.FollowUpDone {
		now := time.Now().UTC()
		completedAt = &now
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE follow_ups SET status = $1, completed_at = $2, updated_at = NOW()
		 WHERE id = $3 AND agent_id = $4 AND status = $5`,
		string(status), completedAt, id, agentID, string(from))
	if err != nil {
		return fmt.Errorf("failed to update follow-up status: %w", err)
	}
	return expectOne(tag)
}

func scanFollowUp(row pgx.Row) (*types.FollowUp, error) {
	var f types.FollowUp
	var status string
	err := row.Scan(&f.ID, &f.AgentID, &f.ClientID, &f.Title, &f.Description, &f.DueAt, &status,
		&f.CompletedAt, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.Status = types.FollowUpStatus(status)
	return &f, nil
}
