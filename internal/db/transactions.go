package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/canpog/realestate-app-sub000/internal/types"
)

// CreateTransaction stores a sale together with its commission breakdown.
func (db *DB) CreateTransaction(ctx context.Context, tx *types.Transaction) error {
	breakdown, err := json.Marshal(tx.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO transactions (agent_id, listing_id, client_id, sale_price, commission_rate, agent_split, breakdown)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		tx.AgentID, tx.ListingID, tx.ClientID, tx.SalePrice, tx.CommissionRate, tx.AgentSplit, breakdown,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// ListTransactions returns the agent's transactions, newest first.
func (db *DB) ListTransactions(ctx context.Context, agentID uuid.UUID) ([]types.Transaction, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, agent_id, listing_id, client_id, sale_price, commission_rate, agent_split, breakdown, created_at
		 FROM transactions
		 WHERE agent_id = $1
		 ORDER BY created_at DESC`,
		agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	items := []types.Transaction{}
	for rows.Next() {
		var tx types.Transaction
		var breakdown []byte
		if err := rows.Scan(&tx.ID, &tx.AgentID, &tx.ListingID, &tx.ClientID, &tx.SalePrice,
			&tx.CommissionRate, &tx.AgentSplit, &breakdown, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if err := json.Unmarshal(breakdown, &tx.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal breakdown: %w", err)
		}
		items = append(items, tx)
	}
	return items, rows.Err()
}
