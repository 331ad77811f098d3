package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/canpog/realestate-app-sub000/internal/types"
)

// CreatePDFExport records an uploaded brochure.
func (db *DB) CreatePDFExport(ctx context.Context, e *types.PDFExport) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO pdf_exports (listing_id, agent_id, object_key, url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		e.ListingID, e.AgentID, e.ObjectKey, e.URL,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

// ListPDFExports returns a listing's exports, newest first.
func (db *DB) ListPDFExports(ctx context.Context, agentID, listingID uuid.UUID) ([]types.PDFExport, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, listing_id, agent_id, object_key, url, created_at
		 FROM pdf_exports
		 WHERE listing_id = $1 AND agent_id = $2
		 ORDER BY created_at DESC`,
		listingID, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	items := []types.PDFExport{}
	for rows.Next() {
		var e types.PDFExport
		if err := rows.Scan(&e.ID, &e.ListingID, &e.AgentID, &e.ObjectKey, &e.URL, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
