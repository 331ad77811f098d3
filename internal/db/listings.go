package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canpog/realestate-app-sub000/internal/types"
)

const listingColumns = `id, agent_id, title, description, type, status, price, currency,
	city, district, address, rooms, sqm, age, floor, features, images, lat, lng,
	created_at, updated_at`

// CreateListing inserts l and fills its ID and timestamps.
func (db *DB) CreateListing(ctx context.Context, l *types.Listing) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO listings (agent_id, title, description, type, status, price, currency,
		                       city, district, address, rooms, sqm, age, floor, features, images, lat, lng)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING id, created_at, updated_at`,
		l.AgentID, l.Title, l.Description, l.Type, string(l.Status), l.Price, l.Currency,
		l.City, l.District, l.Address, l.Rooms, l.Sqm, l.Age, l.Floor, nonNil(l.Features), nonNil(l.Images), l.Lat, l.Lng,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// GetListing retrieves one of the agent's listings. Returns nil, nil when absent.
func (db *DB) GetListing(ctx context.Context, agentID, id uuid.UUID) (*types.Listing, error) {
	l, err := scanListing(db.pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1 AND agent_id = $2`, id, agentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return l, nil
}

// ListListings returns the agent's listings, newest first.
func (db *DB) ListListings(ctx context.Context, agentID uuid.UUID, filters types.ListingFilters) ([]types.Listing, error) {
	w := listingWhere(agentID, filters)
	page := w.page(filters.Limit, filters.Offset)
	query := fmt.Sprintf(`SELECT %s FROM listings %s ORDER BY created_at DESC %s`, listingColumns, w.clause(), page)

	rows, err := db.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	listings := []types.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

// UpdateListing writes every editable field of l. Status and images are
// changed through their own calls.
func (db *DB) UpdateListing(ctx context.Context, l *types.Listing) error {
	err := db.pool.QueryRow(ctx,
		`UPDATE listings SET title = $1, description = $2, type = $3, price = $4, currency = $5,
		        city = $6, district = $7, address = $8, rooms = $9, sqm = $10, age = $11, floor = $12,
		        features = $13, lat = $14, lng = $15, updated_at = NOW()
		 WHERE id = $16 AND agent_id = $17
		 RETURNING updated_at`,
		l.Title, l.Description, l.Type, l.Price, l.Currency,
		l.City, l.District, l.Address, l.Rooms, l.Sqm, l.Age, l.Floor,
		nonNil(l.Features), l.Lat, l.Lng, l.ID, l.AgentID,
	).Scan(&l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	return nil
}

// UpdateListingStatus moves a listing to status only if it is still in
// from, so concurrent moves cannot skip the transition rules.
func (db *DB) UpdateListingStatus(ctx context.Context, agentID, id uuid.UUID, from, status types.ListingStatus) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE listings SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND agent_id = $3 AND status = $4`,
		string(status), id, agentID, string(from))
	if err != nil {
		return fmt.Errorf("failed to update listing status: %w", err)
	}
	return expectOne(tag)
}

// AppendListingImage adds an image URL to the listing.
func (db *DB) AppendListingImage(ctx context.Context, agentID, id uuid.UUID, url string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE listings SET images = array_append(images, $1), updated_at = NOW()
		 WHERE id = $2 AND agent_id = $3`,
		url, id, agentID)
	if err != nil {
		return fmt.Errorf("failed to append listing image: %w", err)
	}
	return expectOne(tag)
}

// DeleteListing removes a listing and its exports.
func (db *DB) DeleteListing(ctx context.Context, agentID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1 AND agent_id = $2`, id, agentID)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	return expectOne(tag)
}

func scanListing(row pgx.Row) (*types.Listing, error) {
	var l types.Listing
	var status string
	err := row.Scan(
		&l.ID, &l.AgentID, &l.Title, &l.Description, &l.Type, &status, &l.Price, &l.Currency,
		&l.City, &l.District, &l.Address, &l.Rooms, &l.Sqm, &l.Age, &l.Floor, &l.Features, &l.Images, &l.Lat, &l.Lng,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = types.ListingStatus(status)
	l.Features = nonNil(l.Features)
	l.Images = nonNil(l.Images)
	return &l, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
