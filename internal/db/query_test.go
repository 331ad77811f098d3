package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/canpog/realestate-app-sub000/internal/types"
)

func TestListingWhere(t *testing.T) {
	agentID := uuid.New()
	minPrice, maxPrice := int64(1_000_000), int64(3_000_000)

	w := listingWhere(agentID, types.ListingFilters{
		Status:   types.ListingActive,
		City:     "İstanbul",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
	})

	assert.Equal(t,
		"WHERE agent_id = $1 AND status = $2 AND lower(city) = lower($3) AND price >= $4 AND price <= $5",
		w.clause())
	assert.Equal(t, []any{agentID, "active", "İstanbul", minPrice, maxPrice}, w.args)
}

func TestListingWhere_OnlyAgent(t *testing.T) {
	w := listingWhere(uuid.Nil, types.ListingFilters{})
	assert.Equal(t, "WHERE agent_id = $1", w.clause())
	assert.Len(t, w.args, 1)
}

func TestFollowUpWhere(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w := followUpWhere(uuid.Nil, types.FollowUpFilters{Status: types.FollowUpPending, DueBefore: &due})
	assert.Equal(t, "WHERE agent_id = $1 AND status = $2 AND due_at < $3", w.clause())
	assert.Equal(t, due, w.args[2])
}

func TestWherePage(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, 0, defaultPageSize, 0},
		{"capped", 500, 10, maxPageSize, 10},
		{"negative offset", 20, -3, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &where{}
			w.add("agent_id = $%d", "a")
			assert.Equal(t, "LIMIT $2 OFFSET $3", w.page(tt.limit, tt.offset))
			assert.Equal(t, []any{"a", tt.wantLimit, tt.wantOffset}, w.args)
		})
	}
}

func TestEmptyWhere(t *testing.T) {
	assert.Equal(t, "", (&where{}).clause())
}

func TestSchemaCoversTables(t *testing.T) {
	for _, table := range []string{"agents", "listings", "clients", "client_notes", "follow_ups", "transactions", "pdf_exports"} {
		assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
