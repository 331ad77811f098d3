package db

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/canpog/realestate-app-sub000/internal/types"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// where accumulates AND-ed conditions with positional arguments.
type where struct {
	conditions []string
	args       []any
}

// add appends a condition; format holds one %d for the argument position.
func (w *where) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.conditions = append(w.conditions, fmt.Sprintf(format, len(w.args)))
}

func (w *where) clause() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conditions, " AND ")
}

// page appends LIMIT/OFFSET arguments and returns their SQL.
func (w *where) page(limit, offset int) string {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	w.args = append(w.args, limit, offset)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

func listingWhere(agentID uuid.UUID, f types.ListingFilters) *where {
	w := &where{}
	w.add("agent_id = $%d", agentID)
	if f.Status != "" {
		w.add("status = $%d", string(f.Status))
	}
	if f.City != "" {
		w.add("lower(city) = lower($%d)", f.City)
	}
	if f.Type != "" {
		w.add("type = $%d", f.Type)
	}
	if f.MinPrice != nil {
		w.add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add("price <= $%d", *f.MaxPrice)
	}
	return w
}

func followUpWhere(agentID uuid.UUID, f types.FollowUpFilters) *where {
	w := &where{}
	w.add("agent_id = $%d", agentID)
	if f.Status != "" {
		w.add("status = $%d", string(f.Status))
	}
	if f.DueBefore != nil {
		w.add("due_at < $%d", *f.DueBefore)
	}
	return w
}
