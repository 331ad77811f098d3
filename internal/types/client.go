package types

import (
	"time"

	"github.com/google/uuid"
)

// Client is a CRM contact with stated property preferences.
type Client struct {
	ID              uuid.UUID `json:"id"`
	AgentID         uuid.UUID `json:"agent_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	PreferredType   string    `json:"preferred_type,omitempty"`
	PreferredCities []string  `json:"preferred_cities"`
	MinRooms        int       `json:"min_rooms,omitempty"`
	BudgetMin       *int64    `json:"budget_min,omitempty"`
	BudgetMax       *int64    `json:"budget_max,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasBudget reports whether the client stated a positive maximum budget.
func (c *Client) HasBudget() bool {
	return c.BudgetMax != nil && *c.BudgetMax > 0
}

// NormalizeBudget clears negative bounds to zero and swaps an inverted range.
func (c *Client) NormalizeBudget() {
	if c.BudgetMin != nil && *c.BudgetMin < 0 {
		zero := int64(0)
		c.BudgetMin = &zero
	}
	if c.BudgetMax != nil && *c.BudgetMax < 0 {
		zero := int64(0)
		c.BudgetMax = &zero
	}
	if c.BudgetMin != nil && c.BudgetMax != nil && *c.BudgetMax > 0 && *c.BudgetMin > *c.BudgetMax {
		c.BudgetMin, c.BudgetMax = c.BudgetMax, c.BudgetMin
	}
}

// ClientRequest is the create/update payload for a client.
type ClientRequest struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Email           string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string   `json:"phone,omitempty"`
	PreferredType   string   `json:"preferred_type,omitempty"`
	PreferredCities []string `json:"preferred_cities,omitempty"`
	MinRooms        int      `json:"min_rooms,omitempty" validate:"gte=0"`
	BudgetMin       *int64   `json:"budget_min,omitempty"`
	BudgetMax       *int64   `json:"budget_max,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// Validate validates the ClientRequest.
func (r *ClientRequest) Validate() error {
	return validate.Struct(r)
}

// ApplyTo copies the request onto client and normalizes the budget.
func (r *ClientRequest) ApplyTo(client *Client) {
	client.Name = r.Name
	client.Email = r.Email
	client.Phone = r.Phone
	client.PreferredType = r.PreferredType
	client.PreferredCities = r.PreferredCities
	if client.PreferredCities == nil {
		client.PreferredCities = []string{}
	}
	client.MinRooms = r.MinRooms
	client.BudgetMin = r.BudgetMin
	client.BudgetMax = r.BudgetMax
	client.Notes = r.Notes
	client.NormalizeBudget()
}

// Note is a timestamped free-text entry on a client.
type Note struct {
	ID        uuid.UUID `json:"id"`
	ClientID  uuid.UUID `json:"client_id"`
	AgentID   uuid.UUID `json:"agent_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteRequest is the payload for adding a note.
type NoteRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

// Validate validates the NoteRequest.
func (r *NoteRequest) Validate() error {
	return validate.Struct(r)
}
