package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ListingStatus is the kanban column a listing sits in.
type ListingStatus string

// Listing statuses.
const (
	ListingDraft     ListingStatus = "draft"
	ListingActive    ListingStatus = "active"
	ListingReserved  ListingStatus = "reserved"
	ListingSold      ListingStatus = "sold"
	ListingWithdrawn ListingStatus = "withdrawn"
)

var listingTransitions = map[ListingStatus][]ListingStatus{
	ListingDraft:     {ListingActive, ListingWithdrawn},
	ListingActive:    {ListingReserved, ListingSold, ListingWithdrawn},
	ListingReserved:  {ListingActive, ListingSold, ListingWithdrawn},
	ListingWithdrawn: {ListingDraft, ListingActive},
	ListingSold:      nil,
}

// Valid reports whether s is a known status.
func (s ListingStatus) Valid() bool {
	_, ok := listingTransitions[s]
	return ok
}

// CanTransition reports whether a listing may move from s to next.
func (s ListingStatus) CanTransition(next ListingStatus) bool {
	for _, allowed := range listingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns next if the move is allowed, or a *TransitionError.
func (s ListingStatus) Transition(next ListingStatus) (ListingStatus, error) {
	if !s.CanTransition(next) {
		return s, &TransitionError{Entity: "listing", From: string(s), To: string(next)}
	}
	return next, nil
}

// TransitionError is returned when a status change is not allowed.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %q to %q", e.Entity, e.From, e.To)
}

// Listing is a property record owned by an agent.
type Listing struct {
	ID          uuid.UUID     `json:"id"`
	AgentID     uuid.UUID     `json:"agent_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Type        string        `json:"type"`
	Status      ListingStatus `json:"status"`
	Price       int64         `json:"price"`
	Currency    string        `json:"currency"`
	City        string        `json:"city"`
	District    string        `json:"district,omitempty"`
	Address     string        `json:"address,omitempty"`
	Rooms       string        `json:"rooms,omitempty"`
	Sqm         int           `json:"sqm,omitempty"`
	Age         *int          `json:"age,omitempty"`
	Floor       *int          `json:"floor,omitempty"`
	Features    []string      `json:"features"`
	Images      []string      `json:"images"`
	Lat         *float64      `json:"lat,omitempty"`
	Lng         *float64      `json:"lng,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsActive reports whether the listing is on the market. Records without a
// status predate the kanban board and count as active.
func (l *Listing) IsActive() bool {
	return l.Status == ListingActive || l.Status == ""
}

// ListingRequest is the create/update payload for a listing.
type ListingRequest struct {
	Title       string        `json:"title" validate:"required,max=200"`
	Description string        `json:"description,omitempty"`
	Type        string        `json:"type" validate:"required,oneof=apartment villa detached land commercial office"`
	Status      ListingStatus `json:"status,omitempty" validate:"omitempty,oneof=draft active reserved sold withdrawn"`
	Price       int64         `json:"price" validate:"gte=0"`
	Currency    string        `json:"currency,omitempty" validate:"omitempty,len=3"`
	City        string        `json:"city" validate:"required"`
	District    string        `json:"district,omitempty"`
	Address     string        `json:"address,omitempty"`
	Rooms       string        `json:"rooms,omitempty"`
	Sqm         int           `json:"sqm,omitempty" validate:"gte=0"`
	Age         *int          `json:"age,omitempty" validate:"omitempty,gte=0"`
	Floor       *int          `json:"floor,omitempty"`
	Features    []string      `json:"features,omitempty"`
	Lat         *float64      `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng         *float64      `json:"lng,omitempty" validate:"omitempty,longitude"`
}

// Validate validates the ListingRequest.
func (r *ListingRequest) Validate() error {
	return validate.Struct(r)
}

// ApplyTo copies the request onto listing, defaulting status and currency.
func (r *ListingRequest) ApplyTo(listing *Listing) {
	listing.Title = r.Title
	listing.Description = r.Description
	listing.Type = r.Type
	listing.Price = r.Price
	listing.City = r.City
	listing.District = r.District
	listing.Address = r.Address
	listing.Rooms = r.Rooms
	listing.Sqm = r.Sqm
	listing.Age = r.Age
	listing.Floor = r.Floor
	listing.Lat = r.Lat
	listing.Lng = r.Lng

	listing.Features = r.Features
	if listing.Features == nil {
		listing.Features = []string{}
	}
	if listing.Images == nil {
		listing.Images = []string{}
	}
	listing.Currency = r.Currency
	if listing.Currency == "" {
		listing.Currency = "TRY"
	}
	if listing.Status == "" {
		listing.Status = r.Status
		if listing.Status == "" {
			listing.Status = ListingDraft
		}
	}
}

// StatusRequest asks for a kanban move.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Validate validates the StatusRequest.
func (r *StatusRequest) Validate() error {
	return validate.Struct(r)
}

// ListingFilters narrows a listing query. Zero values mean "no filter".
type ListingFilters struct {
	Status   ListingStatus
	City     string
	Type     string
	MinPrice *int64
	MaxPrice *int64
	Limit    int
	Offset   int
}
