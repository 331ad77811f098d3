package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/canpog/realestate-app-sub000/internal/finance"
)

// Transaction records a closed sale and its commission breakdown.
type Transaction struct {
	ID             uuid.UUID         `json:"id"`
	AgentID        uuid.UUID         `json:"agent_id"`
	ListingID      uuid.UUID         `json:"listing_id"`
	ClientID       uuid.UUID         `json:"client_id"`
	SalePrice      int64             `json:"sale_price"`
	CommissionRate float64           `json:"commission_rate"`
	AgentSplit     float64           `json:"agent_split"`
	Breakdown      finance.Breakdown `json:"breakdown"`
	CreatedAt      time.Time         `json:"created_at"`
}

// TransactionRequest is the payload for recording a sale.
type TransactionRequest struct {
	ListingID      uuid.UUID `json:"listing_id" validate:"required"`
	ClientID       uuid.UUID `json:"client_id" validate:"required"`
	SalePrice      int64     `json:"sale_price" validate:"gt=0"`
	CommissionRate *float64  `json:"commission_rate,omitempty" validate:"omitempty,gt=0,lte=0.2"`
	AgentSplit     *float64  `json:"agent_split,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Validate validates the TransactionRequest.
func (r *TransactionRequest) Validate() error {
	return validate.Struct(r)
}

// PDFExport records a rendered listing brochure.
type PDFExport struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	AgentID   uuid.UUID `json:"agent_id"`
	ObjectKey string    `json:"object_key"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
