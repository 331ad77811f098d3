package types

import "github.com/google/uuid"

// ValuationParams describes the property being valued.
type ValuationParams struct {
	City     string   `json:"city" validate:"required"`
	District string   `json:"district,omitempty"`
	Type     string   `json:"type" validate:"required"`
	Rooms    string   `json:"rooms,omitempty"`
	Sqm      int      `json:"sqm" validate:"gt=0"`
	Age      *int     `json:"age,omitempty" validate:"omitempty,gte=0"`
	Floor    *int     `json:"floor,omitempty"`
	Features []string `json:"features,omitempty"`
}

// Validate validates the ValuationParams.
func (p *ValuationParams) Validate() error {
	return validate.Struct(p)
}

// ValuationRequest runs a valuation for a stored listing or, without a
// listing id, for manually entered parameters.
type ValuationRequest struct {
	ListingID *uuid.UUID      `json:"listing_id,omitempty"`
	Params    ValuationParams `json:"params"`
}

// PriceRange is an inclusive price band.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// ValuationResult is the normalized outcome of a valuation run.
type ValuationResult struct {
	EstimatedMarketPrice int64      `json:"estimated_market_price"`
	PriceRange           PriceRange `json:"price_range"`
	PriceScore           float64    `json:"price_score"`
	RentalYield          *float64   `json:"rental_yield"`
	MarketComparison     string     `json:"market_comparison"`
	Recommendations      string     `json:"recommendations"`
}
