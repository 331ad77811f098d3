// Package finance computes the money side of a closed sale: agency
// commission, VAT on the commission, title-deed fees and the agent/office split.
package finance

import (
	"fmt"
	"math"
)

// Rates applied when a transaction does not override them.
const (
	DefaultCommissionRate = 0.02
	VATRate               = 0.20
	TitleDeedFeeRate      = 0.04
	DefaultAgentSplit     = 0.5
)

// Breakdown is the full set of amounts derived from a sale price. All amounts
// are whole currency units.
type Breakdown struct {
	SalePrice       int64   `json:"sale_price"`
	CommissionRate  float64 `json:"commission_rate"`
	Commission      int64   `json:"commission"`
	CommissionVAT   int64   `json:"commission_vat"`
	CommissionTotal int64   `json:"commission_total"`
	TitleDeedFee    int64   `json:"title_deed_fee"`
	BuyerDeedShare  int64   `json:"buyer_deed_share"`
	SellerDeedShare int64   `json:"seller_deed_share"`
	AgentSplit      float64 `json:"agent_split"`
	AgentShare      int64   `json:"agent_share"`
	OfficeShare     int64   `json:"office_share"`
}

// InputError reports an out-of-range calculation input.
type InputError struct {
	Field string
	Value float64
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Value)
}

// Calculate derives a Breakdown. A zero rate or split selects the default.
func Calculate(salePrice int64, rate, agentSplit float64) (Breakdown, error) {
	if salePrice < 0 {
		return Breakdown{}, &InputError{Field: "sale_price", Value: float64(salePrice)}
	}
	if rate == 0 {
		rate = DefaultCommissionRate
	}
	if rate < 0 || rate > 1 {
		return Breakdown{}, &InputError{Field: "commission_rate", Value: rate}
	}
	if agentSplit == 0 {
		agentSplit = DefaultAgentSplit
	}
	if agentSplit < 0 || agentSplit > 1 {
		return Breakdown{}, &InputError{Field: "agent_split", Value: agentSplit}
	}

	price := float64(salePrice)
	commission := round(price * rate)
	vat := round(float64(commission) * VATRate)
	deedFee := round(price * TitleDeedFeeRate)
	buyerDeed := deedFee / 2
	agentShare := round(float64(commission) * agentSplit)

	return Breakdown{
		SalePrice:       salePrice,
		CommissionRate:  rate,
		Commission:      commission,
		CommissionVAT:   vat,
		CommissionTotal: commission + vat,
		TitleDeedFee:    deedFee,
		BuyerDeedShare:  buyerDeed,
		SellerDeedShare: deedFee - buyerDeed,
		AgentSplit:      agentSplit,
		AgentShare:      agentShare,
		OfficeShare:     commission - agentShare,
	}, nil
}

func round(v float64) int64 {
	return int64(math.Round(v))
}
