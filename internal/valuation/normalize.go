package valuation

import (
	"math"
	"strings"

	"github.com/canpog/realestate-app-sub000/internal/coerce"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

// Fallback texts used when the model leaves a field out.
const (
	DefaultMarketComparison = "Bu bölge için yeterli piyasa karşılaştırma verisi bulunamadı."
	DefaultRecommendation   = "Bu mülk için ek öneri bulunmuyor."
)

// Bounds and defaults for derived values.
const (
	MaxPriceScore = 10.0
	rangeSpread   = 0.10
)

// Normalize reshapes a decoded model answer into a ValuationResult. It is a
// pure function: every field is resolved through FieldKeys, missing values
// fall back to defaults and a nil obj yields the default result.
func Normalize(obj *coerce.Object) types.ValuationResult {
	estimate, hasEstimate := resolvePrice(obj, FieldEstimatedPrice)
	lo, hasLo := resolvePrice(obj, FieldPriceMin)
	hi, hasHi := resolvePrice(obj, FieldPriceMax)
	if !hasLo || !hasHi {
		if rlo, rhi, ok := rangeFromValue(obj); ok {
			lo, hasLo = rlo, true
			hi, hasHi = rhi, true
		}
	}

	if !hasEstimate && hasLo && hasHi {
		estimate = (lo + hi) / 2
	}
	if !hasLo {
		lo = int64(math.Round(float64(estimate) * (1 - rangeSpread)))
	}
	if !hasHi {
		hi = int64(math.Round(float64(estimate) * (1 + rangeSpread)))
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	return types.ValuationResult{
		EstimatedMarketPrice: estimate,
		PriceRange:           types.PriceRange{Min: lo, Max: hi},
		PriceScore:           priceScore(obj),
		RentalYield:          rentalYield(obj, estimate),
		MarketComparison:     marketComparison(obj),
		Recommendations:      recommendations(obj),
	}
}

// resolvePrice returns the first positive amount under field's keys.
func resolvePrice(obj *coerce.Object, field Field) (int64, bool) {
	v, ok := coerce.FirstOfFunc(obj, FieldKeys[field], func(v any) bool {
		return coerce.Truthy(v) && coerce.Int(v, 0) > 0
	})
	if !ok {
		return 0, false
	}
	return coerce.Int(v, 0), true
}

// rangeFromValue reads a range written as [min, max] or "min - max".
func rangeFromValue(obj *coerce.Object) (int64, int64, bool) {
	v, ok := coerce.FirstOfFunc(obj, FieldKeys[FieldPriceRange], func(v any) bool {
		switch v.(type) {
		case []any, string:
			return coerce.Truthy(v)
		}
		return false
	})
	if !ok {
		return 0, 0, false
	}

	var parts []any
	switch t := v.(type) {
	case []any:
		parts = t
	case string:
		parts = splitRange(t)
	}
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, hi := coerce.Int(parts[0], 0), coerce.Int(parts[1], 0)
	if lo <= 0 || hi <= 0 {
		return 0, 0, false
	}
	return lo, hi, true
}

func splitRange(s string) []any {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '–' || r == '—'
	})
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func priceScore(obj *coerce.Object) float64 {
	v, ok := coerce.FirstOf(obj, FieldKeys[FieldPriceScore])
	if !ok {
		return 0
	}
	return coerce.Clamp(coerce.Decimal(v, 0), 0, MaxPriceScore)
}

func rentalYield(obj *coerce.Object, estimate int64) *float64 {
	v, ok := coerce.FirstOf(obj, FieldKeys[FieldRentalYield])
	if !ok {
		return nil
	}

	switch t := v.(type) {
	case *coerce.Object:
		if inner, found := coerce.FirstOf(t, rentalYieldObjectKeys); found {
			if _, nested := inner.(*coerce.Object); !nested {
				return yieldValue(inner)
			}
		}
		return yieldFromRent(t, estimate)
	case []any, bool:
		return nil
	default:
		return yieldValue(t)
	}
}

func yieldValue(v any) *float64 {
	f := coerce.Decimal(v, math.NaN())
	if math.IsNaN(f) || f < 0 {
		return nil
	}
	return &f
}

// yieldFromRent derives the gross yield percentage from a rent figure.
func yieldFromRent(obj *coerce.Object, estimate int64) *float64 {
	if estimate <= 0 {
		return nil
	}
	annual := int64(0)
	if v, ok := coerce.FirstOf(obj, annualRentKeys); ok {
		annual = coerce.Int(v, 0)
	} else if v, ok := coerce.FirstOf(obj, monthlyRentKeys); ok {
		annual = coerce.Int(v, 0) * 12
	}
	if annual <= 0 {
		return nil
	}
	pct := math.Round(float64(annual)/float64(estimate)*10000) / 100
	return &pct
}

func marketComparison(obj *coerce.Object) string {
	v, ok := coerce.FirstOf(obj, FieldKeys[FieldMarketComparison])
	if !ok {
		return DefaultMarketComparison
	}
	text := strings.TrimSpace(coerce.String(v))
	if text == "" {
		return DefaultMarketComparison
	}
	return text
}

func recommendations(obj *coerce.Object) string {
	v, ok := coerce.FirstOf(obj, FieldKeys[FieldRecommendations])
	if !ok {
		return DefaultRecommendation
	}
	return AssembleRecommendations(v)
}
