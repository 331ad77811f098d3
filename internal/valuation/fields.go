// Package valuation asks the model for a market valuation and reshapes
// whatever JSON it returns into a fixed ValuationResult.
package valuation

// Field names an output field of a ValuationResult.
type Field string

// Output fields resolved from the model answer.
const (
	FieldEstimatedPrice   Field = "estimated_market_price"
	FieldPriceMin         Field = "price_range.min"
	FieldPriceMax         Field = "price_range.max"
	FieldPriceRange       Field = "price_range"
	FieldPriceScore       Field = "price_score"
	FieldRentalYield      Field = "rental_yield"
	FieldMarketComparison Field = "market_comparison"
	FieldRecommendations  Field = "recommendations"
)

// FieldKeys lists, per output field, the source keys probed in priority
// order. Dotted keys address nested objects. The first usable value wins.
var FieldKeys = map[Field][]string{
	FieldEstimatedPrice: {
		"estimated_market_price", "listing_price", "market_price",
		"estimated_price", "estimated_value", "price", "value",
	},
	FieldPriceMin: {
		"price_range.min", "price_range.minimum", "price_range.low",
		"min_price", "price_min", "minimum_price", "range.min",
	},
	FieldPriceMax: {
		"price_range.max", "price_range.maximum", "price_range.high",
		"max_price", "price_max", "maximum_price", "range.max",
	},
	FieldPriceRange: {
		"price_range", "range", "estimated_range",
	},
	FieldPriceScore: {
		"price_score", "score", "price_rating", "rating",
	},
	FieldRentalYield: {
		"rental_yield", "rental_yield_percentage", "gross_rental_yield", "yield",
	},
	FieldMarketComparison: {
		"market_comparison", "market_analysis", "comparison", "analysis",
	},
	FieldRecommendations: {
		"recommendations", "recommendation", "suggestions", "advice",
	},
}

// rentalYieldObjectKeys are probed when rental_yield is itself an object.
var rentalYieldObjectKeys = []string{
	"rental_yield_percentage", "percentage", "gross_yield", "yield", "value", "rate",
}

// rentKeys let the yield be derived from a rent figure inside the object.
var (
	monthlyRentKeys = []string{"monthly_rent", "estimated_monthly_rent", "rent"}
	annualRentKeys  = []string{"annual_rent", "yearly_rent"}
)
