// Package matching ranks a client's candidate listings with a language model
// and turns the model's loosely formatted answer into MatchResults.
package matching

import "github.com/canpog/realestate-app-sub000/internal/types"

// Limits applied to every matching run.
const (
	// MaxCandidates caps how many listings are sent to the model.
	MaxCandidates = 50
	// MaxMatches caps how many ranked results are returned.
	MaxMatches = 10
	// budgetTolerancePercent lets listings up to 20% over budget through.
	budgetTolerancePercent = 120
)

// PriceCeiling returns the highest listing price considered for a client and
// whether a ceiling applies at all.
func PriceCeiling(client *types.Client) (int64, bool) {
	if client == nil || !client.HasBudget() {
		return 0, false
	}
	return *client.BudgetMax * budgetTolerancePercent / 100, true
}

// FilterCandidates keeps active listings priced within 1.2x the client's
// maximum budget (no price filter without a budget), preserving input order
// and stopping at MaxCandidates.
func FilterCandidates(client *types.Client, listings []types.Listing) []types.Listing {
	ceiling, hasCeiling := PriceCeiling(client)

	out := make([]types.Listing, 0, min(len(listings), MaxCandidates))
	for i := range listings {
		l := &listings[i]
		if !l.IsActive() {
			continue
		}
		if hasCeiling && l.Price > ceiling {
			continue
		}
		out = append(out, *l)
		if len(out) == MaxCandidates {
			break
		}
	}
	return out
}

// CandidateQuery returns the store filters that load a client's candidates:
// active listings under the price ceiling, at most MaxCandidates of them.
func CandidateQuery(client *types.Client) types.ListingFilters {
	filters := types.ListingFilters{Status: types.ListingActive, Limit: MaxCandidates}
	if ceiling, ok := PriceCeiling(client); ok {
		filters.MaxPrice = &ceiling
	}
	return filters
}
