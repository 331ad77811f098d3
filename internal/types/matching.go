package types

// MatchResult is one ranked listing suggested for a client.
type MatchResult struct {
	ListingID string   `json:"listing_id"`
	Score     int      `json:"score"`
	Reason    string   `json:"reason"`
	Pros      []string `json:"pros"`
	Cons      []string `json:"cons"`
}

// MatchResponse is the payload returned by a matching run.
type MatchResponse struct {
	Matches []MatchResult `json:"matches"`
	Summary string        `json:"summary"`
}
