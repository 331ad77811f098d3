package matching

import (
	"math"
	"strings"

	"github.com/canpog/realestate-app-sub000/internal/coerce"
	"github.com/canpog/realestate-app-sub000/internal/llm"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

var (
	suggestionKeys = []string{"suggestions", "matches", "results", "recommendations"}
	listingIDKeys  = []string{"listing_id", "id", "listingId"}
	summaryKeys    = []string{"summary", "overall", "comment"}
)

// Parsed is the outcome of reading a model answer. Err is set when the answer
// held no usable JSON; Matches is then empty but never nil.
type Parsed struct {
	Matches []types.MatchResult
	Summary string
	Err     error
}

// ParseError describes why a model answer could not be read.
type ParseError struct {
	Reason string
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return "matching response " + e.Reason + ": " + e.Cause.Error()
	}
	return "matching response " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ParseMatches reads the first JSON object in raw and coerces its suggestion
// list. Entries whose listing id is not in known are dropped; a nil known set
// keeps every id. Duplicate ids keep their first occurrence. The function
// never fails: problems are reported through Parsed.Err.
func ParseMatches(raw string, known map[string]bool) Parsed {
	out := Parsed{Matches: make([]types.MatchResult, 0)}

	obj, err := decodeAnswer(raw)
	if err != nil {
		out.Err = err
		return out
	}

	if v, ok := coerce.FirstOf(obj, summaryKeys); ok {
		out.Summary = strings.TrimSpace(coerce.String(v))
	}

	list, ok := coerce.FirstOfFunc(obj, suggestionKeys, isArray)
	if !ok {
		return out
	}

	seen := make(map[string]bool)
	for _, item := range list.([]any) {
		entry, isObj := item.(*coerce.Object)
		if !isObj {
			continue
		}
		match, valid := matchFromEntry(entry)
		if !valid || seen[match.ListingID] {
			continue
		}
		if known != nil && !known[match.ListingID] {
			continue
		}
		seen[match.ListingID] = true
		out.Matches = append(out.Matches, match)
	}
	return out
}

func decodeAnswer(raw string) (*coerce.Object, error) {
	// A bare array of suggestion objects is accepted as the suggestion list.
	if cleaned := llm.CleanJSONBlock(raw); strings.HasPrefix(cleaned, "[") {
		obj, err := coerce.ParseObject([]byte(`{"suggestions":` + cleaned + `}`))
		if err == nil && holdsObjects(obj) {
			return obj, nil
		}
	}

	text := llm.ExtractJSONObject(raw)
	if text == "" {
		return nil, &ParseError{Reason: "contains no JSON object"}
	}
	obj, err := coerce.ParseObject([]byte(text))
	if err != nil {
		return nil, &ParseError{Reason: "is not valid JSON", Cause: err}
	}
	return obj, nil
}

func matchFromEntry(entry *coerce.Object) (types.MatchResult, bool) {
	idValue, _ := coerce.FirstOf(entry, listingIDKeys)
	id := strings.TrimSpace(coerce.String(idValue))
	if id == "" {
		return types.MatchResult{}, false
	}

	score, _ := entry.Get("score")
	reason, _ := entry.Get("reason")
	pros, _ := entry.Get("pros")
	cons, _ := entry.Get("cons")

	return types.MatchResult{
		ListingID: id,
		Score:     boundedScore(score),
		Reason:    strings.TrimSpace(coerce.String(reason)),
		Pros:      coerce.StringSlice(pros),
		Cons:      coerce.StringSlice(cons),
	}, true
}

// boundedScore reads "85", 85, 84.6 or "85%" as 85 and clamps to [0,100].
func boundedScore(v any) int {
	f := coerce.Clamp(coerce.Decimal(v, 0), 0, 100)
	return int(math.Round(f))
}

func holdsObjects(obj *coerce.Object) bool {
	list, _ := obj.Get("suggestions")
	items, _ := list.([]any)
	for _, item := range items {
		if _, ok := item.(*coerce.Object); ok {
			return true
		}
	}
	return false
}

func isArray(v any) bool {
	_, ok := v.([]any)
	return ok
}
