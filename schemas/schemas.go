// Package schemas holds the JSON Schemas for CLI input and service output.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names.
const (
	ValuationRequest = "valuation_request.schema.json"
	ValuationResult  = "valuation_result.schema.json"
	MatchResponse    = "match_response.schema.json"
)
