package valuation

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/canpog/realestate-app-sub000/internal/coerce"
	"github.com/canpog/realestate-app-sub000/internal/llm"
	"github.com/canpog/realestate-app-sub000/internal/obs"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

const operation = "valuation"

// Valuator runs one model call per valuation.
type Valuator struct {
	client   llm.Client
	logger   *slog.Logger
	recorder obs.Recorder
	tier     llm.ModelTier
}

// NewValuator creates a Valuator. A nil recorder disables metrics.
func NewValuator(client llm.Client, logger *slog.Logger, recorder obs.Recorder) *Valuator {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = obs.NopRecorder{}
	}
	return &Valuator{client: client, logger: logger, recorder: recorder, tier: llm.TierStandard}
}

// Valuate fills missing params from listing (when given), validates them and
// asks the model for a valuation. Only invalid params produce an error; model
// and parse failures are logged and yield Normalize(nil).
func (v *Valuator) Valuate(ctx context.Context, params types.ValuationParams, listing *types.Listing) (types.ValuationResult, error) {
	merged := MergeListing(params, listing)
	if err := ValidateParams(merged); err != nil {
		return types.ValuationResult{}, err
	}

	system, user := BuildPrompt(merged, listing)
	started := time.Now()
	raw, err := v.client.GenerateJSON(ctx, llm.Request{System: system, Prompt: user, Tier: v.tier})
	if err != nil {
		v.recorder.ObserveLLM(operation, obs.OutcomeUpstreamError, time.Since(started))
		v.logger.ErrorContext(ctx, "valuation model call failed",
			"operation", operation,
			"listing_id", listingID(listing),
			"city", merged.City,
			"error", err)
		return Normalize(nil), nil
	}

	obj, err := ParseValuation(raw)
	if err != nil {
		v.recorder.ObserveLLM(operation, obs.OutcomeParseError, time.Since(started))
		v.logger.ErrorContext(ctx, "valuation response unreadable",
			"operation", operation,
			"listing_id", listingID(listing),
			"response_bytes", len(raw),
			"error", err)
		return Normalize(nil), nil
	}

	result := Normalize(obj)
	outcome := obs.OutcomeOK
	if result.EstimatedMarketPrice == 0 {
		outcome = obs.OutcomeEmpty
	}
	v.recorder.ObserveLLM(operation, outcome, time.Since(started))
	v.logger.InfoContext(ctx, "valuation finished",
		"listing_id", listingID(listing),
		"estimate", result.EstimatedMarketPrice)
	return result, nil
}

// ParseValuation decodes the first JSON object in a model answer.
func ParseValuation(raw string) (*coerce.Object, error) {
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

// MergeListing fills params left empty from the stored listing.
func MergeListing(params types.ValuationParams, listing *types.Listing) types.ValuationParams {
	if listing == nil {
		return params
	}
	if params.City == "" {
		params.City = listing.City
	}
	if params.District == "" {
		params.District = listing.District
	}
	if params.Type == "" {
		params.Type = listing.Type
	}
	if params.Rooms == "" {
		params.Rooms = listing.Rooms
	}
	if params.Sqm <= 0 {
		params.Sqm = listing.Sqm
	}
	if params.Age == nil {
		params.Age = listing.Age
	}
	if params.Floor == nil {
		params.Floor = listing.Floor
	}
	if len(params.Features) == 0 {
		params.Features = listing.Features
	}
	return params
}

// ValidateParams checks the params before any model call.
func ValidateParams(params types.ValuationParams) error {
	err := params.Validate()
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: map[string]string{"params": err.Error()}}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonName(fe.Field())] = fe.Tag()
	}
	return &ValidationError{Fields: fields}
}

// ValidationError lists invalid params by JSON field name and failed rule.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" ("+e.Fields[name]+")")
	}
	return "invalid valuation params: " + strings.Join(parts, ", ")
}

// ParseError describes why a model answer could not be read.
type ParseError struct {
	Reason string
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return "valuation response " + e.Reason + ": " + e.Cause.Error()
	}
	return "valuation response " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func jsonName(field string) string {
	return strings.ToLower(field)
}

func listingID(listing *types.Listing) string {
	if listing == nil {
		return ""
	}
	return listing.ID.String()
}
