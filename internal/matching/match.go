package matching

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/canpog/realestate-app-sub000/internal/llm"
	"github.com/canpog/realestate-app-sub000/internal/obs"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

const operation = "matching"

// Fixed summaries shown to the agent.
const (
	NoCandidatesSummary = "Müşterinin kriterlerine uygun aday ilan bulunamadı."
	FailedSummary       = "Eşleştirme şu anda yapılamadı. Lütfen daha sonra tekrar deneyin."
	defaultSummaryFmt   = "%d ilan değerlendirildi, %d eşleşme bulundu."
)

// Matcher ranks listings for a client with one model call per run.
type Matcher struct {
	client   llm.Client
	logger   *slog.Logger
	recorder obs.Recorder
	tier     llm.ModelTier
}

// NewMatcher creates a Matcher. A nil recorder disables metrics.
func NewMatcher(client llm.Client, logger *slog.Logger, recorder obs.Recorder) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = obs.NopRecorder{}
	}
	return &Matcher{
		client:   client,
		logger:   logger,
		recorder: recorder,
		tier:     llm.TierStandard,
	}
}

// Match filters listings down to candidates, asks the model to rank them and
// returns at most MaxMatches results sorted by score. With no candidates the
// model is not called. Model and parse failures yield an empty result and are
// logged, never returned. A nil client has no candidates.
func (m *Matcher) Match(ctx context.Context, client *types.Client, listings []types.Listing, notes ...string) types.MatchResponse {
	if client == nil {
		return types.MatchResponse{Matches: []types.MatchResult{}, Summary: NoCandidatesSummary}
	}
	candidates := FilterCandidates(client, listings)
	if len(candidates) == 0 {
		return types.MatchResponse{Matches: []types.MatchResult{}, Summary: NoCandidatesSummary}
	}

	system, user := BuildPrompt(client, candidates, notes...)
	started := time.Now()
	raw, err := m.client.GenerateJSON(ctx, llm.Request{System: system, Prompt: user, Tier: m.tier})
	if err != nil {
		m.recorder.ObserveLLM(operation, obs.OutcomeUpstreamError, time.Since(started))
		m.logger.ErrorContext(ctx, "matching model call failed",
			"operation", operation,
			"client_id", client.ID,
			"candidates", len(candidates),
			"error", err)
		return failed()
	}

	known := make(map[string]bool, len(candidates))
	for i := range candidates {
		known[candidates[i].ID.String()] = true
	}

	parsed := ParseMatches(raw, known)
	if parsed.Err != nil {
		m.recorder.ObserveLLM(operation, obs.OutcomeParseError, time.Since(started))
		m.logger.ErrorContext(ctx, "matching response unreadable",
			"operation", operation,
			"client_id", client.ID,
			"response_bytes", len(raw),
			"error", parsed.Err)
		return failed()
	}

	matches := Rank(parsed.Matches)

	outcome := obs.OutcomeOK
	if len(matches) == 0 {
		outcome = obs.OutcomeEmpty
	}
	m.recorder.ObserveLLM(operation, outcome, time.Since(started))
	m.logger.InfoContext(ctx, "matching finished",
		"client_id", client.ID,
		"candidates", len(candidates),
		"matches", len(matches))

	summary := parsed.Summary
	if summary == "" {
		summary = fmt.Sprintf(defaultSummaryFmt, len(candidates), len(matches))
	}
	return types.MatchResponse{Matches: matches, Summary: summary}
}

// Rank sorts matches by score, highest first, keeping model order for ties,
// and truncates to MaxMatches.
func Rank(matches []types.MatchResult) []types.MatchResult {
	out := make([]types.MatchResult, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > MaxMatches {
		out = out[:MaxMatches]
	}
	return out
}

func failed() types.MatchResponse {
	return types.MatchResponse{Matches: []types.MatchResult{}, Summary: FailedSummary}
}
