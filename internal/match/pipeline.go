// Package match implements the listing-ranking pipeline: candidates are
// narrowed by distance, projected to a minimal shape, sent to an
// external ranking model and merged back into a bounded, explainable
// ordering. Every failure mode degrades to a well-formed result — the
// pipeline never returns an error to its caller.
package match

import (
	"context"

	"go.uber.org/zap"

	"github.com/Liancohen0104/Rentmate/internal/model"
)

// DefaultMaxResults bounds the ranking output when the caller does not
// say otherwise.
const DefaultMaxResults = 10

// Oracle is the external ranking model: one prompt in, raw text out.
// Implementations perform exactly one round-trip and do not retry.
type Oracle interface {
	Rank(ctx context.Context, prompt string, maxTokens int64) (string, error)
	Model() string
}

// Pipeline ranks candidate listings against a preference profile.
// A nil oracle is the recognized "unconfigured" state, not an error.
type Pipeline struct {
	oracle Oracle
}

// New creates a Pipeline. Pass a nil oracle when no ranking credential
// is configured; ranking then degrades to input-order truncation.
func New(oracle Oracle) *Pipeline {
	return &Pipeline{oracle: oracle}
}

// Rank runs the full ladder for one request. The result is always
// well-formed and holds at most maxResults listings regardless of which
// rung was taken; maxResults <= 0 falls back to DefaultMaxResults.
func (p *Pipeline) Rank(ctx context.Context, profile model.PreferenceProfile, candidates []model.Listing, maxResults int) model.RankingResult {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	if len(candidates) == 0 {
		return model.RankingResult{
			Ranked: []model.RankedListing{},
			Meta:   model.RankMeta{AI: model.RankSkipped, Reason: "no apartments"},
		}
	}

	if p.oracle == nil {
		return model.RankingResult{
			Ranked: passthrough(candidates, maxResults),
			Meta:   model.RankMeta{AI: model.RankUnavailable, Reason: "ranking model not configured"},
		}
	}

	minimal := projectAll(candidates)
	prompt := buildPrompt(profile, minimal)

	text, err := p.oracle.Rank(ctx, prompt, outputBudget(len(minimal)))
	if err != nil {
		zap.L().Error("match: ranking model call failed", zap.Error(err))
		return model.RankingResult{
			Ranked: passthrough(candidates, maxResults),
			Meta:   model.RankMeta{AI: model.RankError, Reason: "exception while calling ranking model"},
		}
	}

	scores, ok := parseScores(text)
	if !ok {
		zap.L().Warn("match: unusable ranking response", zap.Int("response_len", len(text)))
		return model.RankingResult{
			Ranked: passthrough(candidates, maxResults),
			Meta:   model.RankMeta{AI: model.RankFallback, Reason: "invalid AI JSON"},
		}
	}

	ranked := mergeRanked(candidates, scores, maxResults)
	return model.RankingResult{
		Ranked: ranked,
		Meta: model.RankMeta{
			AI:       model.RankOK,
			Model:    p.oracle.Model(),
			Sent:     len(minimal),
			Returned: len(ranked),
		},
	}
}

// passthrough keeps the first maxResults candidates in input order —
// the shared degraded path for the unavailable/error/fallback rungs.
func passthrough(listings []model.Listing, maxResults int) []model.RankedListing {
	out := make([]model.RankedListing, 0, len(listings))
	for _, l := range listings {
		out = append(out, model.RankedListing{Listing: l})
	}
	return capResults(out, maxResults)
}

// outputBudget sizes the model's max output tokens to the candidate
// count: roughly one scored line per listing plus envelope, clamped so
// small requests stay cheap and large ones never truncate mid-list.
func outputBudget(candidates int) int64 {
	tokens := int64(256 + 64*candidates)
	if tokens < 1024 {
		tokens = 1024
	}
	if tokens > 8192 {
		tokens = 8192
	}
	return tokens
}
