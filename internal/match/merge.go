package match

import (
	"sort"

	"github.com/Liancohen0104/Rentmate/internal/model"
)

// sentinelScore sorts unscored listings below anything the model could
// legitimately return (valid range is 0..1).
const sentinelScore = -1.0

// mergeRanked joins per-id scores back onto the original listings,
// stable-sorts descending by score and truncates to maxResults.
// Listings the model skipped get the sentinel and therefore always land
// at the bottom; ties preserve original order. Survivors are annotated
// with their score info, defaulting to zero/empty for unscored ones.
func mergeRanked(listings []model.Listing, scores map[string]model.ScoreInfo, maxResults int) []model.RankedListing {
	ranked := make([]model.RankedListing, len(listings))
	for i, l := range listings {
		ranked[i] = model.RankedListing{Listing: l}
	}

	sortScore := func(r model.RankedListing) float64 {
		if info, ok := scores[r.Key()]; ok {
			return info.Score
		}
		return sentinelScore
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return sortScore(ranked[i]) > sortScore(ranked[j])
	})

	ranked = capResults(ranked, maxResults)
	for i := range ranked {
		info := scores[ranked[i].Key()] // zero value when unscored
		ranked[i].AI = &model.ScoreInfo{Score: info.Score, Reason: info.Reason}
	}
	return ranked
}

// capResults truncates to at most n entries. n <= 0 yields an empty,
// non-nil slice so every ladder rung honors the same bound.
func capResults[T any](in []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(in) > n {
		in = in[:n]
	}
	if in == nil {
		in = []T{}
	}
	return in
}
