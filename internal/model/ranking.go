package model

// RankOutcome tags which path the ranking pipeline took. Degraded
// outcomes still carry a well-formed result — callers inspect the tag,
// they never handle an error.
type RankOutcome string

const (
	RankOK          RankOutcome = "ok"          // model scored the candidates
	RankUnavailable RankOutcome = "unavailable" // no API key configured
	RankFallback    RankOutcome = "fallback"    // model replied, JSON unusable
	RankError       RankOutcome = "error"       // transport or call failure
	RankSkipped     RankOutcome = "skipped"     // nothing to rank
)

// ScoreInfo is the per-listing annotation from the ranking model.
type ScoreInfo struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// RankedListing is an original listing annotated with its match score.
// AI is nil on degraded paths where the model never scored anything.
type RankedListing struct {
	Listing
	AI *ScoreInfo `json:"_ai,omitempty"`
}

// RankMeta describes the pipeline outcome for one ranking request.
type RankMeta struct {
	AI       RankOutcome `json:"ai"`
	Reason   string      `json:"reason,omitempty"`
	Model    string      `json:"model,omitempty"`
	Sent     int         `json:"sent,omitempty"`
	Returned int         `json:"returned,omitempty"`
}

// RankingResult is the pipeline's unconditional output: a bounded,
// ordered listing slice plus outcome metadata. Returned never exceeds
// min(maxResults, candidate count).
type RankingResult struct {
	Ranked []RankedListing `json:"results"`
	Meta   RankMeta        `json:"meta"`
}
