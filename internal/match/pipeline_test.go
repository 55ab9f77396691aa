package match

import (
	"context"
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liancohen0104/Rentmate/internal/model"
)

// fakeOracle returns a canned response or error and records what it saw.
type fakeOracle struct {
	response  string
	err       error
	prompt    string
	maxTokens int64
	calls     int
}

func (f *fakeOracle) Rank(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	f.calls++
	f.prompt = prompt
	f.maxTokens = maxTokens
	return f.response, f.err
}

func (f *fakeOracle) Model() string { return "fake-model" }

func makeListings(n int) []model.Listing {
	out := make([]model.Listing, n)
	for i := range out {
		out[i] = model.Listing{ID: int64(i + 1), City: "Tel Aviv"}
	}
	return out
}

func TestRankEmptyCandidates(t *testing.T) {
	p := New(&fakeOracle{})

	got := p.Rank(context.Background(), model.PreferenceProfile{}, nil, 10)

	assert.Equal(t, model.RankSkipped, got.Meta.AI)
	assert.Equal(t, "no apartments", got.Meta.Reason)
	require.NotNil(t, got.Ranked)
	assert.Empty(t, got.Ranked)
}

func TestRankNoOracle(t *testing.T) {
	p := New(nil)
	listings := makeListings(15)

	got := p.Rank(context.Background(), model.PreferenceProfile{}, listings, 10)

	assert.Equal(t, model.RankUnavailable, got.Meta.AI)
	assert.Equal(t, "ranking model not configured", got.Meta.Reason)
	require.Len(t, got.Ranked, 10)
	// Input order preserved, first k kept.
	for i, r := range got.Ranked {
		assert.Equal(t, int64(i+1), r.ID)
		assert.Nil(t, r.AI)
	}
}

func TestRankOracleError(t *testing.T) {
	oracle := &fakeOracle{err: eris.New("boom")}
	p := New(oracle)
	listings := makeListings(3)

	got := p.Rank(context.Background(), model.PreferenceProfile{}, listings, 10)

	assert.Equal(t, model.RankError, got.Meta.AI)
	assert.Equal(t, "exception while calling ranking model", got.Meta.Reason)
	assert.Equal(t, []int64{1, 2, 3}, idsOf(got.Ranked))
	assert.Equal(t, 1, oracle.calls)
}

func TestRankInvalidResponse(t *testing.T) {
	oracle := &fakeOracle{response: "sorry, I cannot rank these"}
	p := New(oracle)
	listings := makeListings(5)

	got := p.Rank(context.Background(), model.PreferenceProfile{}, listings, 3)

	assert.Equal(t, model.RankFallback, got.Meta.AI)
	assert.Equal(t, "invalid AI JSON", got.Meta.Reason)
	assert.Equal(t, []int64{1, 2, 3}, idsOf(got.Ranked))
}

func TestRankSuccess(t *testing.T) {
	oracle := &fakeOracle{
		response: `{"items":[
			{"id":"2","score":0.9,"reason":"best match"},
			{"id":"1","score":0.6,"reason":"close"},
			{"id":"3","score":0.1,"reason":"far"}
		]}`,
	}
	p := New(oracle)
	listings := makeListings(3)

	got := p.Rank(context.Background(), model.PreferenceProfile{City: "Tel Aviv"}, listings, 10)

	assert.Equal(t, model.RankOK, got.Meta.AI)
	assert.Equal(t, "fake-model", got.Meta.Model)
	assert.Equal(t, 3, got.Meta.Sent)
	assert.Equal(t, 3, got.Meta.Returned)
	assert.Equal(t, []int64{2, 1, 3}, idsOf(got.Ranked))

	// Scores are non-ascending.
	for i := 1; i < len(got.Ranked); i++ {
		require.NotNil(t, got.Ranked[i].AI)
		assert.LessOrEqual(t, got.Ranked[i].AI.Score, got.Ranked[i-1].AI.Score)
	}

	// The prompt carries the profile and every candidate id.
	assert.Contains(t, oracle.prompt, "Tel Aviv")
	for _, l := range listings {
		assert.Contains(t, oracle.prompt, fmt.Sprintf(`"id": %d`, l.ID))
	}
}

func TestRankSuccessBounded(t *testing.T) {
	oracle := &fakeOracle{
		response: `{"items":[{"id":"1","score":0.9,"reason":"r"},{"id":"2","score":0.8,"reason":"r"}]}`,
	}
	p := New(oracle)

	got := p.Rank(context.Background(), model.PreferenceProfile{}, makeListings(2), 10)

	// Returned is exactly min(k, n).
	assert.Len(t, got.Ranked, 2)
	assert.Equal(t, 2, got.Meta.Returned)
}

func TestRankDefaultMaxResults(t *testing.T) {
	p := New(nil)

	got := p.Rank(context.Background(), model.PreferenceProfile{}, makeListings(25), 0)
	assert.Len(t, got.Ranked, DefaultMaxResults)
}

func TestOutputBudget(t *testing.T) {
	tests := []struct {
		candidates int
		want       int64
	}{
		{0, 1024},
		{1, 1024},
		{12, 1024},
		{20, 1536},
		{100, 6656},
		{200, 8192},
		{1000, 8192},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, outputBudget(tt.candidates), "candidates=%d", tt.candidates)
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	profile := model.PreferenceProfile{City: "Haifa", MinRooms: ptrFloat64(2)}
	minimal := projectAll(makeListings(3))

	assert.Equal(t, buildPrompt(profile, minimal), buildPrompt(profile, minimal))
}
