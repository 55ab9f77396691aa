package match

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Liancohen0104/Rentmate/pkg/anthropic"
)

// rankTemperature keeps scoring near-deterministic across identical
// requests.
const rankTemperature = 0.2

// ClaudeOracle adapts the Anthropic client to the Oracle interface.
// One CreateMessage round-trip per call, bounded by timeout; a timeout
// surfaces as an ordinary transport error and lands on the error rung.
type ClaudeOracle struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// NewClaudeOracle builds an oracle for the given model. timeout <= 0
// disables the client-side bound (the transport's own limits still
// apply).
func NewClaudeOracle(client anthropic.Client, model string, timeout time.Duration) *ClaudeOracle {
	return &ClaudeOracle{client: client, model: model, timeout: timeout}
}

// Model returns the model identifier used for ranking.
func (o *ClaudeOracle) Model() string {
	return o.model
}

// Rank sends the prompt and returns the raw response text. No retries.
func (o *ClaudeOracle) Rank(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	temp := rankTemperature
	resp, err := o.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       o.model,
		MaxTokens:   maxTokens,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "match: rank request")
	}
	return resp.Text(), nil
}
