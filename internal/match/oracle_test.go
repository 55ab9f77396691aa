package match

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liancohen0104/Rentmate/pkg/anthropic"
)

type fakeAnthropicClient struct {
	resp *anthropic.MessageResponse
	err  error
	req  anthropic.MessageRequest
}

func (f *fakeAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.req = req
	return f.resp, f.err
}

func TestClaudeOracleRank(t *testing.T) {
	client := &fakeAnthropicClient{
		resp: &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{
				{Type: "text", Text: `{"items":[]}`},
			},
		},
	}
	oracle := NewClaudeOracle(client, "claude-haiku-4-5-20251001", 0)

	text, err := oracle.Rank(context.Background(), "rank these", 2048)
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, text)

	assert.Equal(t, "claude-haiku-4-5-20251001", client.req.Model)
	assert.Equal(t, int64(2048), client.req.MaxTokens)
	require.NotNil(t, client.req.Temperature)
	assert.Equal(t, rankTemperature, *client.req.Temperature)
	require.Len(t, client.req.Messages, 1)
	assert.Equal(t, "user", client.req.Messages[0].Role)
	assert.Equal(t, "rank these", client.req.Messages[0].Content)
}

func TestClaudeOracleRankError(t *testing.T) {
	client := &fakeAnthropicClient{err: eris.New("api down")}
	oracle := NewClaudeOracle(client, "m", 0)

	_, err := oracle.Rank(context.Background(), "p", 1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank request")
}

func TestClaudeOracleModel(t *testing.T) {
	oracle := NewClaudeOracle(nil, "some-model", 0)
	assert.Equal(t, "some-model", oracle.Model())
}
