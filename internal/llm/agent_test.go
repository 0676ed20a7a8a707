package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	lastPrompt string
	lastTier   ModelTier
	response   string
	err        error
	closed     bool
}

func (c *stubClient) GenerateContent(_ context.Context, prompt string, tier ModelTier) (string, error) {
	c.lastPrompt = prompt
	c.lastTier = tier
	return c.response, c.err
}

func (c *stubClient) GetModel(tier ModelTier) string { return string(tier) }
func (c *stubClient) Close() error                   { c.closed = true; return nil }

func TestNewAgent_EmptyKeyIsUnconfigured(t *testing.T) {
	agent, err := NewAgent(context.Background(), DefaultConfig(), "")
	require.NoError(t, err)

	assert.False(t, agent.IsConfigured())
	_, err = agent.TransformContent(context.Background(), "p", "c")
	assert.Error(t, err)
	assert.NoError(t, agent.Close())
}

func TestTransformContent(t *testing.T) {
	client := &stubClient{response: "  rewritten  "}
	agent := &GeminiAgent{client: client}

	out, err := agent.TransformContent(context.Background(), "Rewrite this.", "original body")
	require.NoError(t, err)

	assert.Equal(t, "rewritten", out)
	assert.Equal(t, TierStandard, client.lastTier)
	// Prompt and content are joined with a separator, prompt first.
	assert.Contains(t, client.lastPrompt, "Rewrite this.")
	assert.Contains(t, client.lastPrompt, "---")
	assert.Contains(t, client.lastPrompt, "original body")
	assert.Less(t,
		len("Rewrite this."),
		len(client.lastPrompt)-len("original body"),
	)
}

func TestAgent_Close(t *testing.T) {
	client := &stubClient{}
	agent := &GeminiAgent{client: client}

	require.NoError(t, agent.Close())
	assert.True(t, client.closed)
}
