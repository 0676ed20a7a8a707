package llm

import (
	"context"
	"fmt"
	"strings"
)

// Agent is the content-transform collaborator the pipeline depends on.
type Agent interface {
	// TransformContent rewrites content according to prompt and returns the
	// transformed text.
	TransformContent(ctx context.Context, prompt, content string) (string, error)
	// IsConfigured reports whether the agent can make API calls.
	IsConfigured() bool
	// Close releases underlying resources.
	Close() error
}

// GeminiAgent implements Agent on top of the Gemini client.
type GeminiAgent struct {
	client Client
}

// NewAgent creates the transform agent. An empty API key yields an
// unconfigured agent whose IsConfigured reports false; callers must fail
// fast rather than silently skip transforms.
func NewAgent(ctx context.Context, config *Config, apiKey string) (*GeminiAgent, error) {
	if apiKey == "" {
		return &GeminiAgent{}, nil
	}
	client, err := NewClient(ctx, config, apiKey)
	if err != nil {
		return nil, err
	}
	return &GeminiAgent{client: client}, nil
}

// IsConfigured reports whether an API key was supplied.
func (a *GeminiAgent) IsConfigured() bool {
	return a.client != nil
}

// TransformContent sends the prompt and source content to the model and
// returns the rewritten text.
func (a *GeminiAgent) TransformContent(ctx context.Context, prompt, content string) (string, error) {
	if !a.IsConfigured() {
		return "", fmt.Errorf("AI agent is not configured: missing API key")
	}

	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\n---\n\n")
	sb.WriteString(content)

	result, err := a.client.GenerateContent(ctx, sb.String(), TierStandard)
	if err != nil {
		return "", fmt.Errorf("content transform failed: %w", err)
	}
	return strings.TrimSpace(result), nil
}

// Close releases the underlying client, if any.
func (a *GeminiAgent) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}
