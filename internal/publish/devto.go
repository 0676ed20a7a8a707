package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mktdept/content-pipeline/internal/config"
)

// DefaultDevToBaseURL is the production Dev.to API endpoint.
const DefaultDevToBaseURL = "https://dev.to/api"

// devToTimeout bounds one article creation call.
const devToTimeout = 60 * time.Second

// DevToClient publishes articles through the Dev.to REST API.
type DevToClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewDevToClient creates a Dev.to client with the production endpoint.
func NewDevToClient(apiKey string) *DevToClient {
	return &DevToClient{
		apiKey:  apiKey,
		baseURL: DefaultDevToBaseURL,
		client:  &http.Client{Timeout: devToTimeout},
	}
}

// WithBaseURL overrides the API endpoint (tests).
func (c *DevToClient) WithBaseURL(baseURL string) *DevToClient {
	c.baseURL = baseURL
	return c
}

type devToArticle struct {
	Title        string   `json:"title"`
	BodyMarkdown string   `json:"body_markdown"`
	Published    bool     `json:"published"`
	CanonicalURL string   `json:"canonical_url,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

type devToRequest struct {
	Article devToArticle `json:"article"`
}

type devToResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Publish creates a published Dev.to article from the transformed content.
// The original post URL is carried as the canonical URL so search engines
// credit the source.
func (c *DevToClient) Publish(ctx context.Context, profile *config.Profile, content Content) (*Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("Dev.to API key is not configured")
	}
	if content.Title == "" {
		return nil, fmt.Errorf("Dev.to article requires a title")
	}

	// Dev.to caps article tags at four.
	tags := content.Tags
	if len(tags) > 4 {
		tags = tags[:4]
	}

	payload := devToRequest{
		Article: devToArticle{
			Title:        content.Title,
			BodyMarkdown: content.Body,
			Published:    true,
			CanonicalURL: content.CanonicalURL,
			Tags:         tags,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Dev.to request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/articles", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create Dev.to request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &Result{Message: fmt.Sprintf("Dev.to request failed: %v", err)}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Result{
			Message: fmt.Sprintf("Dev.to returned HTTP %d: %s", resp.StatusCode, excerpt(respBody)),
		}, nil
	}

	var parsed devToResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return &Result{Success: true, Message: "article published to Dev.to"}, nil
	}
	if parsed.Error != "" {
		return &Result{Message: fmt.Sprintf("Dev.to error: %s", parsed.Error)}, nil
	}
	return &Result{
		Success: true,
		Message: "article published to Dev.to",
		PostURL: parsed.URL,
	}, nil
}
