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

// DefaultGetLateBaseURL is the production GetLate API endpoint.
const DefaultGetLateBaseURL = "https://getlate.dev/api/v1"

// getLateTimeout bounds one publish call.
const getLateTimeout = 60 * time.Second

// GetLateClient publishes through the GetLate unified social API.
type GetLateClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGetLateClient creates a GetLate client with the production endpoint.
func NewGetLateClient(apiKey string) *GetLateClient {
	return &GetLateClient{
		apiKey:  apiKey,
		baseURL: DefaultGetLateBaseURL,
		client:  &http.Client{Timeout: getLateTimeout},
	}
}

// WithBaseURL overrides the API endpoint (tests).
func (c *GetLateClient) WithBaseURL(baseURL string) *GetLateClient {
	c.baseURL = baseURL
	return c
}

type getLatePlatform struct {
	Platform  string `json:"platform"`
	AccountID string `json:"accountId"`
}

type getLateRequest struct {
	Content   string            `json:"content"`
	Platforms []getLatePlatform `json:"platforms"`
}

type getLateResponse struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Publish posts content to the profile's platform account via GetLate.
func (c *GetLateClient) Publish(ctx context.Context, profile *config.Profile, content Content) (*Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("GetLate API key is not configured")
	}
	if profile.AccountID == "" {
		return nil, fmt.Errorf("profile %s has no GetLate account id", profile.ID)
	}

	payload := getLateRequest{
		Content: content.Body,
		Platforms: []getLatePlatform{
			{Platform: profile.Platform, AccountID: profile.AccountID},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GetLate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/posts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create GetLate request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &Result{Message: fmt.Sprintf("GetLate request failed: %v", err)}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Result{
			Message: fmt.Sprintf("GetLate returned HTTP %d: %s", resp.StatusCode, excerpt(respBody)),
		}, nil
	}

	var parsed getLateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		// A 2xx with an unreadable body still means the post went out.
		return &Result{Success: true, Message: "published via GetLate"}, nil
	}
	if parsed.Error != "" {
		return &Result{Message: fmt.Sprintf("GetLate error: %s", parsed.Error)}, nil
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("published to %s via GetLate", profile.Platform),
		PostURL: parsed.URL,
	}, nil
}

// excerpt trims a response body for inclusion in a result message.
func excerpt(body []byte) string {
	const max = 200
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
