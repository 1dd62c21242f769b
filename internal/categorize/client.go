package categorize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ignite/bookmark-sync/internal/domain"
	"github.com/ignite/bookmark-sync/internal/pkg/httpretry"
)

// Client calls the remote categorization endpoint: a single HTTP POST of
// {items, purposes} returning {groups}.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a categorization API client. The endpoint is the full
// URL of the categorize route.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: 30 * time.Second,
		}, 2),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

type categorizeRequest struct {
	Items    []domain.RawItem `json:"items"`
	Purposes []domain.Purpose `json:"purposes"`
}

type categorizeResponse struct {
	Groups []domain.CategorizedGroup `json:"groups"`
}

// Categorize performs the remote call. Any transport failure or non-2xx
// response is returned as an error; the policy layer decides what to do
// with it.
func (c *Client) Categorize(ctx context.Context, items []domain.RawItem, purposes []domain.Purpose) ([]domain.CategorizedGroup, error) {
	body, err := json.Marshal(categorizeRequest{Items: items, Purposes: purposes})
	if err != nil {
		return nil, fmt.Errorf("marshal categorize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create categorize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("categorize request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read categorize response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("categorize API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed categorizeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode categorize response: %w", err)
	}
	return parsed.Groups, nil
}
