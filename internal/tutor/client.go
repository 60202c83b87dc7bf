package tutor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client issues requests against the tutor service. Every call is a
// single best-effort exchange: no retries, no timeouts, no caching.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a Client for the given configuration.
func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		httpc:   &http.Client{},
	}
}

// Ingest submits a session action and returns the normalized result.
func (c *Client) Ingest(ctx context.Context, req IngestRequest) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal ingest request: %w", err)
	}
	raw, err := c.post(ctx, c.baseURL+"/session/ingest", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return normalize(raw)
}

// NextStep requests the server's next scheduled action for a session.
func (c *Client) NextStep(ctx context.Context, sessionID string) (*Result, error) {
	raw, err := c.post(ctx, c.sessionURL("next", sessionID), nil)
	if err != nil {
		return nil, err
	}
	return normalize(raw)
}

// ResetSession clears server-side session state. The acknowledgement
// body is returned unvalidated; it precedes a fresh start call.
func (c *Client) ResetSession(ctx context.Context, sessionID string) (json.RawMessage, error) {
	return c.post(ctx, c.sessionURL("reset", sessionID), nil)
}

func (c *Client) sessionURL(op, sessionID string) string {
	return fmt.Sprintf("%s/session/%s?session_id=%s", c.baseURL, op, url.QueryEscape(sessionID))
}

func (c *Client) post(ctx context.Context, u string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tutor service request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServiceError{Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return raw, nil
}

// normalize validates a raw result payload and decodes it into the
// shared Result shape, guaranteeing a non-nil UI.
func normalize(raw json.RawMessage) (*Result, error) {
	if err := validateResult(raw); err != nil {
		return nil, err
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &InvalidResponseError{Content: raw, Err: err}
	}
	if res.UI == nil {
		res.UI = &UIPayload{}
	}
	return &res, nil
}
