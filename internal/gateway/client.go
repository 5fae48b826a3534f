// Package gateway is the stateless request/response surface against the
// remote agent API. Each method maps one client intent to one HTTP call;
// retries are a caller decision, never taken here.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nullchimp/ai-agent-sub000/internal/domain"
)

const defaultTimeout = 60 * time.Second

// Client talks to the agent backend. All methods are safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger enables verbose request logging.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a gateway client for the given base URL. The API key is
// passed through opaquely on every request.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one request and returns the raw body on 2xx. Non-2xx statuses
// become *APIError so callers can tell backend rejection from transport
// failure.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	c.logger.Debugw("backend request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s failed: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: compact(string(payload), 240)}
	}
	return payload, nil
}

// CreateSession provisions a new backend session and returns its id.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	payload, err := c.do(ctx, http.MethodPost, "/sessions", map[string]any{})
	if err != nil {
		return "", err
	}
	var parsed struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("invalid create-session response: %w", err)
	}
	if strings.TrimSpace(parsed.SessionID) == "" {
		return "", fmt.Errorf("create-session response missing session_id")
	}
	return parsed.SessionID, nil
}

// VerifySession confirms a backend session still exists. A 404-class
// rejection comes back as ErrSessionNotFound; callers treat it as a
// recoverable unlink signal.
func (c *Client) VerifySession(ctx context.Context, sessionID string) error {
	_, err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/verify", nil)
	if err != nil && IsNotFound(err) {
		return fmt.Errorf("verify %s: %w", sessionID, ErrSessionNotFound)
	}
	return err
}

// DeleteSession removes a backend session. 404 means already gone and is
// treated as success.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/sessions/"+sessionID, nil)
	if err != nil && IsNotFound(err) {
		return nil
	}
	return err
}

// AskResult is the backend's reply to one user message.
type AskResult struct {
	Response  string   `json:"response"`
	UsedTools []string `json:"used_tools"`
}

// Ask sends one user message and returns the assistant reply.
func (c *Client) Ask(ctx context.Context, sessionID, query string) (*AskResult, error) {
	payload, err := c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/ask", map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	var result AskResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("invalid ask response: %w", err)
	}
	return &result, nil
}

// ListTools fetches the session's tool inventory. An empty list is a valid
// success result.
func (c *Client) ListTools(ctx context.Context, sessionID string) ([]domain.Tool, error) {
	payload, err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/tools", nil)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Tools []domain.Tool `json:"tools"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("invalid tools response: %w", err)
	}
	if parsed.Tools == nil {
		parsed.Tools = []domain.Tool{}
	}
	return parsed.Tools, nil
}

// SetToolEnabled flips one tool's enabled flag on the backend.
func (c *Client) SetToolEnabled(ctx context.Context, sessionID, toolName string, enabled bool) error {
	body := map[string]any{"tool_name": toolName, "enabled": enabled}
	_, err := c.do(ctx, http.MethodPatch, "/sessions/"+sessionID+"/tools", body)
	return err
}

// SetAllTools flips every tool in the session.
func (c *Client) SetAllTools(ctx context.Context, sessionID string, enabled bool) error {
	body := map[string]any{"enabled": enabled}
	_, err := c.do(ctx, http.MethodPatch, "/sessions/"+sessionID+"/tools/toggle-all", body)
	return err
}

// SetSourceTools flips every tool from one source.
func (c *Client) SetSourceTools(ctx context.Context, sessionID, source string, enabled bool) error {
	body := map[string]any{"enabled": enabled, "source": source}
	_, err := c.do(ctx, http.MethodPatch, "/sessions/"+sessionID+"/tools/toggle-source", body)
	return err
}

// SetDebugMode enables or disables debug event capture and returns the
// backend's acknowledged state.
func (c *Client) SetDebugMode(ctx context.Context, sessionID string, enabled bool) (bool, error) {
	payload, err := c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/debug/toggle", map[string]bool{"enabled": enabled})
	if err != nil {
		return false, err
	}
	var parsed struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return false, fmt.Errorf("invalid debug-toggle response: %w", err)
	}
	return parsed.Enabled, nil
}

// DebugEvents is the backend's debug listing: the captured events plus
// whether capture is currently on.
type DebugEvents struct {
	Events  []domain.DebugEvent `json:"events"`
	Enabled bool                `json:"enabled"`
}

// ListDebugEvents fetches captured debug events. Empty is a valid result.
func (c *Client) ListDebugEvents(ctx context.Context, sessionID string) (*DebugEvents, error) {
	payload, err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/debug", nil)
	if err != nil {
		return nil, err
	}
	var parsed DebugEvents
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("invalid debug-events response: %w", err)
	}
	if parsed.Events == nil {
		parsed.Events = []domain.DebugEvent{}
	}
	return &parsed, nil
}

// ClearDebugEvents discards the backend's captured events for the session.
func (c *Client) ClearDebugEvents(ctx context.Context, sessionID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/sessions/"+sessionID+"/debug", nil)
	return err
}

// compact collapses a payload to a single bounded line for error messages.
func compact(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
