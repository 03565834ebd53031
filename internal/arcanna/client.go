// Package arcanna implements the HTTP boundary to the Arcanna
// platform: an authenticated JSON client plus one thin method per
// platform operation. Success bodies are passed through verbatim; the
// caller decides whether to decode them.
package arcanna

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// KeyKind selects which credential authenticates a request. The
// management key administers resources, metrics and agentic workflows;
// the input key is scoped to event ingestion, feedback and job control.
type KeyKind int

const (
	ManagementKey KeyKind = iota
	InputKey
)

const apiKeyHeader = "x-arcanna-api-key"

// APIError is a non-2xx platform response or a malformed body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("arcanna API error: HTTP %d: %s", e.StatusCode, e.Message)
}

// Client issues authenticated JSON requests against one Arcanna host.
// It is immutable after construction and safe for concurrent use; it
// holds no per-call state.
type Client struct {
	baseURL       string
	managementKey string
	inputKey      string
	httpClient    *http.Client
	logger        *zap.Logger
}

// Options tunes Client construction.
type Options struct {
	// Timeout bounds a full request/response round trip. Zero means
	// the default of 60 seconds.
	Timeout time.Duration
	// HTTPClient overrides the underlying transport, used by tests.
	HTTPClient *http.Client
}

// NewClient builds a Client for the given host and credentials. If the
// input key is empty the management key authenticates ingestion calls
// as well.
func NewClient(host, managementKey, inputKey string, logger *zap.Logger, opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if inputKey == "" {
		inputKey = managementKey
	}
	return &Client{
		baseURL:       strings.TrimRight(host, "/"),
		managementKey: managementKey,
		inputKey:      inputKey,
		httpClient:    httpClient,
		logger:        logger,
	}
}

// Do issues one JSON round trip. A nil body sends no request body.
// Non-2xx responses and transport failures return *APIError; success
// bodies are returned as raw JSON. Nothing is retried: a cancelled
// context surfaces as the wrapped context error.
func (c *Client) Do(ctx context.Context, method, path string, key KeyKind, params url.Values, body any) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey(key))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("platform request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: truncate(string(respBody), 400)}
	}
	return json.RawMessage(respBody), nil
}

// Get issues an authenticated GET.
func (c *Client) Get(ctx context.Context, path string, key KeyKind, params url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, key, params, nil)
}

// Post issues an authenticated POST with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, key KeyKind, params url.Values, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, key, params, body)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, key KeyKind, params url.Values, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, key, params, body)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string, key KeyKind, params url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, key, params, nil)
}

func (c *Client) apiKey(key KeyKind) string {
	if key == InputKey {
		return c.inputKey
	}
	return c.managementKey
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
