// ABOUTME: Typed HTTP client for the board REST API.
// ABOUTME: Attaches bearer auth, negotiates JSON, and normalizes errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxErrorBody caps how much of an error response body is read.
const maxErrorBody = 1 << 20

// TokenProvider yields the current bearer credential, if any. Implementations
// must read fresh state on every call; the client never caches the result.
type TokenProvider interface {
	Token() (string, bool)
}

// Client sends authenticated JSON requests to the board backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	log        zerolog.Logger
}

// New creates a client for the given base URL. tokens may be nil for a client
// that never authenticates.
func New(baseURL string, timeout time.Duration, tokens TokenProvider, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		log:        log,
	}
}

// BaseURL returns the normalized backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do issues a request against the backend API and decodes the response.
//
// body, when non-nil, is JSON-encoded; out, when non-nil, receives the decoded
// JSON response. A 204 response (or nil out) resolves to no value. When out is
// a *string and the response is not JSON, the raw body text is assigned
// instead. Any non-2xx response is returned as *Error with its message
// resolved by extractMessage.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Str("method", method).Str("path", path).Str("request_id", requestID).
			Err(err).Msg("api request failed")
		return fmt.Errorf("api request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().Str("method", method).Str("path", path).Str("request_id", requestID).
		Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newError(resp.StatusCode, respBody)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if text, ok := out.(*string); ok && !isJSON(resp.Header.Get("Content-Type")) {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		*text = string(raw)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func isJSON(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mediaType) == "application/json"
}
