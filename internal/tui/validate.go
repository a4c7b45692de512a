// ABOUTME: HTTP connection validation for the board backend.
// ABOUTME: Tests the endpoint by fetching a single post anonymously.
package tui

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ValidateConnection tests the backend by listing a single post. The context
// allows cancellation when the user quits during validation.
func ValidateConnection(ctx context.Context, baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}

	baseURL = strings.TrimRight(baseURL, "/")

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/api/posts?skip=0&limit=1", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
