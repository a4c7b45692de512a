// ABOUTME: Error type and message extraction for backend API responses.
// ABOUTME: Resolves error text from detail, message, raw body, then status.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error is returned for any non-2xx backend API response.
type Error struct {
	Status  int
	Reason  string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// errorBody captures the structured fields a backend error body may carry.
// FastAPI-style backends use "detail"; others use "message".
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

// extractMessage resolves a user-facing message from an error response body.
// Priority: structured "detail" field, structured "message" field, raw body
// text, then "<status> <reason>".
func extractMessage(status int, body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		var detail string
		if json.Unmarshal(parsed.Detail, &detail) == nil && strings.TrimSpace(detail) != "" {
			return detail
		}
		if strings.TrimSpace(parsed.Message) != "" {
			return parsed.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}

// newError builds an Error from a response status and body.
func newError(status int, body []byte) *Error {
	return &Error{
		Status:  status,
		Reason:  http.StatusText(status),
		Message: extractMessage(status, body),
	}
}
