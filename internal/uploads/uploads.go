// ABOUTME: Two-phase object upload: presign a write, transfer bytes directly.
// ABOUTME: Also resolves read URLs for object keys and validates files locally.
package uploads

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/j0chan/sesac-semi/internal/api"
)

// ValidationError reports a local file rejection. It is raised before any
// network call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// TransferError reports a failed PUT against the presigned storage URL. The
// storage service is a separate failure domain from the backend API, so this
// is never an api.Error.
type TransferError struct {
	Status int
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("object storage upload failed: %d %s", e.Status, http.StatusText(e.Status))
}

// PutDescriptor is a short-lived write grant returned by presign-put.
type PutDescriptor struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Method      string `json:"method"`
	ContentType string `json:"content_type"`
}

type presignPutRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type presignGetResponse struct {
	URL string `json:"url"`
}

// Service orchestrates uploads: local validation, presigned writes against
// object storage, and presigned reads for display.
type Service struct {
	api      *api.Client
	transfer *http.Client
	maxBytes int64
	prefix   string
}

// NewService creates an upload service. maxBytes and typePrefix come from
// configuration; the transfer client is separate from the API client because
// it talks to a different origin with no auth and no JSON framing.
func NewService(client *api.Client, timeout time.Duration, maxBytes int64, typePrefix string) *Service {
	return &Service{
		api:      client,
		transfer: &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		prefix:   typePrefix,
	}
}

// MaxBytes returns the configured size ceiling.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// ValidateFile checks a candidate file's declared type and size. Both checks
// are local and synchronous; a rejected file never reaches the network.
func (s *Service) ValidateFile(contentType string, size int64) error {
	if !strings.HasPrefix(contentType, s.prefix) {
		return &ValidationError{Reason: fmt.Sprintf("only %s* files can be uploaded", s.prefix)}
	}
	if size > s.maxBytes {
		return &ValidationError{Reason: fmt.Sprintf("file exceeds the %s upload limit", formatSize(s.maxBytes))}
	}
	return nil
}

// formatSize renders a byte count with the largest unit that divides it
// evenly, so a ceiling that is not a whole MiB is never rounded down.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MiB", n/(1<<20))
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KiB", n/(1<<10))
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// PresignPut requests a one-time write descriptor for the given file.
func (s *Service) PresignPut(ctx context.Context, filename, contentType string) (*PutDescriptor, error) {
	var desc PutDescriptor
	req := presignPutRequest{Filename: filename, ContentType: contentType}
	if err := s.api.Do(ctx, http.MethodPost, "/api/uploads/presign-put", req, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

// Transfer sends raw file bytes to the presigned URL using the descriptor's
// method and content type. A non-2xx response is a *TransferError.
func (s *Service) Transfer(ctx context.Context, desc *PutDescriptor, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, desc.Method, desc.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create transfer request: %w", err)
	}
	req.Header.Set("Content-Type", desc.ContentType)

	resp, err := s.transfer.Do(req)
	if err != nil {
		return fmt.Errorf("object storage request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransferError{Status: resp.StatusCode}
	}
	return nil
}

// Upload runs the write path end to end: presign-put, then transfer. The
// transfer never starts before the presign resolves. Returns the object key
// to carry into the post write.
func (s *Service) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	desc, err := s.PresignPut(ctx, filename, contentType)
	if err != nil {
		return "", err
	}
	if err := s.Transfer(ctx, desc, data); err != nil {
		return "", err
	}
	return desc.Key, nil
}

// PresignGet resolves a one-time read URL for an object key. Callers re-invoke
// this whenever the governing key changes.
func (s *Service) PresignGet(ctx context.Context, key string) (string, error) {
	var resp presignGetResponse
	path := "/api/uploads/presign-get?key=" + url.QueryEscape(key)
	if err := s.api.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
