// ABOUTME: Tests for the upload orchestrator using httptest for both legs.
// ABOUTME: Covers local validation, presign-put/transfer ordering, and presign-get.
package uploads

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j0chan/sesac-semi/internal/api"
)

func newService(apiURL string) *Service {
	client := api.New(apiURL, 5*time.Second, nil, zerolog.Nop())
	return NewService(client, 5*time.Second, 5*1024*1024, "image/")
}

func TestValidateFile(t *testing.T) {
	svc := newService("http://unused.invalid")

	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     bool
	}{
		{"png under limit", "image/png", 1024, false},
		{"jpeg at limit", "image/jpeg", 5 * 1024 * 1024, false},
		{"over limit", "image/png", 5*1024*1024 + 1, true},
		{"wrong type", "application/pdf", 1024, true},
		{"empty type", "", 1024, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateFile(tt.contentType, tt.size)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.NotEmpty(t, vErr.Reason)
		})
	}
}

func TestValidateFileNeverTouchesNetwork(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	svc := newService(server.URL)
	_ = svc.ValidateFile("application/zip", 10)
	_ = svc.ValidateFile("image/png", 100*1024*1024)

	assert.Zero(t, hits, "rejected files must have zero network side effects")
}

func TestValidateFileOverridableLimits(t *testing.T) {
	client := api.New("http://unused.invalid", time.Second, nil, zerolog.Nop())
	svc := NewService(client, time.Second, 1024, "application/pdf")

	assert.NoError(t, svc.ValidateFile("application/pdf", 512))
	assert.Error(t, svc.ValidateFile("image/png", 512))
	assert.Error(t, svc.ValidateFile("application/pdf", 2048))
}

func TestValidateFileReportsExactLimit(t *testing.T) {
	client := api.New("http://unused.invalid", time.Second, nil, zerolog.Nop())

	tests := []struct {
		name     string
		maxBytes int64
		want     string
	}{
		{"whole MiB", 5 * 1024 * 1024, "5 MiB"},
		{"fractional MiB", 3 * 512 * 1024, "1536 KiB"},
		{"whole KiB", 64 * 1024, "64 KiB"},
		{"odd byte count", 1000, "1000 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(client, time.Second, tt.maxBytes, "image/")
			err := svc.ValidateFile("image/png", tt.maxBytes+1)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Reason, tt.want)
		})
	}
}

func TestUploadTwoPhase(t *testing.T) {
	var storagePayload []byte
	var storageContentType string
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		storageContentType = r.Header.Get("Content-Type")
		assert.Empty(t, r.Header.Get("Authorization"), "storage leg must not carry API auth")
		storagePayload, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer storage.Close()

	var presignBody presignPutRequest
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/uploads/presign-put", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&presignBody))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(PutDescriptor{
			Key:         "uploads/abc.png",
			URL:         storage.URL + "/bucket/uploads/abc.png",
			Method:      "PUT",
			ContentType: presignBody.ContentType,
		})
	}))
	defer backend.Close()

	svc := newService(backend.URL)
	key, err := svc.Upload(context.Background(), "cat.png", "image/png", []byte("pngbytes"))
	require.NoError(t, err)

	assert.Equal(t, "uploads/abc.png", key)
	assert.Equal(t, "cat.png", presignBody.Filename)
	assert.Equal(t, "image/png", presignBody.ContentType)
	assert.Equal(t, []byte("pngbytes"), storagePayload)
	assert.Equal(t, "image/png", storageContentType)
}

func TestUploadTransferFailure(t *testing.T) {
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer storage.Close()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(PutDescriptor{
			Key: "uploads/x", URL: storage.URL + "/x", Method: "PUT", ContentType: "image/png",
		})
	}))
	defer backend.Close()

	svc := newService(backend.URL)
	_, err := svc.Upload(context.Background(), "x.png", "image/png", []byte("data"))
	require.Error(t, err)

	var tErr *TransferError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, http.StatusForbidden, tErr.Status)

	var apiErr *api.Error
	assert.False(t, errors.As(err, &apiErr), "storage failures must not surface as API errors")
}

func TestUploadPresignFailureSkipsTransfer(t *testing.T) {
	var storageHits int
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		storageHits++
	}))
	defer storage.Close()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"unsupported content type"}`))
	}))
	defer backend.Close()

	svc := newService(backend.URL)
	_, err := svc.Upload(context.Background(), "x.bmp", "image/bmp", []byte("data"))
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "unsupported content type", apiErr.Message)
	assert.Zero(t, storageHits, "transfer must never run before presign succeeds")
}

func TestPresignGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/uploads/presign-get", r.URL.Path)
		require.Equal(t, "uploads/a b.png", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://storage.example.com/signed"}`))
	}))
	defer server.Close()

	url, err := newService(server.URL).PresignGet(context.Background(), "uploads/a b.png")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/signed", url)
}
