// ABOUTME: Shared test helpers for TUI screen tests.
// ABOUTME: Provides a fake board backend, deps wiring, and command draining.
package tui

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/j0chan/sesac-semi/internal/api"
	"github.com/j0chan/sesac-semi/internal/posts"
	"github.com/j0chan/sesac-semi/internal/session"
	"github.com/j0chan/sesac-semi/internal/uploads"
)

// fakeBackend is an in-memory board API plus object storage. calls records
// the order of write-path requests for ordering assertions.
type fakeBackend struct {
	server  *httptest.Server
	storage *httptest.Server

	calls        []string
	failTransfer bool
	posts        map[int]posts.Post
	nextID       int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{posts: map[int]posts.Post{}, nextID: 1}

	fb.storage = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.calls = append(fb.calls, "transfer")
		if fb.failTransfer {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(fb.storage.Close)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/uploads/presign-put", func(w http.ResponseWriter, r *http.Request) {
		fb.calls = append(fb.calls, "presign-put")
		var req struct {
			Filename    string `json:"filename"`
			ContentType string `json:"content_type"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"key":          "uploads/" + req.Filename,
			"url":          fb.storage.URL + "/bucket/" + req.Filename,
			"method":       "PUT",
			"content_type": req.ContentType,
		})
	})
	mux.HandleFunc("GET /api/uploads/presign-get", func(w http.ResponseWriter, r *http.Request) {
		fb.calls = append(fb.calls, "presign-get")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"url": "https://storage.example.com/signed/" + r.URL.Query().Get("key"),
		})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		fb.calls = append(fb.calls, "login")
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.Email != "user@example.com" || req.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": unsignedToken(`{"sub":"user-1"}`),
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("POST /api/posts", func(w http.ResponseWriter, r *http.Request) {
		fb.calls = append(fb.calls, "create")
		var draft posts.Draft
		_ = json.NewDecoder(r.Body).Decode(&draft)
		post := posts.Post{ID: fb.nextID, ImageKey: draft.ImageKey}
		if draft.Title != nil {
			post.Title = *draft.Title
		}
		if draft.Content != nil {
			post.Content = *draft.Content
		}
		fb.posts[post.ID] = post
		fb.nextID++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(post)
	})
	mux.HandleFunc("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {
		fb.calls = append(fb.calls, "list")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]posts.Post{})
	})
	mux.HandleFunc("GET /api/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		fb.calls = append(fb.calls, "get")
		id, _ := strconv.Atoi(r.PathValue("id"))
		post, ok := fb.posts[id]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Post not found"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(post)
	})
	mux.HandleFunc("PUT /api/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		fb.calls = append(fb.calls, "update")
		id, _ := strconv.Atoi(r.PathValue("id"))
		post := fb.posts[id]
		var draft posts.Draft
		_ = json.NewDecoder(r.Body).Decode(&draft)
		if draft.Title != nil {
			post.Title = *draft.Title
		}
		if draft.Content != nil {
			post.Content = *draft.Content
		}
		post.ImageKey = draft.ImageKey
		post.ID = id
		fb.posts[id] = post
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(post)
	})
	fb.server = httptest.NewServer(mux)
	t.Cleanup(fb.server.Close)
	return fb
}

func testDeps(t *testing.T, backendURL string) *Deps {
	t.Helper()
	store := session.NewStore(filepath.Join(t.TempDir(), "token"))
	client := api.New(backendURL, 5*time.Second, store, zerolog.Nop())
	return &Deps{
		Session:  session.NewService(client, store),
		Posts:    posts.NewRepository(client),
		Uploads:  uploads.NewService(client, 5*time.Second, 5*1024*1024, "image/"),
		PageSize: 10,
	}
}

// drain executes a command tree and returns every produced message, in order.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, drain(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

// unsignedToken builds a JWT-shaped token carrying the given claims JSON.
// The signature segment is garbage; identity derivation never verifies it.
func unsignedToken(claims string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(claims))
	return header + "." + body + ".x"
}

// seedSession logs the test user in against the fake backend.
func seedSession(t *testing.T, deps *Deps) {
	t.Helper()
	if err := deps.Session.Login(context.Background(), "user@example.com", "hunter2"); err != nil {
		t.Fatalf("seed login: %v", err)
	}
}

// keyRunes builds a plain character key message.
func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func strPtr(s string) *string {
	return &s
}
