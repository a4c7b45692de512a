// ABOUTME: Post model and CRUD repository over the board REST API.
// ABOUTME: Includes the size+1 page probe and client-side draft validation.
package posts

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/j0chan/sesac-semi/internal/api"
)

// Post is a board post. ImageKey, when present, is a backend-assigned object
// handle, not a fetchable URL.
type Post struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	ImageKey *string `json:"image_key"`
}

// Draft is the payload for create and partial update. Nil fields are omitted;
// ImageKey is always sent so a cleared image round-trips as null.
type Draft struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	ImageKey *string `json:"image_key"`
}

// ValidationError reports a client-side draft rejection. It never reaches
// the network.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ValidateDraft rejects blank required fields. This is a UX gate only; the
// backend remains the validation authority.
func ValidateDraft(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Reason: "title is required"}
	}
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Reason: "content is required"}
	}
	return nil
}

// Repository is the CRUD surface over the API client. It holds no cache;
// every call hits the backend.
type Repository struct {
	client *api.Client
}

// NewRepository creates a repository over the given API client.
func NewRepository(client *api.Client) *Repository {
	return &Repository{client: client}
}

// List fetches posts with offset/limit paging.
func (r *Repository) List(ctx context.Context, skip, limit int) ([]Post, error) {
	var rows []Post
	path := fmt.Sprintf("/api/posts?skip=%d&limit=%d", skip, limit)
	if err := r.client.Do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Page fetches one display page. It requests pageSize+1 rows to determine
// whether a next page exists without a count query, then trims the probe row.
// page is 1-based.
func (r *Repository) Page(ctx context.Context, page, pageSize int) ([]Post, bool, error) {
	skip := (page - 1) * pageSize
	rows, err := r.List(ctx, skip, pageSize+1)
	if err != nil {
		return nil, false, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	return rows, hasNext, nil
}

// Get fetches a single post by id.
func (r *Repository) Get(ctx context.Context, id int) (*Post, error) {
	var post Post
	if err := r.client.Do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Create creates a post and returns the backend's version of it.
func (r *Repository) Create(ctx context.Context, draft Draft) (*Post, error) {
	var post Post
	if err := r.client.Do(ctx, http.MethodPost, "/api/posts", draft, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Update partially updates a post by id and returns the updated post.
func (r *Repository) Update(ctx context.Context, id int, draft Draft) (*Post, error) {
	var post Post
	if err := r.client.Do(ctx, http.MethodPut, fmt.Sprintf("/api/posts/%d", id), draft, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post by id. The backend answers 204 on success.
func (r *Repository) Delete(ctx context.Context, id int) error {
	return r.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), nil, nil)
}
