// ABOUTME: MCP tool implementations for board post operations.
// ABOUTME: Registers login, list_posts, read_post, create_post, update_post, and delete_post.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/j0chan/sesac-semi/internal/posts"
)

func (s *Server) registerPostTools() {
	if s.auth != nil {
		s.mcp.AddTool(&gomcp.Tool{
			Name:        "login",
			Description: "Authenticate against the board so write tools are allowed.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"email": {"type": "string", "description": "Account email.", "minLength": 1},
					"password": {"type": "string", "description": "Account password.", "minLength": 1}
				},
				"required": ["email", "password"]
			}`),
		}, s.handleLogin)
	}

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "list_posts",
		Description: "Retrieve a page of board posts, newest first.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"page": {"type": "number", "description": "Page number starting at 1 (default 1)"},
				"page_size": {"type": "number", "description": "Posts per page (default 10)"}
			}
		}`),
	}, s.handleListPosts)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "read_post",
		Description: "Read a single board post by id.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "number", "description": "Post id.", "minimum": 1}
			},
			"required": ["id"]
		}`),
	}, s.handleReadPost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "create_post",
		Description: "Create a new board post. Requires authentication.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Post title.", "minLength": 1},
				"content": {"type": "string", "description": "Post body.", "minLength": 1}
			},
			"required": ["title", "content"]
		}`),
	}, s.handleCreatePost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "update_post",
		Description: "Update an existing board post. Omitted fields are left unchanged.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "number", "description": "Post id.", "minimum": 1},
				"title": {"type": "string", "description": "New title."},
				"content": {"type": "string", "description": "New body."}
			},
			"required": ["id"]
		}`),
	}, s.handleUpdatePost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "delete_post",
		Description: "Delete a board post by id. Requires authentication.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "number", "description": "Post id.", "minimum": 1}
			},
			"required": ["id"]
		}`),
	}, s.handleDeletePost)
}

func (s *Server) handleLogin(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	if args.Email == "" || args.Password == "" {
		return toolError("email and password are required"), nil
	}

	if err := s.auth.Login(ctx, args.Email, args.Password); err != nil {
		return toolError("login failed: %v", err), nil
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{
			Text: fmt.Sprintf("Logged in as %s", args.Email),
		}},
	}, nil
}

func (s *Server) handleListPosts(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Page     int `json:"page"`
		PageSize int `json:"page_size"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	if args.Page <= 0 {
		args.Page = 1
	}
	if args.PageSize <= 0 {
		args.PageSize = 10
	}

	rows, hasNext, err := s.posts.Page(ctx, args.Page, args.PageSize)
	if err != nil {
		return toolError("failed to list posts: %v", err), nil
	}

	if len(rows) == 0 {
		return &gomcp.CallToolResult{
			Content: []gomcp.Content{&gomcp.TextContent{Text: "No posts found."}},
		}, nil
	}

	var sb strings.Builder
	for _, post := range rows {
		sb.WriteString(fmt.Sprintf("---\n#%d %s", post.ID, post.Title))
		if post.ImageKey != nil {
			sb.WriteString(" [image]")
		}
		sb.WriteString(fmt.Sprintf("\n%s\n", post.Content))
	}
	if hasNext {
		sb.WriteString(fmt.Sprintf("---\nMore posts on page %d.\n", args.Page+1))
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: sb.String()}},
	}, nil
}

func (s *Server) handleReadPost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.ID <= 0 {
		return toolError("id is required"), nil
	}

	post, err := s.posts.Get(ctx, args.ID)
	if err != nil {
		return toolError("failed to read post: %v", err), nil
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: formatPost(post)}},
	}, nil
}

func (s *Server) handleCreatePost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	if err := posts.ValidateDraft(args.Title, args.Content); err != nil {
		return toolError("%v", err), nil
	}

	draft := posts.Draft{Title: &args.Title, Content: &args.Content}
	post, err := s.posts.Create(ctx, draft)
	if err != nil {
		return toolError("failed to create post: %v", err), nil
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{
			Text: fmt.Sprintf("Post created (id %d)", post.ID),
		}},
	}, nil
}

func (s *Server) handleUpdatePost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		ID      int     `json:"id"`
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.ID <= 0 {
		return toolError("id is required"), nil
	}
	if args.Title == nil && args.Content == nil {
		return toolError("nothing to update: provide title or content"), nil
	}

	// The write replaces the whole post, so start from the current one and
	// overlay the provided fields. This also keeps the attached image.
	current, err := s.posts.Get(ctx, args.ID)
	if err != nil {
		return toolError("failed to read post: %v", err), nil
	}

	title := current.Title
	if args.Title != nil {
		title = *args.Title
	}
	content := current.Content
	if args.Content != nil {
		content = *args.Content
	}
	if err := posts.ValidateDraft(title, content); err != nil {
		return toolError("%v", err), nil
	}

	draft := posts.Draft{Title: &title, Content: &content, ImageKey: current.ImageKey}
	post, err := s.posts.Update(ctx, args.ID, draft)
	if err != nil {
		return toolError("failed to update post: %v", err), nil
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{
			Text: fmt.Sprintf("Post %d updated", post.ID),
		}},
	}, nil
}

func (s *Server) handleDeletePost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.ID <= 0 {
		return toolError("id is required"), nil
	}

	if err := s.posts.Delete(ctx, args.ID); err != nil {
		return toolError("failed to delete post: %v", err), nil
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{
			Text: fmt.Sprintf("Post %d deleted", args.ID),
		}},
	}, nil
}

func formatPost(post *posts.Post) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("#%d %s\n", post.ID, post.Title))
	if post.ImageKey != nil {
		sb.WriteString(fmt.Sprintf("image: %s\n", *post.ImageKey))
	}
	sb.WriteString("\n")
	sb.WriteString(post.Content)
	sb.WriteString("\n")
	return sb.String()
}

// toolError creates an error result for MCP tool responses.
func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
