// ABOUTME: MCP server initialization and configuration for the board client.
// ABOUTME: Sets up server with post tools for AI agent access.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/j0chan/sesac-semi/internal/posts"
	"github.com/j0chan/sesac-semi/internal/session"
)

// Server wraps the MCP server with the board services.
type Server struct {
	mcp   *gomcp.Server
	posts *posts.Repository
	auth  *session.Service
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithAuth enables the login tool. Without it, write tools still work when a
// credential is already persisted.
func WithAuth(auth *session.Service) ServerOption {
	return func(s *Server) {
		s.auth = auth
	}
}

// NewServer creates an MCP server exposing board posts.
func NewServer(repo *posts.Repository, opts ...ServerOption) (*Server, error) {
	if repo == nil {
		return nil, fmt.Errorf("post repository is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "board",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:   mcpServer,
		posts: repo,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerPostTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
