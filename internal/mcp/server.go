// Package mcp exposes the session service as an MCP tool surface so
// agent-driven tables can run the action roll procedure.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ferrule/scoundrel/internal/session"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Scoundrel MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Server hosts the MCP server over one session service.
type Server struct {
	mcpServer *mcp.Server
}

// New creates a configured MCP server bound to the session service.
func New(svc *session.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("session service is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(mcpServer, SceneCreateTool(), SceneCreateHandler(svc))
	mcp.AddTool(mcpServer, CharacterAddTool(), CharacterAddHandler(svc))
	mcp.AddTool(mcpServer, SceneGetTool(), SceneGetHandler(svc))
	mcp.AddTool(mcpServer, ActionStartTool(), ActionStartHandler(svc))
	mcp.AddTool(mcpServer, ActionPresentTool(), ActionPresentHandler(svc))
	mcp.AddTool(mcpServer, ActionSubmitTool(), ActionSubmitHandler(svc))
	mcp.AddTool(mcpServer, ActionCancelTool(), ActionCancelHandler(svc))
	mcpServer.AddResource(RulesReferenceResource(), RulesReferenceResourceHandler())

	return &Server{mcpServer: mcpServer}, nil
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
