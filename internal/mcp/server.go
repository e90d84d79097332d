package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"uicatalog/internal/catalog"
	"uicatalog/internal/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "uicatalog"
	ServerVersion = "1.0.0"
)

// Server represents an MCP server instance using mcp-go
type Server struct {
	registry  *catalog.Registry
	logger    *logging.AppLogger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(registry *catalog.Registry, logger *logging.AppLogger) *Server {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Server{
		registry: registry,
		logger:   logger,
	}
}

// InitializeComponents builds the mcp-go server and registers every tool and
// resource without starting the transport.
func (s *Server) InitializeComponents(ctx context.Context) error {
	if s.registry == nil {
		return fmt.Errorf("catalog registry not initialized")
	}

	hooks := &server.Hooks{}
	hooks.AddBeforeListResources(func(ctx context.Context, _ any, _ *mcp.ListResourcesRequest) {
		if err := s.refreshResources(ctx); err != nil {
			s.logger.Warn("Failed to refresh resources, serving previous list", "error", err)
		}
	})

	s.mcpServer = server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithHooks(hooks),
		server.WithRecovery(),
	)

	s.registerTools()
	if err := s.registerResources(ctx); err != nil {
		return fmt.Errorf("failed to register resources: %w", err)
	}
	return nil
}

// Start initializes the server and serves stdio until ctx is cancelled or
// stdin closes.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Initializing MCP server")

	if err := s.InitializeComponents(ctx); err != nil {
		return err
	}

	s.logger.Info("MCP server created, starting stdio communication",
		"projects", len(s.registry.Projects()),
	)

	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the MCP server
func (s *Server) Stop() error {
	s.logger.Info("Stopping MCP server")
	// The stdio transport exits when its context is cancelled
	return nil
}

// MCPServer exposes the underlying mcp-go server, nil before
// InitializeComponents.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// respond renders either v or the error document for err.
func respond(v any, err error) (*mcp.CallToolResult, error) {
	return jsonResult(catalog.Respond(v, err))
}
