// Package mcpsrv exposes dashboard inspection and filter auditing as Model
// Context Protocol tools over stdio.
package mcpsrv

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/CognitionAI/metabase-mcp-server/internal/dashboard"
	"github.com/CognitionAI/metabase-mcp-server/internal/mbql"
)

// Backend is the Metabase access the tools need. *metabase.Client satisfies it.
type Backend interface {
	mbql.MetadataFetcher
	Dashboard(ctx context.Context, dashboardID int64) (*dashboard.Dashboard, error)
	DashboardRaw(ctx context.Context, dashboardID int64) (map[string]any, error)
	CardRaw(ctx context.Context, cardID int64) (map[string]any, error)
	TableMetadataRaw(ctx context.Context, tableID int64) (map[string]any, error)
}

// Options configures a Server.
type Options struct {
	Backend     Backend
	Concurrency int
	Version     string
	Logger      *zap.Logger
}

// Server wraps the MCP server with the Metabase tool handlers.
type Server struct {
	mcpServer   *server.MCPServer
	backend     Backend
	concurrency int
	logger      *zap.Logger
}

// New builds a Server with all tools registered.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		backend:     opts.Backend,
		concurrency: opts.Concurrency,
		logger:      logger,
		mcpServer: server.NewMCPServer(
			"metabase-mcp",
			version,
			server.WithToolCapabilities(false),
		),
	}
	s.registerTools()
	return s
}

// ServeStdio runs the server until the client disconnects. Stdout carries the
// protocol; anything worth saying goes to the logger.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP on stdio")
	return server.ServeStdio(s.mcpServer)
}
