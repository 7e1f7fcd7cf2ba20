package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fetchd/fetchd/internal/log"
	"github.com/fetchd/fetchd/internal/tools"
)

// Server wraps the MCP SDK server around the download toolset.
type Server struct {
	mcpServer *mcp.Server
	download  *tools.DownloadTools
	logger    log.Logger
	name      string
	version   string
}

// Config holds MCP server configuration.
type Config struct {
	Name     string
	Version  string
	Download *tools.DownloadTools
	Logger   log.Logger
}

// NewServer creates a new MCP server and registers the download tools.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Download == nil {
		return nil, fmt.Errorf("download toolset is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		download:  cfg.Download,
		logger:    cfg.Logger,
		name:      cfg.Name,
		version:   cfg.Version,
	}

	if err := s.registerDownloadTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server on the given transport. This is a blocking
// call that handles all MCP protocol communication until ctx is
// cancelled or the transport closes.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("starting MCP server", "name", s.name, "version", s.version)
	return s.mcpServer.Run(ctx, transport)
}
