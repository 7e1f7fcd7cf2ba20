package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/fetchd/fetchd/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Start a Model Context Protocol server exposing the download tools
(download_single_file, download_files) over stdio. Point an MCP client
such as Claude Desktop or Cursor at the fetchd binary with this
subcommand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// runMCP initializes and starts the MCP server on stdio transport.
func runMCP() error {
	e, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server, err := mcp.NewServer(mcp.Config{
		Name:     "fetchd",
		Version:  Version,
		Download: e.tools,
		Logger:   e.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	e.logger.Info("MCP server ready", "name", "fetchd", "version", Version, "transport", "stdio")

	if err := server.Run(ctx, &mcpSdk.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	e.logger.Info("MCP server shut down gracefully")
	return nil
}
