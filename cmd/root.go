// Package cmd provides the fetchd CLI commands.
//
// Commands:
//   - get: download one or more URLs directly from the terminal
//   - mcp: Model Context Protocol server for agent integration
//   - version: build information
//
// Signal handling and graceful shutdown are implemented via context
// cancellation.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fetchd",
	Short: "fetchd - file download engine for terminals and agents",
	Long: `fetchd downloads files from URLs to the local filesystem.

It can run as a one-shot CLI (fetchd get URL...) or as an MCP server
(fetchd mcp) exposing download tools to agent clients over stdio.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
