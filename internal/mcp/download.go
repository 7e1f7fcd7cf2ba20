package mcp

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fetchd/fetchd/internal/tools"
)

// registerDownloadTools registers all file download tools to the MCP server.
// Tools: download_single_file, download_files
func (s *Server) registerDownloadTools() error {
	// download_single_file
	singleSchema, err := jsonschema.For[tools.DownloadSingleFileInput](nil)
	if err != nil {
		return fmt.Errorf("schema for %s: %w", tools.ToolDownloadSingleFile, err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: tools.ToolDownloadSingleFile,
		Description: "Download a single file from a URL to the local filesystem. " +
			"Filenames are derived from the URL when not given and never overwrite existing files.",
		InputSchema: singleSchema,
	}, s.DownloadSingleFile)

	// download_files
	batchSchema, err := jsonschema.For[tools.DownloadFilesInput](nil)
	if err != nil {
		return fmt.Errorf("schema for %s: %w", tools.ToolDownloadFiles, err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: tools.ToolDownloadFiles,
		Description: "Download multiple files from a list of URLs concurrently. " +
			"Each URL succeeds or fails independently; results keep input order.",
		InputSchema: batchSchema,
	}, s.DownloadFiles)

	return nil
}

// DownloadSingleFile handles the download_single_file MCP tool call.
func (s *Server) DownloadSingleFile(ctx context.Context, _ *mcp.CallToolRequest, input tools.DownloadSingleFileInput) (*mcp.CallToolResult, any, error) {
	toolCtx := &ai.ToolContext{Context: ctx}
	result, err := s.download.DownloadSingleFile(toolCtx, input)
	if err != nil {
		return nil, nil, fmt.Errorf("%s failed: %w", tools.ToolDownloadSingleFile, err)
	}

	return resultToMCP(result, s.logger), nil, nil
}

// DownloadFiles handles the download_files MCP tool call.
func (s *Server) DownloadFiles(ctx context.Context, _ *mcp.CallToolRequest, input tools.DownloadFilesInput) (*mcp.CallToolResult, any, error) {
	toolCtx := &ai.ToolContext{Context: ctx}
	result, err := s.download.DownloadFiles(toolCtx, input)
	if err != nil {
		return nil, nil, fmt.Errorf("%s failed: %w", tools.ToolDownloadFiles, err)
	}

	return resultToMCP(result, s.logger), nil, nil
}
