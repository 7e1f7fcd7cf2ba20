package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fetchd/fetchd/internal/log"
	"github.com/fetchd/fetchd/internal/tools"
)

// resultToMCP converts a tools.Result to an mcp.CallToolResult.
//
// Error results become text content with IsError set, so clients can
// handle tool failures without treating them as protocol errors. The
// payload always rides along as JSON: a failed download still carries
// the per-item detail the client may want to show.
func resultToMCP(result tools.Result, logger log.Logger) *mcp.CallToolResult {
	if result.Status == tools.StatusError {
		errorText := fmt.Sprintf("[%s] %s", result.Error.Code, result.Error.Message)
		if result.Data != nil {
			if b, err := json.Marshal(result.Data); err == nil {
				errorText += fmt.Sprintf("\nDetails: %s", string(b))
			} else {
				logger.Warn("marshaling error details", "error", err)
			}
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: errorText}},
			IsError: true,
		}
	}

	return dataToMCP(result.Data)
}

// dataToMCP converts arbitrary data to MCP text content via JSON
// marshaling. All data becomes JSON, clients parse it.
func dataToMCP(data any) *mcp.CallToolResult {
	if data == nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: ""}},
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "marshal error"}},
			IsError: true,
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}
}
