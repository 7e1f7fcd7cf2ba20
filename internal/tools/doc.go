// Package tools exposes the download engine as agent tools.
//
// DownloadTools wraps internal/download behind the tool result
// envelope shared by every surface: MCP handlers call the methods
// directly, and RegisterDownload defines the same tools on a Genkit
// instance for agent use. Tool handlers always return a structured
// Result; an agent-visible failure is a Result with StatusError, not a
// Go error.
package tools
