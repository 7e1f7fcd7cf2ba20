// Package mcp implements a Model Context Protocol (MCP) server for the
// download engine.
//
// The server exposes the download tools over the MCP protocol so any
// MCP client (Genkit CLI, Cursor, editor integrations) can fetch files
// to the local filesystem through a standardized interface.
//
// Tool handlers follow the net/http.Handler pattern: the input schema
// is inferred from a struct with jsonschema-go, the handler runs the
// toolset method with the request context, and the structured result
// is serialized straight into the MCP response. Agent-visible failures
// (bad URL, size limit, HTTP errors) come back as IsError results;
// only genuine handler bugs surface as protocol errors.
package mcp
