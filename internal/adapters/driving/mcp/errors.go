// Package mcp provides an MCP (Model Context Protocol) server adapter for the library.
// It lets AI assistants query the catalog read-only.
package mcp

import "errors"

// ErrMissingLibraryService is returned when the library service is not provided.
var ErrMissingLibraryService = errors.New("mcp: library service is required")
