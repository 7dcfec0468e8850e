package mcp

import (
	"github.com/custodia-labs/librarian/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Library provides catalog search, options and statistics.
	Library driving.LibraryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Library == nil {
		return ErrMissingLibraryService
	}
	return nil
}
