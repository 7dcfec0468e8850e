// Package tui provides the terminal browsing surface for the library.
// It implements a driving adapter following hexagonal architecture principles:
// every filter, page and expiry decision is made by the BrowseService.
package tui

import (
	"github.com/custodia-labs/librarian/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Browse runs the browsing session.
	Browse driving.BrowseService
}

// NewPorts creates a new Ports aggregate.
func NewPorts(browse driving.BrowseService) *Ports {
	return &Ports{Browse: browse}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Browse == nil {
		return ErrMissingBrowseService
	}
	return nil
}
