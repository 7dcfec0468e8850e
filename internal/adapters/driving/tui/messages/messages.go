// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/librarian/internal/core/domain"
)

// SessionOpened carries the welcome view of a new browsing session.
type SessionOpened struct {
	View domain.View
	Err  error
}

// EventHandled is the outcome of one dispatched browse event.
// View is nil when the event produced a notice instead.
type EventHandled struct {
	View   *domain.View
	Notice string
	Err    error
}

// SurfaceReplaced is sent when the session re-renders the surface outside
// of an event, which happens when it expires.
type SurfaceReplaced struct {
	View domain.View
}

// SurfaceRemoved is sent when the session has expired and removed its surface.
type SurfaceRemoved struct{}
