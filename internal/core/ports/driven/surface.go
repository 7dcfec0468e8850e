package driven

import (
	"context"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

// Surface is the render target a browsing session is attached to.
type Surface interface {
	// ID identifies the surface. Events are routed by it.
	ID() string

	// Remove deletes the surface.
	Remove(ctx context.Context) error

	// Replace re-renders the surface outside of any event.
	Replace(ctx context.Context, view domain.View) error
}

// EventReply answers a single UI event.
type EventReply interface {
	// Acknowledge tells the platform the event was received.
	// Called before the search and render.
	Acknowledge(ctx context.Context) error

	// Render replaces the surface content with the view.
	Render(ctx context.Context, view domain.View) error

	// Notice shows a short message to the user without changing the surface.
	Notice(ctx context.Context, text string) error
}
