package driving

import (
	"context"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
)

// BrowseService manages interactive browsing sessions, one per surface.
type BrowseService interface {
	// Open starts a session on the surface and returns the welcome view.
	// Fails with domain.ErrStoreUnavailable when the catalog is unhealthy.
	Open(ctx context.Context, caller domain.Caller, surface driven.Surface) (domain.View, error)

	// Dispatch applies one event to the surface's session and renders the result.
	Dispatch(ctx context.Context, surfaceID string, event domain.Event, reply driven.EventReply) error

	// Close ends a session without rendering.
	Close(surfaceID string)

	// Sweep expires every session idle longer than the timeout.
	Sweep(ctx context.Context) int

	// Run sweeps periodically until the context is cancelled.
	Run(ctx context.Context) error

	// Active returns the number of live sessions.
	Active() int
}
