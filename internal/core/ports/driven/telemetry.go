package driven

import "github.com/custodia-labs/librarian/internal/core/domain"

// Telemetry receives operational counters from the core.
// Services treat a nil Telemetry as a no-op.
type Telemetry interface {
	// RunFinished is called once per sync run.
	RunFinished(summary *domain.RunSummary)

	// PageProcessed is called per article with ok, fetch_failed,
	// extraction_failed or store_failed.
	PageProcessed(result string)

	// SessionsActive reports the number of live browsing sessions.
	SessionsActive(n int)

	// BrowseEvent is called per dispatched event.
	BrowseEvent(kind domain.EventKind)

	// SessionExpired is called once per expired session.
	SessionExpired()
}
