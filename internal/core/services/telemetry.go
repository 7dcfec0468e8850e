package services

import (
	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
)

// noopTelemetry discards everything.
type noopTelemetry struct{}

func (noopTelemetry) RunFinished(*domain.RunSummary) {}
func (noopTelemetry) PageProcessed(string)           {}
func (noopTelemetry) SessionsActive(int)             {}
func (noopTelemetry) BrowseEvent(domain.EventKind)   {}
func (noopTelemetry) SessionExpired()                {}

func telemetryOrNoop(t driven.Telemetry) driven.Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// Page results reported to Telemetry.
const (
	PageOK               = "ok"
	PageFetchFailed      = "fetch_failed"
	PageExtractionFailed = "extraction_failed"
	PageStoreFailed      = "store_failed"
)
