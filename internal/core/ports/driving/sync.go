package driving

import (
	"context"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

// SyncService runs one reconciliation of the remote site against the catalog.
type SyncService interface {
	// Run executes a sync in the given mode. The summary is returned even on failure.
	Run(ctx context.Context, mode domain.RunMode) (*domain.RunSummary, error)
}
