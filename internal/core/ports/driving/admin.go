package driving

import (
	"context"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

// AdminService exposes the privileged operations.
// Update, Rebuild and Check share one process-wide lock: a second attempt
// while one is running fails with domain.ErrOperationInProgress.
type AdminService interface {
	// Authorize returns domain.ErrPermissionDenied unless the caller may administer.
	Authorize(caller domain.Caller) error

	// Update runs an incremental sync.
	Update(ctx context.Context, caller domain.Caller) (*domain.SyncReport, error)

	// Rebuild runs a full sync.
	Rebuild(ctx context.Context, caller domain.Caller) (*domain.SyncReport, error)

	// Check reconciles without fetching.
	Check(ctx context.Context, caller domain.Caller) (*domain.SyncReport, error)

	// Stats returns catalog statistics.
	Stats(ctx context.Context, caller domain.Caller) (domain.Stats, error)

	// RecentRuns returns the run log, most recent first.
	RecentRuns(ctx context.Context, caller domain.Caller, limit int) ([]domain.RunSummary, error)

	// Running reports whether an operation holds the lock.
	Running() bool

	// SetAdminRoles replaces the roles allowed to run admin operations.
	SetAdminRoles(roles []string)
}
