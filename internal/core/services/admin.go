package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
	"github.com/custodia-labs/librarian/internal/core/ports/driving"
	"github.com/custodia-labs/librarian/internal/logger"
)

// Ensure AdminService implements the interface.
var _ driving.AdminService = (*AdminService)(nil)

// DefaultAdminRoles are the role names allowed to run admin operations.
var DefaultAdminRoles = []string{"Admin", "Moderator", "Library Manager"}

// AdminService gates sync and stats behind a role check and the operation lock.
type AdminService struct {
	sync    driving.SyncService
	catalog driving.LibraryService
	runLog  driven.RunLogStore
	lock    *OperationLock

	mu    sync.RWMutex
	roles []string
}

// NewAdminService creates an admin service. A nil roles slice selects the defaults.
func NewAdminService(
	syncSvc driving.SyncService,
	catalog driving.LibraryService,
	runLog driven.RunLogStore,
	lock *OperationLock,
	roles []string,
) *AdminService {
	if lock == nil {
		lock = NewOperationLock()
	}
	a := &AdminService{sync: syncSvc, catalog: catalog, runLog: runLog, lock: lock}
	a.SetAdminRoles(roles)
	return a
}

// SetAdminRoles replaces the allowed roles.
func (a *AdminService) SetAdminRoles(roles []string) {
	if len(roles) == 0 {
		roles = DefaultAdminRoles
	}
	cp := make([]string, len(roles))
	copy(cp, roles)

	a.mu.Lock()
	a.roles = cp
	a.mu.Unlock()
}

// AdminRoles returns the allowed roles.
func (a *AdminService) AdminRoles() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.roles))
	copy(out, a.roles)
	return out
}

// Authorize returns domain.ErrPermissionDenied unless the caller may administer.
func (a *AdminService) Authorize(caller domain.Caller) error {
	if caller.System || caller.Administrator {
		return nil
	}
	if caller.HasAnyRole(a.AdminRoles()) {
		return nil
	}
	return fmt.Errorf("%w: %s needs one of the admin roles", domain.ErrPermissionDenied, callerName(caller))
}

// Update runs an incremental sync.
func (a *AdminService) Update(ctx context.Context, caller domain.Caller) (*domain.SyncReport, error) {
	return a.runLocked(ctx, caller, domain.RunModeIncremental)
}

// Rebuild runs a full sync.
func (a *AdminService) Rebuild(ctx context.Context, caller domain.Caller) (*domain.SyncReport, error) {
	return a.runLocked(ctx, caller, domain.RunModeFull)
}

// Check reconciles without fetching.
func (a *AdminService) Check(ctx context.Context, caller domain.Caller) (*domain.SyncReport, error) {
	return a.runLocked(ctx, caller, domain.RunModeCheck)
}

// Stats returns catalog statistics.
func (a *AdminService) Stats(ctx context.Context, caller domain.Caller) (domain.Stats, error) {
	if err := a.Authorize(caller); err != nil {
		return domain.Stats{}, err
	}
	return a.catalog.Stats(ctx)
}

// RecentRuns returns the run log, most recent first.
func (a *AdminService) RecentRuns(ctx context.Context, caller domain.Caller, limit int) ([]domain.RunSummary, error) {
	if err := a.Authorize(caller); err != nil {
		return nil, err
	}
	if a.runLog == nil {
		return nil, nil
	}
	return a.runLog.Recent(ctx, limit)
}

// Running reports whether an operation holds the lock.
func (a *AdminService) Running() bool {
	held, _ := a.lock.Held()
	return held
}

func (a *AdminService) runLocked(ctx context.Context, caller domain.Caller, mode domain.RunMode) (*domain.SyncReport, error) {
	if err := a.Authorize(caller); err != nil {
		return nil, err
	}
	if !a.lock.TryAcquire(string(mode)) {
		_, holder := a.lock.Held()
		logger.Info("Rejected %s by %s: %s already running", mode, callerName(caller), holder)
		return nil, fmt.Errorf("%w: %s", domain.ErrOperationInProgress, holder)
	}
	defer a.lock.Release()

	logger.Info("%s started by %s", mode, callerName(caller))
	summary, err := a.sync.Run(ctx, mode)
	report := &domain.SyncReport{}
	if summary != nil {
		report.Summary = *summary
	}
	if stats, statsErr := a.catalog.Stats(ctx); statsErr == nil {
		report.Stats = stats
	}
	return report, err
}

func callerName(c domain.Caller) string {
	if c.Name != "" {
		return c.Name
	}
	if c.ID != "" {
		return c.ID
	}
	return "anonymous"
}
