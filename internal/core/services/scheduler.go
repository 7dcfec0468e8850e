package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driving"
	"github.com/custodia-labs/librarian/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Scheduler runs the periodic incremental sync through the admin lock.
// A run that finds the lock held is skipped, not queued.
type Scheduler struct {
	config domain.SchedulerConfig
	admin  driving.AdminService
	caller domain.Caller

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	task    domain.ScheduledTask
	history []domain.TaskResult
}

// historyLimit bounds the in-memory result history.
const historyLimit = 100

// NewScheduler creates a scheduler with configuration.
func NewScheduler(config domain.SchedulerConfig, admin driving.AdminService) *Scheduler {
	if config.CheckEvery <= 0 {
		config.CheckEvery = time.Minute
	}
	return &Scheduler{
		config: config,
		admin:  admin,
		caller: domain.SystemCaller("scheduler"),
		task: domain.ScheduledTask{
			ID:       domain.TaskIDLibrarySync,
			Name:     "Library Sync",
			Interval: config.SyncInterval,
		},
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or the context is done. It returns immediately when no task is enabled.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled() {
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.task.NextRun = time.Now().Add(s.config.SyncInterval)
	stopCh := s.stopCh
	s.mu.Unlock()

	logger.Info("Scheduler started: library sync every %s", s.config.SyncInterval)
	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()
	return nil
}

// Task returns a copy of the library sync task state.
func (s *Scheduler) Task() domain.ScheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task
}

// History returns recent results, most recent first.
func (s *Scheduler) History() []domain.TaskResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TaskResult, len(s.history))
	for i := range s.history {
		out[i] = s.history[len(s.history)-1-i]
	}
	return out
}

func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	ticker := time.NewTicker(s.config.CheckEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-stopCh:
			return nil
		case now := <-ticker.C:
			if s.due(now) {
				s.RunNow(ctx)
			}
		}
	}
}

func (s *Scheduler) due(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !now.Before(s.task.NextRun)
}

// RunNow executes the library sync once and waits for it.
func (s *Scheduler) RunNow(ctx context.Context) domain.TaskResult {
	s.wg.Add(1)
	defer s.wg.Done()

	result := domain.TaskResult{
		TaskID:    domain.TaskIDLibrarySync,
		StartedAt: time.Now(),
	}

	report, err := s.admin.Update(ctx, s.caller)
	result.EndedAt = time.Now()
	switch {
	case errors.Is(err, domain.ErrOperationInProgress):
		result.Skipped = true
		logger.Info("Scheduled sync skipped: another operation is running")
	case err != nil:
		result.Error = err.Error()
		logger.Warn("Scheduled sync failed: %v", err)
	default:
		result.Success = true
	}
	if report != nil {
		result.ItemsProcessed = report.Summary.Fetched
	}

	s.mu.Lock()
	s.task.LastRun = result.StartedAt
	s.task.NextRun = result.EndedAt.Add(s.task.Interval)
	if result.Success {
		s.task.LastError = ""
		s.task.LastSuccess = result.EndedAt
	} else if result.Error != "" {
		s.task.LastError = result.Error
	}
	s.history = append(s.history, result)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
	s.mu.Unlock()

	return result
}
