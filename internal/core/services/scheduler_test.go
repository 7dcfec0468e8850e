package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driving"
)

// mockAdmin implements the parts of driving.AdminService the scheduler uses.
type mockAdmin struct {
	driving.AdminService
	calls  atomic.Int32
	err    error
	caller domain.Caller
	mu     sync.Mutex
}

func (m *mockAdmin) Update(_ context.Context, caller domain.Caller) (*domain.SyncReport, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.caller = caller
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &domain.SyncReport{Summary: domain.RunSummary{Fetched: 4}}, nil
}

func TestNewScheduler(t *testing.T) {
	scheduler := NewScheduler(domain.SchedulerConfig{SyncInterval: time.Hour}, &mockAdmin{})

	require.NotNil(t, scheduler)
	task := scheduler.Task()
	assert.Equal(t, domain.TaskIDLibrarySync, task.ID)
	assert.Equal(t, time.Hour, task.Interval)
	assert.Equal(t, time.Minute, scheduler.config.CheckEvery)
}

func TestScheduler_DisabledReturnsImmediately(t *testing.T) {
	admin := &mockAdmin{}
	scheduler := NewScheduler(domain.SchedulerConfig{}, admin)

	done := make(chan error, 1)
	go func() { done <- scheduler.Start(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("disabled scheduler blocked")
	}
	assert.Zero(t, admin.calls.Load())
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler := NewScheduler(domain.SchedulerConfig{SyncInterval: time.Hour}, &mockAdmin{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = scheduler.Start(context.Background())
	}()

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, scheduler.Stop())
	wg.Wait()
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	scheduler := NewScheduler(domain.SchedulerConfig{SyncInterval: time.Hour}, &mockAdmin{})

	// Stop without starting should be safe
	require.NoError(t, scheduler.Stop())
}

func TestScheduler_RunsWhenDue(t *testing.T) {
	admin := &mockAdmin{}
	scheduler := NewScheduler(domain.SchedulerConfig{
		SyncInterval: 20 * time.Millisecond,
		CheckEvery:   5 * time.Millisecond,
	}, admin)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = scheduler.Start(ctx) }()

	assert.Eventually(t, func() bool { return admin.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, scheduler.Stop())

	admin.mu.Lock()
	assert.True(t, admin.caller.System)
	admin.mu.Unlock()

	task := scheduler.Task()
	assert.False(t, task.LastSuccess.IsZero())
	assert.Empty(t, task.LastError)
}

func TestScheduler_RunNow(t *testing.T) {
	admin := &mockAdmin{}
	scheduler := NewScheduler(domain.SchedulerConfig{SyncInterval: time.Hour}, admin)

	result := scheduler.RunNow(context.Background())
	assert.True(t, result.Success)
	assert.False(t, result.Skipped)
	assert.Equal(t, 4, result.ItemsProcessed)

	task := scheduler.Task()
	assert.WithinDuration(t, result.EndedAt.Add(time.Hour), task.NextRun, time.Millisecond)
}

func TestScheduler_SkipsWhenBusy(t *testing.T) {
	admin := &mockAdmin{err: domain.ErrOperationInProgress}
	scheduler := NewScheduler(domain.SchedulerConfig{SyncInterval: time.Hour}, admin)

	result := scheduler.RunNow(context.Background())
	assert.True(t, result.Skipped)
	assert.False(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Empty(t, scheduler.Task().LastError)
}

func TestScheduler_RecordsFailure(t *testing.T) {
	admin := &mockAdmin{err: errors.New("manifest down")}
	scheduler := NewScheduler(domain.SchedulerConfig{SyncInterval: time.Hour}, admin)

	result := scheduler.RunNow(context.Background())
	assert.False(t, result.Success)
	assert.Equal(t, "manifest down", result.Error)
	assert.Equal(t, "manifest down", scheduler.Task().LastError)
}

func TestScheduler_HistoryBounded(t *testing.T) {
	admin := &mockAdmin{}
	scheduler := NewScheduler(domain.SchedulerConfig{SyncInterval: time.Hour}, admin)

	for i := 0; i < historyLimit+10; i++ {
		scheduler.RunNow(context.Background())
	}
	history := scheduler.History()
	assert.Len(t, history, historyLimit)
	assert.False(t, history[0].StartedAt.Before(history[len(history)-1].StartedAt))
}
