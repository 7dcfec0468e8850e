package domain

import "time"

// ScheduledTask represents a recurring background task.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Interval defines how often the task should run.
	Interval time.Duration

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time

	// Skipped is set when another operation held the lock.
	Skipped bool

	Success bool
	Error   string

	// ItemsProcessed is the number of articles fetched.
	ItemsProcessed int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// SyncInterval is the period of the incremental library sync. Zero disables it.
	SyncInterval time.Duration

	// CheckEvery is how often the loop looks for due tasks.
	CheckEvery time.Duration
}

// Enabled reports whether any task is scheduled.
func (c SchedulerConfig) Enabled() bool {
	return c.SyncInterval > 0
}

// TaskIDLibrarySync is the periodic incremental update.
const TaskIDLibrarySync = "library-sync"
