package domain

import "time"

// RunMode selects how a sync run reconciles the manifest.
type RunMode string

const (
	// RunModeFull fetches every article in the manifest.
	RunModeFull RunMode = "full"

	// RunModeIncremental fetches only new and changed articles.
	RunModeIncremental RunMode = "incremental"

	// RunModeCheck reconciles and reports counts without fetching.
	RunModeCheck RunMode = "check"
)

// Valid reports whether m is a known run mode.
func (m RunMode) Valid() bool {
	switch m {
	case RunModeFull, RunModeIncremental, RunModeCheck:
		return true
	}
	return false
}

// RunStatus is the terminal state of a sync run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
	RunStatusTimeout RunStatus = "timeout"
)

// RunSummary is the counters of one sync run.
// It is appended to the run log when the run ends.
type RunSummary struct {
	ID        string
	Mode      RunMode
	Status    RunStatus
	StartedAt time.Time
	Duration  time.Duration

	// URLsFound is the number of manifest entries discovered.
	URLsFound int

	// ArticlesFound is the number of discovered entries classified as articles.
	ArticlesFound int

	// Selected is the number of articles chosen for fetch.
	Selected int

	// Fetched is the number of fetch attempts that completed, successful or not.
	Fetched int

	Succeeded int
	Failed    int

	// DatesExtracted is the number of archive-listing dates collected.
	DatesExtracted int

	// Error is the run-level failure message, if any.
	Error string

	// NewURLs and ChangedURLs hold samples for check runs. Not persisted.
	NewURLs      []string
	ChangedURLs  []string
	NewCount     int
	ChangedCount int
}

// SyncReport is what an admin operation returns to its surface.
type SyncReport struct {
	Summary RunSummary
	Stats   Stats
}
