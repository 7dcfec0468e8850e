package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Sync Errors.

	// ErrManifestUnavailable indicates the remote sitemap could not be read or parsed.
	// A run continues with whatever entries were retrieved.
	ErrManifestUnavailable = errors.New("manifest unavailable")

	// ErrFetchFailed indicates a page could not be fetched (network error, timeout, non-2xx).
	ErrFetchFailed = errors.New("fetch failed")

	// ErrExtractionFailed indicates a fetched page did not yield a usable title.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrSyncTimeout indicates a sync run exceeded its overall time budget.
	ErrSyncTimeout = errors.New("sync timed out")

	// ErrOperationInProgress indicates an admin operation is already running.
	// The attempt is rejected, never queued.
	ErrOperationInProgress = errors.New("operation already in progress")

	// Access Errors.

	// ErrPermissionDenied indicates the caller lacks a required role.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrStoreUnavailable indicates the content store cannot be reached or is empty.
	ErrStoreUnavailable = errors.New("store unavailable")

	// Session Errors.

	// ErrSessionNotFound indicates no browsing session is attached to a surface.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the browsing session has timed out.
	ErrSessionExpired = errors.New("session expired")

	// ErrRender indicates a view could not be built or delivered to its surface.
	ErrRender = errors.New("render failed")
)

// FetchError describes a failed outbound request.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap lets errors.Is match both ErrFetchFailed and the transport cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Err}
}

// ExtractionError describes a page that parsed but did not pass validation.
type ExtractionError struct {
	URL    string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.URL, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return ErrExtractionFailed
}
