package domain

import "time"

// Phase is the state of a browsing session.
type Phase int

const (
	// PhaseWelcome has no filters and no query issued.
	PhaseWelcome Phase = iota

	// PhaseFiltered has at least one filter or query active.
	PhaseFiltered

	// PhaseExpired is terminal.
	PhaseExpired
)

func (p Phase) String() string {
	switch p {
	case PhaseWelcome:
		return "welcome"
	case PhaseFiltered:
		return "filtered"
	case PhaseExpired:
		return "expired"
	}
	return "unknown"
}

// EventKind discriminates browsing events.
type EventKind string

const (
	EventCategorySelected EventKind = "category_selected"
	EventAuthorSelected   EventKind = "author_selected"
	EventTagSelected      EventKind = "tag_selected"
	EventSearchSubmitted  EventKind = "search_submitted"
	EventPageChanged      EventKind = "page_changed"
	EventReset            EventKind = "reset"
	EventTimeout          EventKind = "timeout"
)

// Event is one UI interaction delivered to a browsing session.
type Event struct {
	Kind EventKind

	// Value is the selected option or submitted text. Empty clears the filter.
	Value string

	// Delta is +1 for next page and -1 for previous page.
	Delta int
}

// SelectCategory sets or, with "", clears the category filter.
func SelectCategory(value string) Event { return Event{Kind: EventCategorySelected, Value: value} }

// SelectAuthor sets or clears the author filter.
func SelectAuthor(value string) Event { return Event{Kind: EventAuthorSelected, Value: value} }

// SelectTag sets or clears the tag filter.
func SelectTag(value string) Event { return Event{Kind: EventTagSelected, Value: value} }

// SubmitSearch sets or clears the search term.
func SubmitSearch(text string) Event { return Event{Kind: EventSearchSubmitted, Value: text} }

// NextPage moves forward one page.
func NextPage() Event { return Event{Kind: EventPageChanged, Delta: 1} }

// PrevPage moves back one page.
func PrevPage() Event { return Event{Kind: EventPageChanged, Delta: -1} }

// ResetEvent clears all filters and returns to the welcome view.
func ResetEvent() Event { return Event{Kind: EventReset} }

// TimeoutEvent expires the session.
func TimeoutEvent() Event { return Event{Kind: EventTimeout} }

// SessionState is the state of one browsing surface.
type SessionState struct {
	// SurfaceID identifies the rendering target the session is attached to.
	SurfaceID string

	// OwnerID is the user who opened the session.
	OwnerID string

	Phase   Phase
	Filters Filters

	// Results is a snapshot taken at the last query. It does not live-update.
	Results []Article

	// Page is a zero-based index into Results.
	Page int

	CreatedAt    time.Time
	LastActivity time.Time
}

// PageCount returns the number of pages for the given page size. Never less than 1.
func (s *SessionState) PageCount(pageSize int) int {
	if pageSize <= 0 || len(s.Results) == 0 {
		return 1
	}
	return (len(s.Results) + pageSize - 1) / pageSize
}

// PageSlice returns the results on the current page.
func (s *SessionState) PageSlice(pageSize int) []Article {
	if pageSize <= 0 {
		return nil
	}
	start := s.Page * pageSize
	if start >= len(s.Results) || start < 0 {
		return nil
	}
	end := start + pageSize
	if end > len(s.Results) {
		end = len(s.Results)
	}
	return s.Results[start:end]
}

// IdleFor reports how long the session has been inactive at now.
func (s *SessionState) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActivity)
}
