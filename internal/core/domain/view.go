package domain

// ViewKind selects the layout a surface renders.
type ViewKind string

const (
	ViewWelcome ViewKind = "welcome"
	ViewResults ViewKind = "results"
	ViewEmpty   ViewKind = "empty"
	ViewError   ViewKind = "error"
	ViewExpired ViewKind = "expired"
)

// Card is the display form of one article. Fields are already truncated
// and have display fallbacks applied.
type Card struct {
	Title       string
	URL         string
	Category    string
	Author      string
	Date        string
	Tags        string
	Description string
}

// View is platform-neutral render content for a browsing surface.
// Rendering is always a full re-render of a View.
type View struct {
	Kind  ViewKind
	Title string
	Body  string

	// Stats is set on the welcome view.
	Stats Stats

	// Filters are the filters active when the view was built.
	Filters Filters

	Cards []Card

	// Page is one-based for display. PageCount is at least 1.
	Page      int
	PageCount int

	// Total is the number of matching results.
	Total int

	// Options populate the filter controls.
	Options OptionSet

	// Interactive is false on terminal views such as expired.
	Interactive bool
}

// HasPrev reports whether a previous page exists.
func (v View) HasPrev() bool { return v.Page > 1 }

// HasNext reports whether a following page exists.
func (v View) HasNext() bool { return v.Page < v.PageCount }
