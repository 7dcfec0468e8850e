// Package picker is a single-choice option list used for the category,
// author and tag filters.
package picker

import (
	"strings"

	"github.com/custodia-labs/librarian/internal/adapters/driving/tui/styles"
)

// visibleRows bounds how many options are drawn at once.
const visibleRows = 12

// Picker lists an "All ..." entry followed by the option values.
// Choosing the first entry yields "", which clears the filter.
type Picker struct {
	title   string
	options []string
	cursor  int
	styles  *styles.Styles
}

// New creates a picker. current is highlighted when present.
func New(s *styles.Styles, title, allLabel string, values []string, current string) *Picker {
	if s == nil {
		s = styles.DefaultStyles()
	}
	p := &Picker{
		title:   title,
		options: append([]string{allLabel}, values...),
		styles:  s,
	}
	for i, v := range values {
		if v == current {
			p.cursor = i + 1
			break
		}
	}
	return p
}

// Up moves the cursor up.
func (p *Picker) Up() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// Down moves the cursor down.
func (p *Picker) Down() {
	if p.cursor < len(p.options)-1 {
		p.cursor++
	}
}

// Value returns the chosen filter value. The "All" entry is "".
func (p *Picker) Value() string {
	if p.cursor == 0 {
		return ""
	}
	return p.options[p.cursor]
}

// View renders the options around the cursor.
func (p *Picker) View() string {
	start := 0
	if p.cursor >= visibleRows {
		start = p.cursor - visibleRows + 1
	}
	end := start + visibleRows
	if end > len(p.options) {
		end = len(p.options)
	}

	lines := []string{p.styles.Subtitle.Render(p.title), ""}
	for i := start; i < end; i++ {
		if i == p.cursor {
			lines = append(lines, p.styles.Selected.Render("> "+p.options[i]))
		} else {
			lines = append(lines, p.styles.Normal.Render("  "+p.options[i]))
		}
	}
	if end < len(p.options) {
		lines = append(lines, p.styles.Muted.Render("  ..."))
	}
	return p.styles.Border.Render(strings.Join(lines, "\n"))
}
