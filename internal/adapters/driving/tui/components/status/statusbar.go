// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/librarian/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/librarian/internal/adapters/driving/tui/styles"
)

// State is what the browse screen is doing.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateResults State = "results"
	StatePicking State = "picking"
	StateNotice  State = "notice"
	StateError   State = "error"
	StateExpired State = "expired"
)

// Bar displays the session state and keybinding hints.
type Bar struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	state     State
	message   string
	page      int
	pageCount int
	total     int
	width     int
}

// NewBar creates a status bar.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateLoading:
		return s.styles.Muted.Render("Loading...")
	case StateNotice:
		return s.styles.Warning.Render(s.message)
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Error")
	case StateExpired:
		return s.styles.Warning.Render("Session expired")
	case StateResults:
		if s.pageCount > 1 {
			return s.styles.Normal.Render(fmt.Sprintf("Page %d of %d • %d results", s.page, s.pageCount, s.total))
		}
		return s.styles.Normal.Render(fmt.Sprintf("%d results", s.total))
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch s.state {
	case StateResults, StateNotice:
		bindings = s.keymap.ResultsHelp()
	case StatePicking:
		bindings = s.keymap.PickerHelp()
	case StateExpired:
		bindings = []key.Binding{s.keymap.Select, s.keymap.Quit}
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Help.Render(strings.Join(hints, " | "))
}

// SetState sets the state and clears any message.
func (s *Bar) SetState(state State) {
	s.state = state
	s.message = ""
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetNotice shows a transient message.
func (s *Bar) SetNotice(message string) {
	s.state = StateNotice
	s.message = message
}

// SetError shows an error message.
func (s *Bar) SetError(message string) {
	s.state = StateError
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetPage records the pagination shown on the left.
func (s *Bar) SetPage(page, pageCount, total int) {
	s.page, s.pageCount, s.total = page, pageCount, total
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}
