// Package cards renders a page of article cards.
package cards

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/librarian/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/librarian/internal/core/domain"
)

// List is one page of cards with a highlighted entry.
type List struct {
	cards    []domain.Card
	selected int
	styles   *styles.Styles
	width    int
}

// New creates an empty card list.
func New(s *styles.Styles) *List {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &List{styles: s, width: 80}
}

// SetCards replaces the page and resets the highlight.
func (l *List) SetCards(cards []domain.Card) {
	l.cards = cards
	l.selected = 0
}

// Cards returns the current page.
func (l *List) Cards() []domain.Card {
	return l.cards
}

// Selected returns the highlighted index.
func (l *List) Selected() int {
	return l.selected
}

// SelectedCard returns the highlighted card, or nil when empty.
func (l *List) SelectedCard() *domain.Card {
	if l.selected < 0 || l.selected >= len(l.cards) {
		return nil
	}
	return &l.cards[l.selected]
}

// MoveUp moves the highlight up.
func (l *List) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the highlight down.
func (l *List) MoveDown() {
	if l.selected < len(l.cards)-1 {
		l.selected++
	}
}

// SetWidth sets the render width.
func (l *List) SetWidth(width int) {
	l.width = width
}

// View renders every card. The highlighted card also shows its description.
func (l *List) View() string {
	if len(l.cards) == 0 {
		return l.styles.Muted.Render("No results")
	}
	blocks := make([]string, 0, len(l.cards))
	for i := range l.cards {
		blocks = append(blocks, l.render(i, &l.cards[i]))
	}
	return strings.Join(blocks, "\n\n")
}

func (l *List) render(i int, c *domain.Card) string {
	indicator := "  "
	title := l.styles.Normal.Render(c.Title)
	if i == l.selected {
		indicator = "> "
		title = l.styles.Selected.Render(c.Title)
	}

	lines := []string{
		indicator + title,
		"    " + l.styles.Muted.Render(fmt.Sprintf("%s • %s • %s", c.Category, c.Author, c.Date)),
		"    " + l.styles.Muted.Render("Tags: "+c.Tags),
		"    " + l.styles.Link.Render(c.URL),
	}
	if i == l.selected && c.Description != "" {
		lines = append(lines, "    "+l.styles.Normal.Render(c.Description))
	}
	return strings.Join(lines, "\n")
}
