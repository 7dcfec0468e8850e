package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/custodia-labs/librarian/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
)

var (
	_ driven.Surface    = (*Surface)(nil)
	_ driven.EventReply = (*reply)(nil)
)

// Surface is the terminal screen a session renders to. Calls made by the
// session outside of an event, such as expiry, reach the program through a
// channel the model listens on.
type Surface struct {
	id     string
	events chan tea.Msg
}

// NewSurface creates a surface with a fresh random ID.
func NewSurface() *Surface {
	return &Surface{
		id:     uuid.NewString(),
		events: make(chan tea.Msg, 4),
	}
}

// ID returns the surface ID.
func (s *Surface) ID() string { return s.id }

// Remove tells the program its session is gone.
func (s *Surface) Remove(ctx context.Context) error {
	return s.send(ctx, messages.SurfaceRemoved{})
}

// Replace hands the program a view to show.
func (s *Surface) Replace(ctx context.Context, view domain.View) error {
	return s.send(ctx, messages.SurfaceReplaced{View: view})
}

func (s *Surface) send(ctx context.Context, msg tea.Msg) error {
	select {
	case s.events <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Listen waits for the next out-of-band message.
func (s *Surface) Listen() tea.Cmd {
	return func() tea.Msg {
		return <-s.events
	}
}

// reply collects what one event produced. The model applies it once
// Dispatch returns, so nothing here touches model state.
type reply struct {
	view   *domain.View
	notice string
}

func (r *reply) Acknowledge(context.Context) error { return nil }

func (r *reply) Render(_ context.Context, view domain.View) error {
	r.view = &view
	return nil
}

func (r *reply) Notice(_ context.Context, text string) error {
	r.notice = text
	return nil
}
