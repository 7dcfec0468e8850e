package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/librarian/internal/adapters/driving/tui/components/cards"
	"github.com/custodia-labs/librarian/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/librarian/internal/adapters/driving/tui/components/picker"
	"github.com/custodia-labs/librarian/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/librarian/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/librarian/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/librarian/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/services"
)

// mode is what keystrokes currently drive.
type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modePicker
	modeHelp
	modeExpired
)

// App is the browse screen following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	caller domain.Caller

	styles *styles.Styles
	keys   *keymap.KeyMap

	surface *Surface
	view    domain.View

	cards  *cards.List
	input  *input.SearchInput
	status *status.Bar
	picker *picker.Picker

	// pickerEvent builds the event for the open picker's choice.
	pickerEvent func(string) domain.Event

	mode mode
	err  error

	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a browse screen with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	name := os.Getenv("USER")
	if name == "" {
		name = "terminal"
	}
	return &App{
		ports:   ports,
		ctx:     context.Background(),
		caller:  domain.Caller{ID: "terminal:" + name, Name: name},
		styles:  s,
		keys:    km,
		surface: NewSurface(),
		cards:   cards.New(s),
		input:   input.NewSearchInput(s),
		status:  status.NewBar(s, km),
		width:   80,
		height:  24,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Init opens the session and starts listening on the surface.
func (a *App) Init() tea.Cmd {
	a.status.SetState(status.StateLoading)
	return tea.Batch(a.open(), a.surface.Listen())
}

func (a *App) open() tea.Cmd {
	surface := a.surface
	return func() tea.Msg {
		view, err := a.ports.Browse.Open(a.ctx, a.caller, surface)
		return messages.SessionOpened{View: view, Err: err}
	}
}

func (a *App) dispatch(event domain.Event) tea.Cmd {
	id := a.surface.ID()
	return func() tea.Msg {
		r := &reply{}
		err := a.ports.Browse.Dispatch(a.ctx, id, event, r)
		return messages.EventHandled{View: r.view, Notice: r.notice, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.cards.SetWidth(msg.Width)
		a.input.SetWidth(msg.Width)
		a.status.SetWidth(msg.Width)
		return a, nil

	case messages.SessionOpened:
		if msg.Err != nil {
			a.err = msg.Err
			a.status.SetError(openError(msg.Err))
			return a, nil
		}
		a.err = nil
		a.mode = modeBrowse
		a.show(msg.View)
		return a, nil

	case messages.EventHandled:
		return a, a.handled(msg)

	case messages.SurfaceReplaced:
		a.show(msg.View)
		if msg.View.Kind == domain.ViewExpired {
			a.mode = modeExpired
		}
		return a, a.surface.Listen()

	case messages.SurfaceRemoved:
		a.show(services.ExpiredView(0))
		a.mode = modeExpired
		return a, a.surface.Listen()

	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handled(msg messages.EventHandled) tea.Cmd {
	switch {
	case errors.Is(msg.Err, domain.ErrSessionExpired), errors.Is(msg.Err, domain.ErrSessionNotFound):
		a.show(services.ExpiredView(0))
		a.mode = modeExpired
		return nil
	case msg.Err != nil && !errors.Is(msg.Err, domain.ErrRender):
		a.status.SetError(msg.Err.Error())
		return nil
	}
	if msg.View != nil {
		a.show(*msg.View)
	}
	if msg.Notice != "" {
		a.status.SetNotice(msg.Notice)
	}
	return nil
}

// show replaces the screen content with a view.
func (a *App) show(v domain.View) {
	a.view = v
	a.cards.SetCards(v.Cards)
	switch v.Kind {
	case domain.ViewResults:
		a.status.SetState(status.StateResults)
		a.status.SetPage(v.Page, v.PageCount, v.Total)
	case domain.ViewExpired:
		a.status.SetState(status.StateExpired)
	case domain.ViewError:
		a.status.SetError("search failed")
	default:
		a.status.SetState(status.StateReady)
	}
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := msg.String()
	if k == "ctrl+c" {
		return a.quit()
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modePicker:
		return a.handlePickerKey(k)
	case modeHelp:
		a.mode = modeBrowse
		return nil
	case modeExpired:
		switch {
		case keymap.Matches(k, a.keys.Quit):
			return a.quit()
		case keymap.Matches(k, a.keys.Select):
			a.surface = NewSurface()
			return a.Init()
		}
		return nil
	}

	if a.err != nil {
		if keymap.Matches(k, a.keys.Quit) {
			return a.quit()
		}
		return nil
	}

	switch {
	case keymap.Matches(k, a.keys.Quit):
		return a.quit()
	case keymap.Matches(k, a.keys.Help):
		a.mode = modeHelp
	case keymap.Matches(k, a.keys.Search):
		a.mode = modeSearch
		return a.input.Open(a.view.Filters.SearchTerm)
	case keymap.Matches(k, a.keys.Category):
		a.openPicker("Category", "All Categories", a.view.Options.Categories, a.view.Filters.Category, domain.SelectCategory)
	case keymap.Matches(k, a.keys.Author):
		a.openPicker("Author", "All Authors", a.view.Options.Authors, a.view.Filters.Author, domain.SelectAuthor)
	case keymap.Matches(k, a.keys.Tag):
		a.openPicker("Tag", "All Tags", a.view.Options.Tags, a.view.Filters.Tag, domain.SelectTag)
	case keymap.Matches(k, a.keys.Next):
		return a.dispatch(domain.NextPage())
	case keymap.Matches(k, a.keys.Prev):
		return a.dispatch(domain.PrevPage())
	case keymap.Matches(k, a.keys.Reset):
		return a.dispatch(domain.ResetEvent())
	case keymap.Matches(k, a.keys.Up):
		a.cards.MoveUp()
	case keymap.Matches(k, a.keys.Down):
		a.cards.MoveDown()
	}
	return nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		text := a.input.Value()
		a.input.Close()
		a.mode = modeBrowse
		return a.dispatch(domain.SubmitSearch(text))
	case "esc":
		a.input.Close()
		a.mode = modeBrowse
		return nil
	}
	_, cmd := a.input.Update(msg)
	return cmd
}

func (a *App) handlePickerKey(k string) tea.Cmd {
	switch {
	case keymap.Matches(k, a.keys.Up):
		a.picker.Up()
	case keymap.Matches(k, a.keys.Down):
		a.picker.Down()
	case keymap.Matches(k, a.keys.Select):
		event := a.pickerEvent(a.picker.Value())
		a.closePicker()
		return a.dispatch(event)
	case keymap.Matches(k, a.keys.Cancel), keymap.Matches(k, a.keys.Quit):
		a.closePicker()
	}
	return nil
}

func (a *App) openPicker(title, allLabel string, values []string, current string, event func(string) domain.Event) {
	a.picker = picker.New(a.styles, title, allLabel, values, current)
	a.pickerEvent = event
	a.mode = modePicker
	a.status.SetState(status.StatePicking)
}

func (a *App) closePicker() {
	a.picker = nil
	a.pickerEvent = nil
	a.mode = modeBrowse
	a.show(a.view)
}

func (a *App) quit() tea.Cmd {
	a.ports.Browse.Close(a.surface.ID())
	return tea.Quit
}

// View implements tea.Model.
func (a *App) View() string {
	var body string
	switch a.mode {
	case modeHelp:
		body = a.helpView()
	case modePicker:
		body = a.picker.View()
	default:
		body = a.contentView()
	}

	parts := []string{body}
	if a.mode == modeSearch {
		parts = append(parts, "", a.input.View())
	}
	parts = append(parts, "", a.status.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) contentView() string {
	if a.err != nil {
		return a.styles.Error.Render(openError(a.err)) + "\n\n" + a.styles.Muted.Render("Press q to quit.")
	}

	v := a.view
	lines := []string{a.styles.Title.Render(v.Title), ""}
	if !v.Filters.IsEmpty() {
		lines = append(lines, a.styles.Filter.Render("Active Filters: "+v.Filters.Describe()), "")
	}

	switch v.Kind {
	case domain.ViewWelcome:
		lines = append(lines,
			a.styles.Normal.Render(v.Body), "",
			a.styles.Subtitle.Render("Library Stats"),
			a.styles.Normal.Render(fmt.Sprintf("%d articles • %d categories • %d authors • %d tags",
				v.Stats.TotalArticles, v.Stats.TotalCategories, v.Stats.TotalAuthors, v.Stats.TotalTags)),
			a.styles.Muted.Render("Last update: "+services.FormatLastUpdate(v.Stats.LastUpdate)),
		)
	case domain.ViewResults:
		lines = append(lines, a.cards.View())
	case domain.ViewError:
		lines = append(lines, a.styles.Error.Render(v.Body))
	case domain.ViewExpired:
		lines = append(lines, a.styles.Warning.Render(strings.ReplaceAll(v.Body,
			"Use /library to open a fresh interface!", "Press enter to open a fresh session.")))
	default:
		lines = append(lines, a.styles.Muted.Render(v.Body))
	}
	return strings.Join(lines, "\n")
}

func (a *App) helpView() string {
	var rows []string
	for _, group := range a.keys.FullHelp() {
		var hints []string
		for _, b := range group {
			h := b.Help()
			hints = append(hints, fmt.Sprintf("%-6s %s", h.Key, h.Desc))
		}
		rows = append(rows, strings.Join(hints, "   "))
	}
	return a.styles.Border.Render(a.styles.Title.Render("Keys") + "\n\n" + strings.Join(rows, "\n"))
}

func openError(err error) string {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return services.NoticeStoreUnavailable
	}
	return err.Error()
}

// SurfaceID returns the ID of the current session's surface.
func (a *App) SurfaceID() string {
	return a.surface.ID()
}

// CurrentView returns the view on screen.
func (a *App) CurrentView() domain.View {
	return a.view
}
