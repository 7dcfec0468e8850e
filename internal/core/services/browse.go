package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
	"github.com/custodia-labs/librarian/internal/core/ports/driving"
	"github.com/custodia-labs/librarian/internal/logger"
)

// Ensure BrowseService implements the interface.
var _ driving.BrowseService = (*BrowseService)(nil)

// BrowseOptions configures browsing sessions.
type BrowseOptions struct {
	// PageSize is the number of cards per page.
	PageSize int

	// ResultLimit caps each search.
	ResultLimit int

	// IdleTimeout expires a session after this long without an event.
	IdleTimeout time.Duration

	// SweepInterval is how often Run looks for idle sessions.
	SweepInterval time.Duration
}

// DefaultBrowseOptions returns the production defaults.
func DefaultBrowseOptions() BrowseOptions {
	return BrowseOptions{
		PageSize:      5,
		ResultLimit:   20,
		IdleTimeout:   10 * time.Minute,
		SweepInterval: 30 * time.Second,
	}
}

// session is one live browsing surface. mu serialises its events.
type session struct {
	mu      sync.Mutex
	state   domain.SessionState
	surface driven.Surface
	expired atomic.Bool
}

// BrowseService keeps one session per surface, keyed by surface ID.
// Sessions share nothing but the read-only catalog.
type BrowseService struct {
	library   driving.LibraryService
	telemetry driven.Telemetry
	opts      BrowseOptions
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewBrowseService creates a session manager.
func NewBrowseService(library driving.LibraryService, telemetry driven.Telemetry, opts BrowseOptions) *BrowseService {
	def := DefaultBrowseOptions()
	if opts.PageSize <= 0 {
		opts.PageSize = def.PageSize
	}
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = def.ResultLimit
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = def.IdleTimeout
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = def.SweepInterval
	}
	return &BrowseService{
		library:   library,
		telemetry: telemetryOrNoop(telemetry),
		opts:      opts,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// Options returns the effective options.
func (b *BrowseService) Options() BrowseOptions {
	return b.opts
}

// Open starts a session on the surface and returns the welcome view.
// An existing session on the same surface is replaced.
func (b *BrowseService) Open(ctx context.Context, caller domain.Caller, surface driven.Surface) (domain.View, error) {
	if surface == nil || surface.ID() == "" {
		return domain.View{}, fmt.Errorf("%w: surface required", domain.ErrInvalidInput)
	}
	if !b.library.Healthy(ctx) {
		return domain.View{}, domain.ErrStoreUnavailable
	}
	view, err := b.welcome(ctx)
	if err != nil {
		return domain.View{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	now := b.now()
	sess := &session{
		surface: surface,
		state: domain.SessionState{
			SurfaceID:    surface.ID(),
			OwnerID:      caller.ID,
			Phase:        domain.PhaseWelcome,
			CreatedAt:    now,
			LastActivity: now,
		},
	}

	b.mu.Lock()
	b.sessions[surface.ID()] = sess
	n := len(b.sessions)
	b.mu.Unlock()

	b.telemetry.SessionsActive(n)
	logger.Debug("Browse session opened: surface=%s owner=%s", surface.ID(), caller.ID)
	return view, nil
}

// State returns a copy of the session state for a surface.
func (b *BrowseService) State(surfaceID string) (domain.SessionState, error) {
	sess := b.lookup(surfaceID)
	if sess == nil {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	st := sess.state
	st.Results = append([]domain.Article(nil), sess.state.Results...)
	return st, nil
}

// Dispatch applies one event to the session on surfaceID.
func (b *BrowseService) Dispatch(ctx context.Context, surfaceID string, event domain.Event, reply driven.EventReply) error {
	sess := b.lookup(surfaceID)
	if sess == nil {
		return domain.ErrSessionNotFound
	}
	b.telemetry.BrowseEvent(event.Kind)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.expired.Load() {
		return domain.ErrSessionExpired
	}
	now := b.now()
	if event.Kind == domain.EventTimeout || sess.state.IdleFor(now) >= b.opts.IdleTimeout {
		b.expire(ctx, sess)
		if event.Kind == domain.EventTimeout {
			return nil
		}
		return domain.ErrSessionExpired
	}
	sess.state.LastActivity = now

	// Acknowledge before the slower search and render.
	if err := reply.Acknowledge(ctx); err != nil {
		logger.Warn("Acknowledge failed on %s: %v", surfaceID, err)
	}

	view, notice, err := b.transition(ctx, &sess.state, event)
	if err != nil {
		return err
	}
	if notice != "" {
		if err := reply.Notice(ctx, notice); err != nil {
			logger.Debug("Notice failed on %s: %v", surfaceID, err)
		}
		return nil
	}

	if err := reply.Render(ctx, view); err != nil {
		logger.Warn("Render failed on %s: %v", surfaceID, err)
		// Keep the filters so the user is not stuck, drop the results.
		sess.state.Results = nil
		sess.state.Page = 0
		if nerr := reply.Notice(ctx, NoticeRetry); nerr != nil {
			logger.Debug("Retry notice failed on %s: %v", surfaceID, nerr)
		}
		return fmt.Errorf("%w: %w", domain.ErrRender, err)
	}
	return nil
}

// transition mutates state for one event and returns the view to render,
// or a notice when nothing changed.
func (b *BrowseService) transition(
	ctx context.Context,
	state *domain.SessionState,
	event domain.Event,
) (domain.View, string, error) {
	switch event.Kind {
	case domain.EventCategorySelected:
		state.Filters.Category = event.Value
	case domain.EventAuthorSelected:
		state.Filters.Author = event.Value
	case domain.EventTagSelected:
		state.Filters.Tag = event.Value
	case domain.EventSearchSubmitted:
		state.Filters.SearchTerm = event.Value
	case domain.EventPageChanged:
		return b.page(ctx, state, event.Delta)
	case domain.EventReset:
		state.Filters = domain.Filters{}
		state.Results = nil
		state.Page = 0
		state.Phase = domain.PhaseWelcome
		view, err := b.welcome(ctx)
		if err != nil {
			logger.Warn("Welcome view failed: %v", err)
			return ErrorView(state.Filters, domain.OptionSet{}), "", nil
		}
		return view, "", nil
	default:
		return domain.View{}, "", fmt.Errorf("%w: event %q", domain.ErrInvalidInput, event.Kind)
	}

	// Filter change: back to the first page and re-query.
	state.Filters = state.Filters.Normalise()
	state.Page = 0
	state.Phase = domain.PhaseFiltered
	options := b.options(ctx)

	results, err := b.library.Search(ctx, state.Filters, b.opts.ResultLimit)
	if err != nil {
		logger.Warn("Search failed for %s: %v", state.SurfaceID, err)
		state.Results = []domain.Article{}
		return ErrorView(state.Filters, options), "", nil
	}
	state.Results = results
	return ResultsView(state, b.opts.PageSize, options), "", nil
}

func (b *BrowseService) page(ctx context.Context, state *domain.SessionState, delta int) (domain.View, string, error) {
	next := state.Page + delta
	switch {
	case next < 0:
		return domain.View{}, NoticeFirstPage, nil
	case next >= state.PageCount(b.opts.PageSize):
		return domain.View{}, NoticeLastPage, nil
	}
	state.Page = next
	return ResultsView(state, b.opts.PageSize, b.options(ctx)), "", nil
}

// Close ends a session without touching its surface.
func (b *BrowseService) Close(surfaceID string) {
	b.mu.Lock()
	sess, ok := b.sessions[surfaceID]
	if ok {
		delete(b.sessions, surfaceID)
	}
	n := len(b.sessions)
	b.mu.Unlock()

	if ok {
		sess.expired.Store(true)
		b.telemetry.SessionsActive(n)
	}
}

// Sweep expires every idle session and returns how many were expired.
// Sessions busy with an event are skipped.
func (b *BrowseService) Sweep(ctx context.Context) int {
	b.mu.Lock()
	candidates := make([]*session, 0, len(b.sessions))
	for _, sess := range b.sessions {
		candidates = append(candidates, sess)
	}
	b.mu.Unlock()

	now := b.now()
	expired := 0
	for _, sess := range candidates {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.state.IdleFor(now) >= b.opts.IdleTimeout && b.expire(ctx, sess) {
			expired++
		}
		sess.mu.Unlock()
	}
	if expired > 0 {
		logger.Debug("Swept %d idle browse sessions", expired)
	}
	return expired
}

// Run sweeps on an interval until the context is done.
func (b *BrowseService) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			b.Sweep(ctx)
		}
	}
}

// Active returns the number of live sessions.
func (b *BrowseService) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// expire moves a session to Expired and cleans up its surface.
// Only the caller that removes the session from the map does the cleanup,
// so a session expires exactly once. Surface errors are swallowed.
// Callers must hold sess.mu.
func (b *BrowseService) expire(ctx context.Context, sess *session) bool {
	id := sess.state.SurfaceID

	b.mu.Lock()
	cur, ok := b.sessions[id]
	if !ok || cur != sess {
		b.mu.Unlock()
		return false
	}
	delete(b.sessions, id)
	n := len(b.sessions)
	b.mu.Unlock()

	sess.expired.Store(true)
	sess.state.Phase = domain.PhaseExpired
	b.telemetry.SessionExpired()
	b.telemetry.SessionsActive(n)

	if err := sess.surface.Remove(ctx); err != nil {
		logger.Debug("Remove failed on %s, replacing: %v", id, err)
		if err := sess.surface.Replace(ctx, ExpiredView(b.opts.IdleTimeout)); err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug("Replace failed on %s: %v", id, err)
		}
	}
	logger.Debug("Browse session expired: surface=%s", id)
	return true
}

func (b *BrowseService) lookup(surfaceID string) *session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[surfaceID]
}

func (b *BrowseService) welcome(ctx context.Context) (domain.View, error) {
	stats, err := b.library.Stats(ctx)
	if err != nil {
		return domain.View{}, err
	}
	return WelcomeView(stats, b.options(ctx), b.opts.IdleTimeout), nil
}

func (b *BrowseService) options(ctx context.Context) domain.OptionSet {
	options, err := b.library.Options(ctx)
	if err != nil {
		logger.Warn("Option set unavailable: %v", err)
		return domain.OptionSet{}
	}
	return options
}
