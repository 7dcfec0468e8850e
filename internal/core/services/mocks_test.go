package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockManifest implements driven.ManifestSource.
type mockManifest struct {
	entries []domain.ManifestEntry
	err     error
}

func (m *mockManifest) Discover(_ context.Context) ([]domain.ManifestEntry, error) {
	return m.entries, m.err
}

// mockArchive implements driven.ArchiveSource over a map of pages.
type mockArchive struct {
	mu     sync.Mutex
	first  string
	pages  map[string]*domain.ArchivePage
	errs   map[string]error
	visits []string
}

func (m *mockArchive) FirstPage() string { return m.first }

func (m *mockArchive) ListPage(_ context.Context, pageURL string) (*domain.ArchivePage, error) {
	m.mu.Lock()
	m.visits = append(m.visits, pageURL)
	m.mu.Unlock()
	if err := m.errs[pageURL]; err != nil {
		return nil, err
	}
	p, ok := m.pages[pageURL]
	if !ok {
		return nil, errors.New("no such page")
	}
	return p, nil
}

// mockFetcher implements driven.PageFetcher. Pages are keyed by URL.
type mockFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	errs    map[string]error
	fetched []string
	block   chan struct{}
	onFetch func(url string)
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, url)
	block := m.block
	onFetch := m.onFetch
	m.mu.Unlock()

	if onFetch != nil {
		onFetch(url)
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := m.errs[url]; err != nil {
		return nil, err
	}
	return []byte(m.pages[url]), nil
}

func (m *mockFetcher) Fetched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fetched...)
}

// fakeExtractor treats the page body as "title|category|author|date".
// An empty title produces a failed record.
type fakeExtractor struct{}

func (fakeExtractor) Extract(url string, page []byte, hint driven.ExtractHint) (*domain.Article, error) {
	parts := strings.Split(string(page), "|")
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	a := &domain.Article{
		URL:           url,
		Title:         parts[0],
		Categories:    []string{parts[1]},
		Author:        parts[2],
		PublishedDate: parts[3],
		LastModified:  hint.LastModified,
		ScrapeSuccess: true,
	}
	if hint.ArchiveDate != "" {
		a.PublishedDate = hint.ArchiveDate
	}
	if a.Title == "" {
		a.Title = domain.TitleNotFound
		a.ScrapeSuccess = false
		return a, &domain.ExtractionError{URL: url, Reason: "missing title"}
	}
	return a, nil
}

// mockSurface implements driven.Surface.
type mockSurface struct {
	mu         sync.Mutex
	id         string
	removeErr  error
	replaceErr error
	removed    int
	replaced   []domain.View
}

func newMockSurface(id string) *mockSurface { return &mockSurface{id: id} }

func (m *mockSurface) ID() string { return m.id }

func (m *mockSurface) Remove(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed++
	return m.removeErr
}

func (m *mockSurface) Replace(_ context.Context, view domain.View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaced = append(m.replaced, view)
	return m.replaceErr
}

// mockReply implements driven.EventReply and records calls in order.
type mockReply struct {
	mu        sync.Mutex
	calls     []string
	views     []domain.View
	notices   []string
	renderErr error
}

func (m *mockReply) Acknowledge(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "ack")
	return nil
}

func (m *mockReply) Render(_ context.Context, view domain.View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "render")
	if m.renderErr != nil {
		return m.renderErr
	}
	m.views = append(m.views, view)
	return nil
}

func (m *mockReply) Notice(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "notice")
	m.notices = append(m.notices, text)
	return nil
}

func (m *mockReply) lastView() domain.View {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.views) == 0 {
		return domain.View{}
	}
	return m.views[len(m.views)-1]
}

// failingStore wraps a CatalogStore and fails Search.
type failingStore struct {
	driven.CatalogStore
	searchErr error
}

func (f *failingStore) Search(ctx context.Context, filters domain.Filters, limit int) ([]domain.Article, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.CatalogStore.Search(ctx, filters, limit)
}

// recordingTelemetry implements driven.Telemetry.
type recordingTelemetry struct {
	mu      sync.Mutex
	runs    []domain.RunSummary
	pages   map[string]int
	events  map[domain.EventKind]int
	expired int
	active  int
}

func newRecordingTelemetry() *recordingTelemetry {
	return &recordingTelemetry{pages: map[string]int{}, events: map[domain.EventKind]int{}}
}

func (r *recordingTelemetry) RunFinished(s *domain.RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, *s)
}

func (r *recordingTelemetry) PageProcessed(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[result]++
}

func (r *recordingTelemetry) SessionsActive(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = n
}

func (r *recordingTelemetry) BrowseEvent(kind domain.EventKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[kind]++
}

func (r *recordingTelemetry) SessionExpired() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expired++
}
