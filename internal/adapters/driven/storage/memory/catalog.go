package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore is an in-memory implementation of driven.CatalogStore.
// Used by tests and the --memory development mode.
type CatalogStore struct {
	mu       sync.RWMutex
	articles map[string]domain.Article
}

// NewCatalogStore creates a new in-memory catalog.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		articles: make(map[string]domain.Article),
	}
}

// Upsert inserts or replaces a record by URL.
func (s *CatalogStore) Upsert(_ context.Context, article *domain.Article) error {
	if article == nil || article.URL == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[article.URL] = cloneArticle(*article)
	return nil
}

// Get returns the record for a URL.
func (s *CatalogStore) Get(_ context.Context, url string) (*domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneArticle(a)
	return &out, nil
}

// Search returns successful records matching all filters, newest first.
func (s *CatalogStore) Search(_ context.Context, filters domain.Filters, limit int) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Article
	for _, a := range s.articles {
		if a.ScrapeSuccess && matches(&a, filters) {
			out = append(out, cloneArticle(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PublishedDate != out[j].PublishedDate {
			return out[i].PublishedDate > out[j].PublishedDate
		}
		if !out[i].ScrapedAt.Equal(out[j].ScrapedAt) {
			return out[i].ScrapedAt.After(out[j].ScrapedAt)
		}
		return out[i].URL < out[j].URL
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListCategories returns distinct category labels, alphabetical.
func (s *CatalogStore) ListCategories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(map[string]struct{})
	for _, a := range s.articles {
		if !a.ScrapeSuccess {
			continue
		}
		for _, c := range a.Categories {
			if c != "" && c != domain.Uncategorized {
				set[c] = struct{}{}
			}
		}
	}
	return sortedKeys(set), nil
}

// ListAuthors returns distinct authors, alphabetical.
func (s *CatalogStore) ListAuthors(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(map[string]struct{})
	for _, a := range s.articles {
		if a.ScrapeSuccess && a.Author != "" && a.Author != domain.UnknownAuthor {
			set[a.Author] = struct{}{}
		}
	}
	return sortedKeys(set), nil
}

// ListTopTags returns the maxCount most frequent tags, alphabetical.
func (s *CatalogStore) ListTopTags(_ context.Context, maxCount int) ([]string, error) {
	s.mu.RLock()
	counts := s.tagCounts()
	s.mu.RUnlock()
	return TopTags(counts, maxCount), nil
}

// GetStats returns aggregate counts over successful records.
func (s *CatalogStore) GetStats(ctx context.Context) (domain.Stats, error) {
	categories, _ := s.ListCategories(ctx)
	authors, _ := s.ListAuthors(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.Stats{
		TotalCategories: len(categories),
		TotalAuthors:    len(authors),
		TotalTags:       len(s.tagCounts()),
	}
	for _, a := range s.articles {
		if !a.ScrapeSuccess {
			continue
		}
		stats.TotalArticles++
		if a.ScrapedAt.After(stats.LastUpdate) {
			stats.LastUpdate = a.ScrapedAt
		}
	}
	return stats, nil
}

// GetFreshness returns nil when the URL is unknown.
func (s *CatalogStore) GetFreshness(_ context.Context, url string) (*domain.Freshness, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[url]
	if !ok {
		return nil, nil
	}
	return &domain.Freshness{LastModified: a.LastModified, ScrapedAt: a.ScrapedAt}, nil
}

// Freshness returns the freshness of every stored URL.
func (s *CatalogStore) Freshness(_ context.Context) (map[string]domain.Freshness, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Freshness, len(s.articles))
	for url, a := range s.articles {
		out[url] = domain.Freshness{LastModified: a.LastModified, ScrapedAt: a.ScrapedAt}
	}
	return out, nil
}

// Count returns the number of stored records, including failed ones.
func (s *CatalogStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles), nil
}

// IsHealthy reports whether at least one successful record exists.
func (s *CatalogStore) IsHealthy(_ context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.articles {
		if a.ScrapeSuccess {
			return true
		}
	}
	return false
}

// tagCounts must be called with the lock held.
func (s *CatalogStore) tagCounts() map[string]int {
	counts := make(map[string]int)
	for _, a := range s.articles {
		if !a.ScrapeSuccess {
			continue
		}
		for _, t := range a.Tags {
			if t != "" {
				counts[t]++
			}
		}
	}
	return counts
}

// TopTags selects the maxCount most frequent tags, ties broken alphabetically,
// and returns them sorted alphabetically.
func TopTags(counts map[string]int, maxCount int) []string {
	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if maxCount >= 0 && len(tags) > maxCount {
		tags = tags[:maxCount]
	}
	sort.Strings(tags)
	return tags
}

func matches(a *domain.Article, f domain.Filters) bool {
	if f.Category != "" && !containsFold(domain.JoinCategories(a.Categories), f.Category) {
		return false
	}
	if f.Author != "" && a.Author != f.Author {
		return false
	}
	if f.Tag != "" && !hasTag(a.Tags, f.Tag) {
		return false
	}
	if f.SearchTerm != "" {
		fields := []string{
			a.Title,
			domain.JoinCategories(a.Categories),
			a.Author,
			a.Description,
		}
		fields = append(fields, a.Tags...)
		found := false
		for _, field := range fields {
			if containsFold(field, f.SearchTerm) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func cloneArticle(a domain.Article) domain.Article {
	a.Categories = append([]string(nil), a.Categories...)
	a.Tags = append([]string(nil), a.Tags...)
	return a
}

// RunLogStore is an in-memory implementation of driven.RunLogStore.
type RunLogStore struct {
	mu   sync.RWMutex
	runs []domain.RunSummary
}

// Ensure RunLogStore implements the interface.
var _ driven.RunLogStore = (*RunLogStore)(nil)

// NewRunLogStore creates an empty run log.
func NewRunLogStore() *RunLogStore {
	return &RunLogStore{}
}

// Append records a finished run, assigning an ID when empty.
func (s *RunLogStore) Append(_ context.Context, summary *domain.RunSummary) error {
	if summary == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	cp := *summary
	cp.NewURLs = nil
	cp.ChangedURLs = nil
	s.runs = append(s.runs, cp)
	return nil
}

// Recent returns up to limit runs, most recent first.
func (s *RunLogStore) Recent(_ context.Context, limit int) ([]domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.runs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.RunSummary, 0, n)
	for i := len(s.runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}
