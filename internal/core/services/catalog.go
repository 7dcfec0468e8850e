package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
	"github.com/custodia-labs/librarian/internal/core/ports/driving"
)

// Ensure Catalog implements the interface.
var _ driving.LibraryService = (*Catalog)(nil)

// Catalog is the read facade over the CatalogStore.
// It caches the dropdown option set and the stats, invalidating both on
// every write that goes through it.
type Catalog struct {
	store    driven.CatalogStore
	topTags  int
	maxItems int

	mu      sync.RWMutex
	options *domain.OptionSet
	stats   *domain.Stats

	// gen is bumped by Invalidate. A value built under an older
	// generation is returned to its caller but never cached.
	gen uint64
}

// CatalogOptions bound the size of the dropdown lists.
type CatalogOptions struct {
	// TopTags is how many of the most frequent tags are offered.
	TopTags int

	// MaxItems caps the category and author lists.
	MaxItems int
}

// NewCatalog creates a catalog facade.
func NewCatalog(store driven.CatalogStore, opts CatalogOptions) *Catalog {
	if opts.TopTags <= 0 {
		opts.TopTags = 24
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = 24
	}
	return &Catalog{store: store, topTags: opts.TopTags, maxItems: opts.MaxItems}
}

// Store returns the underlying store.
func (c *Catalog) Store() driven.CatalogStore {
	return c.store
}

// Search returns matching articles, newest first.
func (c *Catalog) Search(ctx context.Context, filters domain.Filters, limit int) ([]domain.Article, error) {
	results, err := c.store.Search(ctx, filters.Normalise(), limit)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	return results, nil
}

// Article returns one successfully fetched record.
// Failed records are reported as domain.ErrNotFound.
func (c *Catalog) Article(ctx context.Context, url string) (*domain.Article, error) {
	article, err := c.store.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if !article.ScrapeSuccess {
		return nil, domain.ErrNotFound
	}
	return article, nil
}

// Options returns the cached option set, building it on first use.
func (c *Catalog) Options(ctx context.Context) (domain.OptionSet, error) {
	c.mu.RLock()
	cached, gen := c.options, c.gen
	c.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	set, err := BuildOptionSet(ctx, c.store, c.topTags, c.maxItems)
	if err != nil {
		return domain.OptionSet{}, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.options = &set
	}
	c.mu.Unlock()
	return set, nil
}

// Stats returns the cached aggregate stats.
func (c *Catalog) Stats(ctx context.Context) (domain.Stats, error) {
	c.mu.RLock()
	cached, gen := c.stats, c.gen
	c.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	stats, err := c.store.GetStats(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("catalog stats: %w", err)
	}

	c.mu.Lock()
	if c.gen == gen {
		c.stats = &stats
	}
	c.mu.Unlock()
	return stats, nil
}

// Healthy reports whether at least one successful record exists.
func (c *Catalog) Healthy(ctx context.Context) bool {
	return c.store.IsHealthy(ctx)
}

// Upsert writes a record and invalidates the caches.
func (c *Catalog) Upsert(ctx context.Context, article *domain.Article) error {
	if err := c.store.Upsert(ctx, article); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// Invalidate drops the cached option set and stats.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.options = nil
	c.stats = nil
	c.gen++
	c.mu.Unlock()
}

// BuildOptionSet queries the store for the dropdown lists.
func BuildOptionSet(ctx context.Context, store driven.CatalogStore, topTags, maxItems int) (domain.OptionSet, error) {
	categories, err := store.ListCategories(ctx)
	if err != nil {
		return domain.OptionSet{}, fmt.Errorf("list categories: %w", err)
	}
	authors, err := store.ListAuthors(ctx)
	if err != nil {
		return domain.OptionSet{}, fmt.Errorf("list authors: %w", err)
	}
	tags, err := store.ListTopTags(ctx, topTags)
	if err != nil {
		return domain.OptionSet{}, fmt.Errorf("list tags: %w", err)
	}
	return domain.OptionSet{
		Categories: head(categories, maxItems),
		Authors:    head(authors, maxItems),
		Tags:       tags,
	}, nil
}

func head(values []string, n int) []string {
	if n > 0 && len(values) > n {
		return values[:n]
	}
	return values
}
