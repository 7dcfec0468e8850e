package driven

import (
	"context"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

// CatalogStore persists the article catalog.
// Only records with ScrapeSuccess=true are visible to search, listing and stats.
type CatalogStore interface {
	// Search returns successful records matching all set filters, newest first.
	// Limit caps the result count; zero means no cap.
	Search(ctx context.Context, filters domain.Filters, limit int) ([]domain.Article, error)

	// ListCategories returns distinct categories, alphabetical, excluding the sentinel.
	ListCategories(ctx context.Context) ([]string, error)

	// ListAuthors returns distinct authors, alphabetical, excluding the sentinel.
	ListAuthors(ctx context.Context) ([]string, error)

	// ListTopTags returns the maxCount most frequent tags sorted alphabetically.
	// Ties in frequency are broken alphabetically.
	ListTopTags(ctx context.Context, maxCount int) ([]string, error)

	// GetStats returns aggregate counts.
	GetStats(ctx context.Context) (domain.Stats, error)

	// Upsert inserts or replaces a record by URL.
	Upsert(ctx context.Context, article *domain.Article) error

	// Get returns the record for a URL, successful or not.
	// Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, url string) (*domain.Article, error)

	// GetFreshness returns nil and no error when the URL is unknown.
	GetFreshness(ctx context.Context, url string) (*domain.Freshness, error)

	// Freshness returns the freshness of every stored URL.
	Freshness(ctx context.Context) (map[string]domain.Freshness, error)

	// Count returns the number of stored records, including failed ones.
	Count(ctx context.Context) (int, error)

	// IsHealthy reports whether at least one successful record exists.
	IsHealthy(ctx context.Context) bool
}

// RunLogStore is the append-only history of sync runs.
type RunLogStore interface {
	// Append records a finished run.
	Append(ctx context.Context, summary *domain.RunSummary) error

	// Recent returns up to limit runs, most recent first.
	Recent(ctx context.Context, limit int) ([]domain.RunSummary, error)
}
