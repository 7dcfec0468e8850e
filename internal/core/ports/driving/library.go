package driving

import (
	"context"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

// LibraryService is the read side of the catalog.
type LibraryService interface {
	// Search returns matching articles, newest first.
	Search(ctx context.Context, filters domain.Filters, limit int) ([]domain.Article, error)

	// Options returns the dropdown option set. Cached until the catalog changes.
	Options(ctx context.Context) (domain.OptionSet, error)

	// Article returns the successfully fetched record for url.
	// Returns domain.ErrNotFound when absent or failed.
	Article(ctx context.Context, url string) (*domain.Article, error)

	// Stats returns aggregate counts. Cached until the catalog changes.
	Stats(ctx context.Context) (domain.Stats, error)

	// Healthy reports whether the catalog can serve users.
	Healthy(ctx context.Context) bool
}
