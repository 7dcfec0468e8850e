package driven

import (
	"context"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

// ManifestSource discovers the remote site's URL manifest.
type ManifestSource interface {
	// Discover fetches and flattens the manifest, following one level of index.
	// A partial result is returned together with an error wrapping
	// domain.ErrManifestUnavailable when some manifests failed.
	Discover(ctx context.Context) ([]domain.ManifestEntry, error)
}

// ArchiveSource reads the paginated archive listing.
type ArchiveSource interface {
	// FirstPage returns the URL of the first listing page.
	FirstPage() string

	// ListPage fetches one listing page.
	ListPage(ctx context.Context, pageURL string) (*domain.ArchivePage, error)
}

// PageFetcher retrieves raw page content.
// Implementations enforce the request delay and the bounded retry.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ExtractHint carries reconciler knowledge into extraction.
type ExtractHint struct {
	// LastModified is copied onto the record.
	LastModified string

	// ArchiveDate overrides the page's own date when non-empty.
	ArchiveDate string
}

// Extractor maps page content to an article.
type Extractor interface {
	// Extract always returns a populated article. When the page has no title,
	// the article has ScrapeSuccess=false and the error is a *domain.ExtractionError.
	Extract(url string, page []byte, hint ExtractHint) (*domain.Article, error)
}
