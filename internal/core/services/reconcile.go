package services

import (
	"net/url"
	"strings"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

// DefaultContentPath is the site path under which articles live.
const DefaultContentPath = "/digital-library"

// Classifier decides which manifest URLs are articles.
// Everything under the content path is an article except the listing root,
// category and tag index pages, and any page with a query string.
type Classifier struct {
	ContentPath string
}

// NewClassifier creates a classifier for the content path.
func NewClassifier(contentPath string) Classifier {
	if contentPath == "" {
		contentPath = DefaultContentPath
	}
	return Classifier{ContentPath: "/" + strings.Trim(contentPath, "/")}
}

// IsArticle reports whether rawURL is an article page.
func (c Classifier) IsArticle(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	root := c.ContentPath
	if root == "" {
		root = DefaultContentPath
	}
	path := strings.TrimSuffix(u.Path, "/")

	if path == root {
		return false
	}
	if !strings.HasPrefix(path, root+"/") {
		return false
	}
	// Author queries and every other parametrised filter page.
	if u.RawQuery != "" || u.ForceQuery {
		return false
	}
	first, _, _ := strings.Cut(path[len(root)+1:], "/")
	switch first {
	case "category", "tag":
		return false
	}
	return true
}

// FilterArticles keeps the article entries, dropping duplicate URLs.
func (c Classifier) FilterArticles(entries []domain.ManifestEntry) []domain.ManifestEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]domain.ManifestEntry, 0, len(entries))
	for _, e := range entries {
		if !c.IsArticle(e.URL) {
			continue
		}
		if _, dup := seen[e.URL]; dup {
			continue
		}
		seen[e.URL] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Reconcile selects the entries that must be fetched.
// An entry is new when known has no record for it, and changed when the
// stored LastModified differs from a non-empty manifest LastModified.
// Passing a nil map treats every entry as new.
func Reconcile(entries []domain.ManifestEntry, known map[string]domain.Freshness) domain.ReconcileResult {
	var result domain.ReconcileResult
	for _, e := range entries {
		f, ok := known[e.URL]
		switch {
		case !ok:
			result.New = append(result.New, e)
		case e.LastModified != "" && e.LastModified != f.LastModified:
			result.Changed = append(result.Changed, e)
		default:
			result.Skipped++
		}
	}
	return result
}
