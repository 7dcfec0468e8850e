package site

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
)

// Ensure Archive implements the interface.
var _ driven.ArchiveSource = (*Archive)(nil)

// Archive listing selectors.
const (
	archiveEntrySelector = "article.blog-basic-grid--container"
	archiveLinkSelector  = "h1.blog-title a[href]"
	archiveDateSelector  = "time.blog-date"
	archiveNextSelector  = "div.older a[href]"
)

// archiveDateLayout is the listing's M/D/YY date format.
const archiveDateLayout = "1/2/06"

// Archive reads the paginated archive listing.
type Archive struct {
	client *Client
	first  string
}

// NewArchive lists from {base}{contentPath}.
func NewArchive(client *Client, baseURL, contentPath string) *Archive {
	return &Archive{
		client: client,
		first:  strings.TrimRight(baseURL, "/") + "/" + strings.Trim(contentPath, "/"),
	}
}

// FirstPage returns the URL of the first listing page.
func (a *Archive) FirstPage() string {
	return a.first
}

// ListPage fetches and parses one listing page.
func (a *Archive) ListPage(ctx context.Context, pageURL string) (*domain.ArchivePage, error) {
	data, err := a.client.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: archive url %q", domain.ErrInvalidInput, pageURL)
	}
	return ParseArchivePage(base, data)
}

// ParseArchivePage extracts entries and the next-page link. Relative links
// are resolved against base. Entries without a date are skipped.
func ParseArchivePage(base *url.URL, data []byte) (*domain.ArchivePage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse archive page: %w", err)
	}

	page := &domain.ArchivePage{}
	doc.Find(archiveEntrySelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Find(archiveLinkSelector).First().Attr("href")
		if !ok {
			return
		}
		dateText := strings.TrimSpace(s.Find(archiveDateSelector).First().Text())
		if dateText == "" {
			return
		}
		page.Entries = append(page.Entries, domain.ArchiveEntry{
			URL:  resolve(base, href),
			Date: NormaliseArchiveDate(dateText),
		})
	})

	if href, ok := doc.Find(archiveNextSelector).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		page.Next = resolve(base, href)
	}
	return page, nil
}

// NormaliseArchiveDate converts M/D/YY to YYYY-MM-DD. Anything else is
// returned unchanged.
func NormaliseArchiveDate(text string) string {
	t, err := time.Parse(archiveDateLayout, strings.TrimSpace(text))
	if err != nil {
		return text
	}
	return t.Format(time.DateOnly)
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
