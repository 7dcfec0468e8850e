package site

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
	"github.com/custodia-labs/librarian/internal/logger"
)

// Ensure Sitemap implements the interface.
var _ driven.ManifestSource = (*Sitemap)(nil)

// SitemapNamespace is the XML namespace of sitemap documents.
const SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// subSitemapConcurrency bounds parallel sub-sitemap fetches. The client's
// rate limiter still spaces the requests.
const subSitemapConcurrency = 4

// Sitemap discovers the site's URLs from its sitemap files.
type Sitemap struct {
	client *Client
	roots  []string
}

// NewSitemap reads {base}/sitemap.xml and {base}/sitemap.index.xml.
func NewSitemap(client *Client, baseURL string) *Sitemap {
	base := strings.TrimRight(baseURL, "/")
	return NewSitemapWithRoots(client, base+"/sitemap.xml", base+"/sitemap.index.xml")
}

// NewSitemapWithRoots reads the given top-level sitemap URLs.
func NewSitemapWithRoots(client *Client, roots ...string) *Sitemap {
	return &Sitemap{client: client, roots: roots}
}

type sitemapDoc struct {
	XMLName  xml.Name
	URLs     []sitemapURL `xml:"url"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemapRef struct {
	Loc string `xml:"loc"`
}

// IsIndex reports whether the document lists other sitemaps.
func (d *sitemapDoc) IsIndex() bool {
	return d.XMLName.Local == "sitemapindex"
}

// ParseSitemap decodes a sitemap or sitemap index document.
func ParseSitemap(data []byte) (entries []domain.ManifestEntry, children []string, err error) {
	var doc sitemapDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse sitemap: %w", err)
	}
	if doc.IsIndex() {
		for _, s := range doc.Sitemaps {
			if loc := strings.TrimSpace(s.Loc); loc != "" {
				children = append(children, loc)
			}
		}
		return nil, children, nil
	}
	for _, u := range doc.URLs {
		loc := strings.TrimSpace(u.Loc)
		if loc == "" {
			continue
		}
		entries = append(entries, domain.ManifestEntry{
			URL:          loc,
			LastModified: strings.TrimSpace(u.LastMod),
		})
	}
	return entries, nil, nil
}

// Discover fetches every root and follows one level of index.
// Entries are deduplicated by URL, first occurrence wins. When some documents
// fail, the entries that were read are returned with an error wrapping
// domain.ErrManifestUnavailable.
func (s *Sitemap) Discover(ctx context.Context) ([]domain.ManifestEntry, error) {
	var (
		all  []domain.ManifestEntry
		errs []error
	)
	for _, root := range s.roots {
		logger.Debug("Checking sitemap: %s", root)
		entries, err := s.readRoot(ctx, root)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			logger.Warn("Sitemap %s: %v", root, err)
			errs = append(errs, err)
		}
		all = append(all, entries...)
	}

	all = dedupe(all)
	logger.Info("Sitemap: %d URLs discovered", len(all))

	if len(errs) > 0 {
		return all, fmt.Errorf("%w: %w", domain.ErrManifestUnavailable, errors.Join(errs...))
	}
	return all, nil
}

func (s *Sitemap) readRoot(ctx context.Context, root string) ([]domain.ManifestEntry, error) {
	data, err := s.client.Fetch(ctx, root)
	if err != nil {
		return nil, err
	}
	entries, children, err := ParseSitemap(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", root, err)
	}
	if len(children) == 0 {
		return entries, nil
	}
	return s.readChildren(ctx, children)
}

// readChildren fetches sub-sitemaps in parallel, keeping index order.
// A nested index is not followed.
func (s *Sitemap) readChildren(ctx context.Context, children []string) ([]domain.ManifestEntry, error) {
	results := make([][]domain.ManifestEntry, len(children))
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(subSitemapConcurrency)
	for i, child := range children {
		g.Go(func() error {
			data, err := s.client.Fetch(gctx, child)
			if err == nil {
				var nested []string
				results[i], nested, err = ParseSitemap(data)
				if err == nil && len(nested) > 0 {
					logger.Debug("Ignoring nested sitemap index %s", child)
				}
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", child, err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []domain.ManifestEntry
	for _, r := range results {
		out = append(out, r...)
	}
	return out, errors.Join(errs...)
}

func dedupe(entries []domain.ManifestEntry) []domain.ManifestEntry {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if _, ok := seen[e.URL]; ok {
			continue
		}
		seen[e.URL] = struct{}{}
		out = append(out, e)
	}
	return out
}
