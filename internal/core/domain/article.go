package domain

import (
	"strings"
	"time"
)

// Sentinel values stored when a page lacks a field.
// They record data completeness; display fallbacks are chosen by the presentation layer.
const (
	// TitleNotFound marks a record whose page had no title element.
	TitleNotFound = "No title found"

	// Uncategorized marks a record with no category labels.
	Uncategorized = "Uncategorized"

	// UnknownAuthor marks a record with no author link.
	UnknownAuthor = "Unknown"
)

// categorySeparator joins categories in storage.
const categorySeparator = ", "

// Article is one catalog entry scraped from the library site.
// URL is the natural key; a re-fetch replaces the record in place.
type Article struct {
	// URL uniquely identifies the article.
	URL string

	// Title is the display title, or TitleNotFound.
	Title string

	// Categories is an ordered set of labels. The first is the primary category.
	Categories []string

	// Author is the single display author, or UnknownAuthor.
	Author string

	// PublishedDate is YYYY-MM-DD when parseable, otherwise the raw page value.
	// Empty when no date was found.
	PublishedDate string

	// Tags is a set of free-text labels. May be empty.
	Tags []string

	// Description is a plain-text excerpt. May be empty.
	Description string

	// LastModified is the manifest stamp used for change detection only.
	LastModified string

	// ScrapedAt is when the record was written.
	ScrapedAt time.Time

	// ScrapeSuccess is false when the page failed validation.
	// Such records are kept but never shown to users.
	ScrapeSuccess bool
}

// PrimaryCategory returns the first real category label, or "" when uncategorised.
func (a *Article) PrimaryCategory() string {
	for _, c := range a.Categories {
		if c != "" && c != Uncategorized {
			return c
		}
	}
	return ""
}

// JoinCategories encodes a category set for storage.
func JoinCategories(categories []string) string {
	if len(categories) == 0 {
		return Uncategorized
	}
	return strings.Join(categories, categorySeparator)
}

// SplitCategories decodes a stored category string.
func SplitCategories(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Freshness is what the store remembers about a URL for change detection.
type Freshness struct {
	LastModified string
	ScrapedAt    time.Time
}

// Stats holds aggregate counts over successful records.
type Stats struct {
	TotalArticles   int
	TotalCategories int
	TotalAuthors    int
	TotalTags       int

	// LastUpdate is the newest ScrapedAt. Zero when the catalog is empty.
	LastUpdate time.Time
}

// OptionSet is the dropdown content derived from the catalog.
type OptionSet struct {
	// Categories are all distinct categories, alphabetical.
	Categories []string

	// Authors are all distinct authors, alphabetical, excluding UnknownAuthor.
	Authors []string

	// Tags are the most frequent tags, re-sorted alphabetically.
	Tags []string
}
