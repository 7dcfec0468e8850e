package extractor

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Page selectors.
const (
	titleSelector       = "h1.entry-title"
	categoriesSelector  = "div[data-content-field=categories] a.blog-item-category"
	authorSelector      = "div[data-content-field=author] a"
	dateSelector        = "time[data-content-field=published-on]"
	tagsSelector        = "div[data-content-field=tags] a.blog-item-tag"
	contentSelector     = "div.sqs-html-content"
	blockquoteSelector  = "blockquote"
	descriptionMinRunes = 50
	descriptionMaxRunes = 300
)

// promoMarkers disqualify a paragraph from being the description.
var promoMarkers = []string{"order", "buy", "purchase", "copy today"}

// Extractor implements driven.Extractor for the library's pages.
type Extractor struct {
	policy *bluemonday.Policy
}

// New creates an extractor.
func New() *Extractor {
	return &Extractor{policy: bluemonday.StrictPolicy()}
}

// Extract always returns a record. A page without a title yields a record
// with ScrapeSuccess=false and a *domain.ExtractionError.
func (e *Extractor) Extract(url string, page []byte, hint driven.ExtractHint) (*domain.Article, error) {
	article := &domain.Article{
		URL:           url,
		Title:         domain.TitleNotFound,
		Categories:    []string{domain.Uncategorized},
		Author:        domain.UnknownAuthor,
		Tags:          []string{},
		LastModified:  hint.LastModified,
		PublishedDate: hint.ArchiveDate,
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return article, &domain.ExtractionError{URL: url, Reason: "unparseable page: " + err.Error()}
	}

	if title := cleanText(doc.Find(titleSelector).First().Text()); title != "" {
		article.Title = title
	}
	if categories := texts(doc.Find(categoriesSelector)); len(categories) > 0 {
		article.Categories = categories
	}
	if author := cleanText(doc.Find(authorSelector).First().Text()); author != "" {
		article.Author = author
	}
	if tags := texts(doc.Find(tagsSelector)); len(tags) > 0 {
		article.Tags = tags
	}
	// The archive listing date wins over the page's own.
	if article.PublishedDate == "" {
		article.PublishedDate = publishedDate(doc.Find(dateSelector).First())
	}
	article.Description = e.description(doc)

	if article.Title == domain.TitleNotFound {
		return article, &domain.ExtractionError{URL: url, Reason: "no title element"}
	}
	article.ScrapeSuccess = true
	return article, nil
}

func publishedDate(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	if dt, ok := sel.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
		return strings.TrimSpace(dt)
	}
	return cleanText(sel.Text())
}

// description picks the first substantial non-promotional paragraph of the
// body, falling back to the first blockquote.
func (e *Extractor) description(doc *goquery.Document) string {
	var found string
	doc.Find(contentSelector).First().Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := e.plainText(p)
		if utf8.RuneCountInString(text) > descriptionMinRunes && !isPromo(text) {
			found = text
			return false
		}
		return true
	})
	if found == "" {
		if bq := doc.Find(blockquoteSelector).First(); bq.Length() > 0 {
			found = e.plainText(bq)
		}
	}
	return truncate(found, descriptionMaxRunes)
}

// plainText strips markup from the selection's inner HTML.
func (e *Extractor) plainText(sel *goquery.Selection) string {
	inner, err := sel.Html()
	if err != nil {
		return cleanText(sel.Text())
	}
	return cleanText(html.UnescapeString(e.policy.Sanitize(inner)))
}

func isPromo(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range promoMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func texts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := cleanText(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// cleanText collapses runs of whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
