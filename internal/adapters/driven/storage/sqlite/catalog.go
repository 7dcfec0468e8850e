package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
)

// catalogStore implements driven.CatalogStore.
type catalogStore struct {
	store *Store
}

var _ driven.CatalogStore = (*catalogStore)(nil)

const articleColumns = `url, title, categories, author, published_date, tags,
	description, last_modified, scraped_at, scrape_success`

// Upsert inserts or replaces a record by URL.
func (s *catalogStore) Upsert(ctx context.Context, a *domain.Article) error {
	if a == nil || a.URL == "" {
		return domain.ErrInvalidInput
	}
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}
	scrapedAt := a.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO library_content (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			categories = excluded.categories,
			author = excluded.author,
			published_date = excluded.published_date,
			tags = excluded.tags,
			description = excluded.description,
			last_modified = excluded.last_modified,
			scraped_at = excluded.scraped_at,
			scrape_success = excluded.scrape_success
	`,
		a.URL,
		a.Title,
		domain.JoinCategories(a.Categories),
		a.Author,
		a.PublishedDate,
		string(tagsJSON),
		a.Description,
		a.LastModified,
		scrapedAt.UnixNano(),
		boolToInt(a.ScrapeSuccess),
	)
	if err != nil {
		return fmt.Errorf("upserting article: %w", err)
	}
	return nil
}

// Get returns the record for a URL, successful or not.
func (s *catalogStore) Get(ctx context.Context, url string) (*domain.Article, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+articleColumns+" FROM library_content WHERE url = ?", url)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting article: %w", err)
	}
	return a, nil
}

// Search returns successful records matching all filters, newest first.
func (s *catalogStore) Search(ctx context.Context, f domain.Filters, limit int) ([]domain.Article, error) {
	query, args := buildSearchQuery(f, limit)
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	defer rows.Close()

	var out []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// buildSearchQuery assembles the filtered catalog query.
func buildSearchQuery(f domain.Filters, limit int) (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT " + articleColumns + " FROM library_content WHERE scrape_success = 1")

	if f.Category != "" {
		b.WriteString(` AND categories LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.Category))
	}
	if f.Author != "" {
		b.WriteString(" AND author = ?")
		args = append(args, f.Author)
	}
	if f.Tag != "" {
		b.WriteString(" AND EXISTS (SELECT 1 FROM json_each(library_content.tags) WHERE json_each.value = ?)")
		args = append(args, f.Tag)
	}
	if f.SearchTerm != "" {
		b.WriteString(` AND (title LIKE ? ESCAPE '\' OR categories LIKE ? ESCAPE '\'`)
		b.WriteString(` OR author LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'`)
		b.WriteString(` OR EXISTS (SELECT 1 FROM json_each(library_content.tags) WHERE json_each.value LIKE ? ESCAPE '\'))`)
		p := likePattern(f.SearchTerm)
		args = append(args, p, p, p, p, p)
	}

	b.WriteString(" ORDER BY published_date DESC, scraped_at DESC, url ASC")
	if limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	return b.String(), args
}

// likePattern wraps s in wildcards, escaping LIKE metacharacters.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return "%" + r.Replace(s) + "%"
}

// ListCategories returns distinct category labels, alphabetical.
func (s *catalogStore) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT DISTINCT categories FROM library_content
		WHERE scrape_success = 1 AND categories != ?
	`, domain.Uncategorized)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var joined string
		if err := rows.Scan(&joined); err != nil {
			return nil, fmt.Errorf("scanning categories: %w", err)
		}
		for _, c := range domain.SplitCategories(joined) {
			if c != domain.Uncategorized {
				set[c] = struct{}{}
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// ListAuthors returns distinct authors, alphabetical.
func (s *catalogStore) ListAuthors(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT DISTINCT author FROM library_content
		WHERE scrape_success = 1 AND author != ? AND author != ''
		ORDER BY author
	`, domain.UnknownAuthor)
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var author string
		if err := rows.Scan(&author); err != nil {
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		out = append(out, author)
	}
	return out, rows.Err()
}

// ListTopTags ranks tags by frequency, ties alphabetical, then re-sorts
// the selected tags alphabetically.
func (s *catalogStore) ListTopTags(ctx context.Context, maxCount int) ([]string, error) {
	if maxCount <= 0 {
		return []string{}, nil
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT json_each.value AS tag, COUNT(*) AS n
		FROM library_content, json_each(library_content.tags)
		WHERE library_content.scrape_success = 1 AND json_each.value != ''
		GROUP BY tag
		ORDER BY n DESC, tag ASC
		LIMIT ?
	`, maxCount)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var tag string
		var n int
		if err := rows.Scan(&tag, &n); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		out = append(out, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// GetStats returns aggregate counts over successful records.
func (s *catalogStore) GetStats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	var last sql.NullInt64

	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MAX(scraped_at),
			(SELECT COUNT(DISTINCT author) FROM library_content
				WHERE scrape_success = 1 AND author != ? AND author != ''),
			(SELECT COUNT(DISTINCT json_each.value)
				FROM library_content, json_each(library_content.tags)
				WHERE library_content.scrape_success = 1 AND json_each.value != '')
		FROM library_content WHERE scrape_success = 1
	`, domain.UnknownAuthor).Scan(&stats.TotalArticles, &last, &stats.TotalAuthors, &stats.TotalTags)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("reading stats: %w", err)
	}
	if last.Valid {
		stats.LastUpdate = time.Unix(0, last.Int64)
	}

	categories, err := s.ListCategories(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	stats.TotalCategories = len(categories)
	return stats, nil
}

// GetFreshness returns nil when the URL is unknown.
func (s *catalogStore) GetFreshness(ctx context.Context, url string) (*domain.Freshness, error) {
	var f domain.Freshness
	var scraped int64
	err := s.store.db.QueryRowContext(ctx,
		"SELECT last_modified, scraped_at FROM library_content WHERE url = ?", url,
	).Scan(&f.LastModified, &scraped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading freshness: %w", err)
	}
	f.ScrapedAt = time.Unix(0, scraped)
	return &f, nil
}

// Freshness returns the freshness of every stored URL.
func (s *catalogStore) Freshness(ctx context.Context) (map[string]domain.Freshness, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT url, last_modified, scraped_at FROM library_content")
	if err != nil {
		return nil, fmt.Errorf("reading freshness: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Freshness)
	for rows.Next() {
		var url string
		var f domain.Freshness
		var scraped int64
		if err := rows.Scan(&url, &f.LastModified, &scraped); err != nil {
			return nil, fmt.Errorf("scanning freshness: %w", err)
		}
		f.ScrapedAt = time.Unix(0, scraped)
		out[url] = f
	}
	return out, rows.Err()
}

// Count returns the number of stored records, including failed ones.
func (s *catalogStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM library_content").Scan(&n)
	return n, err
}

// IsHealthy reports whether at least one successful record exists.
// Any database error counts as unhealthy.
func (s *catalogStore) IsHealthy(ctx context.Context) bool {
	var one int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT 1 FROM library_content WHERE scrape_success = 1 LIMIT 1").Scan(&one)
	return err == nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(r rowScanner) (*domain.Article, error) {
	var a domain.Article
	var categories, tagsJSON string
	var scraped int64
	var success int
	if err := r.Scan(
		&a.URL, &a.Title, &categories, &a.Author, &a.PublishedDate, &tagsJSON,
		&a.Description, &a.LastModified, &scraped, &success,
	); err != nil {
		return nil, err
	}
	a.Categories = domain.SplitCategories(categories)
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &a.Tags); err != nil {
			a.Tags = nil
		}
	}
	if len(a.Tags) == 0 {
		a.Tags = nil
	}
	a.ScrapedAt = time.Unix(0, scraped)
	a.ScrapeSuccess = success == 1
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
