package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

func article(url, title string, mods ...func(*domain.Article)) *domain.Article {
	a := &domain.Article{
		URL:           url,
		Title:         title,
		Categories:    []string{"Poetry"},
		Author:        "Ann Example",
		PublishedDate: "2024-01-01",
		Tags:          []string{"grief"},
		LastModified:  "2024-01-02",
		ScrapedAt:     time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		ScrapeSuccess: true,
	}
	for _, m := range mods {
		m(a)
	}
	return a
}

func TestCatalogStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()

	require.NoError(t, s.Upsert(ctx, article("u1", "First")))
	require.NoError(t, s.Upsert(ctx, article("u1", "Second", func(a *domain.Article) {
		a.Tags = nil
		a.Author = "Bo"
	})))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Title)
	assert.Equal(t, "Bo", got.Author)
	assert.Empty(t, got.Tags)
}

func TestCatalogStore_UpsertInvalid(t *testing.T) {
	s := NewCatalogStore()
	assert.ErrorIs(t, s.Upsert(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.Upsert(context.Background(), &domain.Article{}), domain.ErrInvalidInput)
}

func TestCatalogStore_GetNotFound(t *testing.T) {
	_, err := NewCatalogStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogStore_FailedRecordsHidden(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()
	require.NoError(t, s.Upsert(ctx, article("ok", "Fine")))
	require.NoError(t, s.Upsert(ctx, article("bad", domain.TitleNotFound, func(a *domain.Article) {
		a.ScrapeSuccess = false
		a.Categories = []string{"Hidden"}
		a.Author = "Ghost"
		a.Tags = []string{"secret"}
	})))

	results, err := s.Search(ctx, domain.Filters{}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].URL)

	cats, _ := s.ListCategories(ctx)
	assert.NotContains(t, cats, "Hidden")
	authors, _ := s.ListAuthors(ctx)
	assert.NotContains(t, authors, "Ghost")
	tags, _ := s.ListTopTags(ctx, 10)
	assert.NotContains(t, tags, "secret")

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalArticles)
	assert.Equal(t, 1, stats.TotalTags)

	n, _ := s.Count(ctx)
	assert.Equal(t, 2, n)
}

func TestCatalogStore_SearchFilters(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()
	require.NoError(t, s.Upsert(ctx, article("a", "Morning Meditation", func(a *domain.Article) {
		a.Categories = []string{"Meditations", "Music"}
		a.Author = "Ann"
		a.Tags = []string{"calm"}
	})))
	require.NoError(t, s.Upsert(ctx, article("b", "Grief Circle", func(a *domain.Article) {
		a.Categories = []string{"Podcasts"}
		a.Author = "Bo"
		a.Tags = []string{"grief", "healing"}
		a.Description = "A gentle conversation"
	})))

	tests := []struct {
		name    string
		filters domain.Filters
		want    []string
	}{
		{"no filters", domain.Filters{}, []string{"a", "b"}},
		{"category substring", domain.Filters{Category: "Music"}, []string{"a"}},
		{"category case-insensitive", domain.Filters{Category: "podcast"}, []string{"b"}},
		{"author exact", domain.Filters{Author: "Bo"}, []string{"b"}},
		{"author partial no match", domain.Filters{Author: "B"}, nil},
		{"tag membership", domain.Filters{Tag: "healing"}, []string{"b"}},
		{"tag partial no match", domain.Filters{Tag: "heal"}, nil},
		{"search title", domain.Filters{SearchTerm: "morning"}, []string{"a"}},
		{"search description", domain.Filters{SearchTerm: "GENTLE"}, []string{"b"}},
		{"search tags", domain.Filters{SearchTerm: "calm"}, []string{"a"}},
		{"search within one tag", domain.Filters{SearchTerm: "ief"}, []string{"b"}},
		{"search does not span tags", domain.Filters{SearchTerm: "grief healing"}, nil},
		{"and combined", domain.Filters{Author: "Ann", Tag: "grief"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Search(ctx, tt.filters, 0)
			require.NoError(t, err)
			var urls []string
			for _, r := range results {
				urls = append(urls, r.URL)
			}
			assert.ElementsMatch(t, tt.want, urls)
		})
	}
}

func TestCatalogStore_SearchOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Upsert(ctx, article("old", "Old", func(a *domain.Article) { a.PublishedDate = "2023-01-01" })))
	require.NoError(t, s.Upsert(ctx, article("new1", "New 1", func(a *domain.Article) {
		a.PublishedDate = "2024-06-01"
		a.ScrapedAt = base
	})))
	require.NoError(t, s.Upsert(ctx, article("new2", "New 2", func(a *domain.Article) {
		a.PublishedDate = "2024-06-01"
		a.ScrapedAt = base.Add(time.Hour)
	})))
	require.NoError(t, s.Upsert(ctx, article("nodate", "No Date", func(a *domain.Article) { a.PublishedDate = "" })))

	results, err := s.Search(ctx, domain.Filters{}, 0)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "new2", results[0].URL)
	assert.Equal(t, "new1", results[1].URL)
	assert.Equal(t, "old", results[2].URL)
	assert.Equal(t, "nodate", results[3].URL)

	limited, err := s.Search(ctx, domain.Filters{}, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestCatalogStore_ListsExcludeSentinels(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()
	require.NoError(t, s.Upsert(ctx, article("a", "A", func(a *domain.Article) {
		a.Categories = []string{"Retreats", "Lectures"}
	})))
	require.NoError(t, s.Upsert(ctx, article("b", "B", func(a *domain.Article) {
		a.Categories = []string{domain.Uncategorized}
		a.Author = domain.UnknownAuthor
	})))

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lectures", "Retreats"}, cats)

	authors, err := s.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann Example"}, authors)
}

func TestCatalogStore_ListTopTags(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()
	add := func(tag string, n int) {
		for i := 0; i < n; i++ {
			url := fmt.Sprintf("%s-%d", tag, i)
			require.NoError(t, s.Upsert(ctx, article(url, url, func(a *domain.Article) { a.Tags = []string{tag} })))
		}
	}
	add("music", 1)
	add("healing", 5)
	add("grief", 5)

	tags, err := s.ListTopTags(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"grief", "healing"}, tags)
}

func TestTopTags_TieBreakAndResort(t *testing.T) {
	counts := map[string]int{"zen": 3, "art": 1, "calm": 3, "bell": 3}

	assert.Equal(t, []string{"bell", "calm"}, TopTags(counts, 2))
	assert.Equal(t, []string{"art", "bell", "calm", "zen"}, TopTags(counts, 10))
	assert.Empty(t, TopTags(counts, 0))
}

func TestCatalogStore_Freshness(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()
	require.NoError(t, s.Upsert(ctx, article("a", "A")))

	f, err := s.GetFreshness(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "2024-01-02", f.LastModified)

	missing, err := s.GetFreshness(ctx, "zzz")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := s.Freshness(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCatalogStore_IsHealthy(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()
	assert.False(t, s.IsHealthy(ctx))

	require.NoError(t, s.Upsert(ctx, article("bad", "x", func(a *domain.Article) { a.ScrapeSuccess = false })))
	assert.False(t, s.IsHealthy(ctx))

	require.NoError(t, s.Upsert(ctx, article("ok", "y")))
	assert.True(t, s.IsHealthy(ctx))
}

func TestCatalogStore_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Upsert(ctx, article(fmt.Sprintf("u%d", i%10), fmt.Sprintf("t%d", i)))
			_, _ = s.Search(ctx, domain.Filters{}, 0)
		}(i)
	}
	wg.Wait()

	n, _ := s.Count(ctx)
	assert.Equal(t, 10, n)
}

func TestCatalogStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewCatalogStore()
	require.NoError(t, s.Upsert(ctx, article("a", "A")))

	got, _ := s.Get(ctx, "a")
	got.Tags[0] = "mutated"

	again, _ := s.Get(ctx, "a")
	assert.Equal(t, "grief", again.Tags[0])
}

func TestRunLogStore(t *testing.T) {
	ctx := context.Background()
	s := NewRunLogStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Append(ctx, &domain.RunSummary{Mode: domain.RunModeIncremental, Selected: i}))
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].Selected)
	assert.Equal(t, 1, runs[1].Selected)
	assert.NotEmpty(t, runs[0].ID)

	assert.ErrorIs(t, s.Append(ctx, nil), domain.ErrInvalidInput)
}
