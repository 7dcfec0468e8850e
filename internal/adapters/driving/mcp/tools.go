package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/services"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// SearchInput is the input schema for the search_library tool.
type SearchInput struct {
	Query    string `json:"query,omitempty" jsonschema:"case-insensitive text matched against title, categories, author, tags and description"`
	Category string `json:"category,omitempty" jsonschema:"only articles in this category"`
	Author   string `json:"author,omitempty" jsonschema:"only articles by this exact author"`
	Tag      string `json:"tag,omitempty" jsonschema:"only articles carrying this tag"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 10, max 50)"`
}

// SearchOutput is the output schema for the search_library tool.
type SearchOutput struct {
	Filters string          `json:"filters"`
	Results []ArticleOutput `json:"results"`
	Count   int             `json:"count"`
}

// ArticleOutput is one article as shown to the assistant.
type ArticleOutput struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Author      string   `json:"author"`
	Published   string   `json:"published"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ArticleInput is the input schema for the get_article tool.
type ArticleInput struct {
	URL string `json:"url" jsonschema:"the article URL as returned by search_library"`
}

// FiltersInput is empty; library_filters takes no arguments.
type FiltersInput struct{}

// FiltersOutput lists the values accepted by the search filters.
type FiltersOutput struct {
	Categories []string `json:"categories"`
	Authors    []string `json:"authors"`
	Tags       []string `json:"tags"`
}

// StatsInput is empty; library_stats takes no arguments.
type StatsInput struct{}

// StatsOutput mirrors the catalog statistics.
type StatsOutput struct {
	Articles   int    `json:"articles"`
	Categories int    `json:"categories"`
	Authors    int    `json:"authors"`
	Tags       int    `json:"tags"`
	LastUpdate string `json:"last_update"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_library",
		Description: "Search the digital library catalog by text, category, author or tag. Results are newest first.",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_article",
		Description: "Fetch one catalog article by URL",
	}, s.handleArticle)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "library_filters",
		Description: "List the categories, authors and popular tags usable as search_library filters",
	}, s.handleFilters)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "library_stats",
		Description: "Report article, category, author and tag counts and when the catalog was last updated",
	}, s.handleStats)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	filters := domain.Filters{
		Category:   input.Category,
		Author:     input.Author,
		Tag:        input.Tag,
		SearchTerm: input.Query,
	}.Normalise()

	articles, err := s.ports.Library.Search(ctx, filters, limit)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("searching library: %w", err)
	}

	output := SearchOutput{
		Filters: filters.Describe(),
		Results: make([]ArticleOutput, len(articles)),
		Count:   len(articles),
	}
	for i := range articles {
		output.Results[i] = articleOutput(&articles[i])
	}
	return nil, output, nil
}

func (s *Server) handleArticle(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ArticleInput,
) (*mcp.CallToolResult, ArticleOutput, error) {
	url := strings.TrimSpace(input.URL)
	if url == "" {
		return nil, ArticleOutput{}, errors.New("url is required")
	}
	article, err := s.ports.Library.Article(ctx, url)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ArticleOutput{}, fmt.Errorf("no article at %s: %w", url, err)
	}
	if err != nil {
		return nil, ArticleOutput{}, fmt.Errorf("loading article: %w", err)
	}
	return nil, articleOutput(article), nil
}

func (s *Server) handleFilters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ FiltersInput,
) (*mcp.CallToolResult, FiltersOutput, error) {
	options, err := s.ports.Library.Options(ctx)
	if err != nil {
		return nil, FiltersOutput{}, fmt.Errorf("loading filters: %w", err)
	}
	return nil, FiltersOutput{
		Categories: nonNil(options.Categories),
		Authors:    nonNil(options.Authors),
		Tags:       nonNil(options.Tags),
	}, nil
}

func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Library.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, fmt.Errorf("loading stats: %w", err)
	}
	return nil, statsOutput(stats), nil
}

// articleOutput applies the display fallbacks without the card length limits.
func articleOutput(a *domain.Article) ArticleOutput {
	card := services.ArticleCard(a)
	out := ArticleOutput{
		URL:         a.URL,
		Title:       a.Title,
		Category:    a.PrimaryCategory(),
		Author:      a.Author,
		Published:   card.Date,
		Tags:        a.Tags,
		Description: a.Description,
	}
	if out.Category == "" {
		out.Category = services.DisplayNoCategory
	}
	if out.Author == "" || out.Author == domain.UnknownAuthor {
		out.Author = services.DisplayNoAuthor
	}
	return out
}

func statsOutput(stats domain.Stats) StatsOutput {
	return StatsOutput{
		Articles:   stats.TotalArticles,
		Categories: stats.TotalCategories,
		Authors:    stats.TotalAuthors,
		Tags:       stats.TotalTags,
		LastUpdate: services.FormatLastUpdate(stats.LastUpdate),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
