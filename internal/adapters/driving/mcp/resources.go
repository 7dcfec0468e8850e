package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

const (
	uriScheme = "library://"

	// categoryLimit caps the articles listed by a category resource.
	categoryLimit = 100
)

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Catalog statistics",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "filters",
		Name:        "filters",
		Description: "Categories, authors and popular tags",
		MIMEType:    "application/json",
	}, s.handleFiltersResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "categories/{category}",
		Name:        "category-articles",
		Description: "Newest articles in a category",
		MIMEType:    "application/json",
	}, s.handleCategoryResource)
}

func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Library.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stats: %w", err)
	}
	return jsonResource(req.Params.URI, statsOutput(stats))
}

func (s *Server) handleFiltersResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	_, out, err := s.handleFilters(ctx, nil, FiltersInput{})
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, out)
}

func (s *Server) handleCategoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	category := extractCategory(req.Params.URI)
	if category == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	articles, err := s.ports.Library.Search(ctx, domain.Filters{Category: category}, categoryLimit)
	if err != nil {
		return nil, fmt.Errorf("listing category: %w", err)
	}
	if len(articles) == 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	out := make([]ArticleOutput, len(articles))
	for i := range articles {
		out[i] = articleOutput(&articles[i])
	}
	return jsonResource(req.Params.URI, out)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCategory returns the unescaped category from library://categories/{category}.
func extractCategory(uri string) string {
	const prefix = uriScheme + "categories/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	raw := strings.TrimPrefix(uri, prefix)
	category, err := url.PathUnescape(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(category)
}
