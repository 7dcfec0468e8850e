package mcp

import (
	"context"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	articles []domain.Article
	options  domain.OptionSet
	stats    domain.Stats
	err      error

	lastFilters domain.Filters
	lastLimit   int
}

func (m *mockLibraryService) Search(_ context.Context, filters domain.Filters, limit int) ([]domain.Article, error) {
	m.lastFilters = filters
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.articles) {
		return m.articles[:limit], nil
	}
	return m.articles, nil
}

func (m *mockLibraryService) Article(_ context.Context, url string) (*domain.Article, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.articles {
		if m.articles[i].URL == url {
			return &m.articles[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockLibraryService) Options(_ context.Context) (domain.OptionSet, error) {
	return m.options, m.err
}

func (m *mockLibraryService) Stats(_ context.Context) (domain.Stats, error) {
	return m.stats, m.err
}

func (m *mockLibraryService) Healthy(_ context.Context) bool {
	return m.err == nil
}
