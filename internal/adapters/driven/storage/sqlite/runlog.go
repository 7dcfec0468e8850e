package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
)

// runLogStore implements driven.RunLogStore.
type runLogStore struct {
	store *Store
}

var _ driven.RunLogStore = (*runLogStore)(nil)

// Append records a finished run, assigning an ID when empty.
func (s *runLogStore) Append(ctx context.Context, r *domain.RunSummary) error {
	if r == nil {
		return domain.ErrInvalidInput
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (
			id, mode, status, started_at, duration_ms, urls_found, articles_found,
			selected, fetched, succeeded, failed, dates_extracted, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, string(r.Mode), string(r.Status), r.StartedAt.UnixNano(), r.Duration.Milliseconds(),
		r.URLsFound, r.ArticlesFound, r.Selected, r.Fetched, r.Succeeded, r.Failed,
		r.DatesExtracted, r.Error,
	)
	if err != nil {
		return fmt.Errorf("appending run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, most recent first.
func (s *runLogStore) Recent(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, mode, status, started_at, duration_ms, urls_found, articles_found,
			selected, fetched, succeeded, failed, dates_extracted, error
		FROM sync_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []domain.RunSummary
	for rows.Next() {
		var r domain.RunSummary
		var mode, status string
		var started, durationMS int64
		if err := rows.Scan(
			&r.ID, &mode, &status, &started, &durationMS, &r.URLsFound, &r.ArticlesFound,
			&r.Selected, &r.Fetched, &r.Succeeded, &r.Failed, &r.DatesExtracted, &r.Error,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Mode = domain.RunMode(mode)
		r.Status = domain.RunStatus(status)
		r.StartedAt = time.Unix(0, started)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}
