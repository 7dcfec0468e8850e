package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
	"github.com/custodia-labs/librarian/internal/core/ports/driving"
	"github.com/custodia-labs/librarian/internal/logger"
)

// Ensure SyncReconciler implements the interface.
var _ driving.SyncService = (*SyncReconciler)(nil)

// sampleSize is how many new and changed URLs a check run reports.
const sampleSize = 5

// SyncOptions configures a SyncReconciler.
type SyncOptions struct {
	// ContentPath is the site path articles live under.
	ContentPath string

	// ArchiveMaxPages bounds the archive listing walk.
	ArchiveMaxPages int

	// UpdateBudget and RebuildBudget bound incremental and full runs. Zero is unbounded.
	UpdateBudget  time.Duration
	RebuildBudget time.Duration
}

// DefaultSyncOptions returns the production defaults.
func DefaultSyncOptions() SyncOptions {
	return SyncOptions{
		ContentPath:     DefaultContentPath,
		ArchiveMaxPages: 50,
		UpdateBudget:    5 * time.Minute,
		RebuildBudget:   10 * time.Minute,
	}
}

// SyncReconciler refreshes the catalog from the remote site.
// It is not safe to run concurrently with itself; AdminService serialises runs.
type SyncReconciler struct {
	catalog    *Catalog
	manifest   driven.ManifestSource
	archive    driven.ArchiveSource
	fetcher    driven.PageFetcher
	extractor  driven.Extractor
	runLog     driven.RunLogStore
	telemetry  driven.Telemetry
	classifier Classifier
	opts       SyncOptions
	now        func() time.Time
}

// NewSyncReconciler creates a reconciler.
// The archive source and run log are optional.
func NewSyncReconciler(
	catalog *Catalog,
	manifest driven.ManifestSource,
	archive driven.ArchiveSource,
	fetcher driven.PageFetcher,
	extractor driven.Extractor,
	runLog driven.RunLogStore,
	telemetry driven.Telemetry,
	opts SyncOptions,
) *SyncReconciler {
	if opts.ArchiveMaxPages <= 0 {
		opts.ArchiveMaxPages = 50
	}
	return &SyncReconciler{
		catalog:    catalog,
		manifest:   manifest,
		archive:    archive,
		fetcher:    fetcher,
		extractor:  extractor,
		runLog:     runLog,
		telemetry:  telemetryOrNoop(telemetry),
		classifier: NewClassifier(opts.ContentPath),
		opts:       opts,
		now:        time.Now,
	}
}

// Run executes one sync. The summary is returned even when the run fails.
func (s *SyncReconciler) Run(ctx context.Context, mode domain.RunMode) (*domain.RunSummary, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: run mode %q", domain.ErrInvalidInput, mode)
	}

	summary := &domain.RunSummary{
		Mode:      mode,
		StartedAt: s.now(),
	}

	runCtx := ctx
	budget := s.budget(mode)
	if budget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	logger.Section("Sync Run")
	logger.Info("Starting %s sync", mode)

	err := s.run(runCtx, mode, summary)
	if err != nil && ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s", domain.ErrSyncTimeout, budget)
	}

	summary.Duration = s.now().Sub(summary.StartedAt)
	switch {
	case err == nil:
		summary.Status = domain.RunStatusSuccess
	case errors.Is(err, domain.ErrSyncTimeout):
		summary.Status = domain.RunStatusTimeout
		summary.Error = err.Error()
	default:
		summary.Status = domain.RunStatusFailed
		summary.Error = err.Error()
	}

	if summary.Fetched > 0 {
		s.catalog.Invalidate()
	}

	if s.runLog != nil && mode != domain.RunModeCheck {
		// The caller's context may already be done; the log entry must still be written.
		if logErr := s.runLog.Append(context.WithoutCancel(ctx), summary); logErr != nil {
			logger.Warn("Failed to append run log: %v", logErr)
		}
	}
	s.telemetry.RunFinished(summary)

	logger.Info("Sync %s finished: status=%s selected=%d succeeded=%d failed=%d duration=%s",
		mode, summary.Status, summary.Selected, summary.Succeeded, summary.Failed,
		summary.Duration.Round(time.Millisecond))

	return summary, err
}

func (s *SyncReconciler) budget(mode domain.RunMode) time.Duration {
	if mode == domain.RunModeFull {
		return s.opts.RebuildBudget
	}
	return s.opts.UpdateBudget
}

func (s *SyncReconciler) run(ctx context.Context, mode domain.RunMode, summary *domain.RunSummary) error {
	// 1. Discover the manifest. A partial manifest is not fatal.
	entries, err := s.manifest.Discover(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("Manifest incomplete, continuing with %d entries: %v", len(entries), err)
	}
	summary.URLsFound = len(entries)

	// 2. Classify.
	articles := s.classifier.FilterArticles(entries)
	summary.ArticlesFound = len(articles)
	logger.Debug("Manifest: %d URLs, %d articles", summary.URLsFound, summary.ArticlesFound)

	// 3. Reconcile. A full run assumes an empty store.
	var known map[string]domain.Freshness
	if mode != domain.RunModeFull {
		known, err = s.catalog.Store().Freshness(ctx)
		if err != nil {
			return fmt.Errorf("load freshness: %w", err)
		}
	}
	result := Reconcile(articles, known)
	toFetch := result.ToFetch()

	summary.Selected = len(toFetch)
	summary.NewCount = len(result.New)
	summary.ChangedCount = len(result.Changed)
	summary.NewURLs = sampleURLs(result.New, sampleSize)
	summary.ChangedURLs = sampleURLs(result.Changed, sampleSize)
	logger.Info("Reconciled: %d new, %d changed, %d up to date",
		len(result.New), len(result.Changed), result.Skipped)

	if mode == domain.RunModeCheck || len(toFetch) == 0 {
		return nil
	}

	// 4. Archive dates. Only worth the requests when something will be fetched.
	dates := s.ArchiveDates(ctx)
	summary.DatesExtracted = len(dates)

	// 5. Fetch. A failing page never stops the batch.
	for i, entry := range toFetch {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Debug("[%d/%d] %s", i+1, len(toFetch), entry.URL)
		if err := s.fetchOne(ctx, entry, dates[entry.URL], summary); err != nil {
			return err
		}
	}
	return nil
}

// fetchOne processes a single article. It only returns an error when the run must stop.
func (s *SyncReconciler) fetchOne(
	ctx context.Context,
	entry domain.ManifestEntry,
	archiveDate string,
	summary *domain.RunSummary,
) error {
	page, err := s.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("Fetch failed for %s: %v", entry.URL, err)
		summary.Fetched++
		summary.Failed++
		s.telemetry.PageProcessed(PageFetchFailed)
		// Empty LastModified makes the next incremental run select it again.
		failed := failedArticle(entry.URL, s.now())
		if storeErr := s.catalog.Upsert(ctx, failed); storeErr != nil {
			logger.Warn("Failed to record fetch failure for %s: %v", entry.URL, storeErr)
		}
		return nil
	}

	article, extractErr := s.extractor.Extract(entry.URL, page, driven.ExtractHint{
		LastModified: entry.LastModified,
		ArchiveDate:  archiveDate,
	})
	summary.Fetched++
	if article == nil {
		article = failedArticle(entry.URL, s.now())
		article.LastModified = entry.LastModified
	}
	article.ScrapedAt = s.now()

	if err := s.catalog.Upsert(ctx, article); err != nil {
		logger.Warn("Failed to store %s: %v", entry.URL, err)
		summary.Failed++
		s.telemetry.PageProcessed(PageStoreFailed)
		return nil
	}

	if extractErr != nil || !article.ScrapeSuccess {
		logger.Warn("Extraction failed for %s: %v", entry.URL, extractErr)
		summary.Failed++
		s.telemetry.PageProcessed(PageExtractionFailed)
		return nil
	}
	summary.Succeeded++
	s.telemetry.PageProcessed(PageOK)
	return nil
}

// ArchiveDates walks the archive listing and maps article URL to listing date.
// An error on a page stops the walk and keeps what was collected.
func (s *SyncReconciler) ArchiveDates(ctx context.Context) map[string]string {
	dates := make(map[string]string)
	if s.archive == nil {
		return dates
	}

	visited := make(map[string]struct{})
	next := s.archive.FirstPage()
	for pages := 0; next != "" && pages < s.opts.ArchiveMaxPages; pages++ {
		if _, seen := visited[next]; seen {
			break
		}
		visited[next] = struct{}{}

		page, err := s.archive.ListPage(ctx, next)
		if err != nil {
			logger.Warn("Archive listing stopped at %s: %v", next, err)
			break
		}
		for _, e := range page.Entries {
			if e.URL != "" && e.Date != "" {
				dates[e.URL] = e.Date
			}
		}
		next = page.Next
	}
	logger.Debug("Archive dates collected: %d", len(dates))
	return dates
}

func failedArticle(url string, now time.Time) *domain.Article {
	return &domain.Article{
		URL:           url,
		Title:         domain.TitleNotFound,
		Categories:    []string{domain.Uncategorized},
		Author:        domain.UnknownAuthor,
		ScrapedAt:     now,
		ScrapeSuccess: false,
	}
}

func sampleURLs(entries []domain.ManifestEntry, n int) []string {
	if len(entries) < n {
		n = len(entries)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = entries[i].URL
	}
	return out
}
