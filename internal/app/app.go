package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/librarian/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/librarian/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/librarian/internal/config"
	"github.com/custodia-labs/librarian/internal/connectors/site"
	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
	"github.com/custodia-labs/librarian/internal/core/services"
	"github.com/custodia-labs/librarian/internal/extractor"
	"github.com/custodia-labs/librarian/internal/logger"
	"github.com/custodia-labs/librarian/internal/metrics"
)

// Options select how the app is assembled.
type Options struct {
	// Memory keeps the catalog in memory instead of SQLite.
	Memory bool
}

// App holds the shared components of a running librarian.
type App struct {
	Config  *config.Config
	Metrics *metrics.Collector

	Catalog   *services.Catalog
	Sync      *services.SyncReconciler
	Admin     *services.AdminService
	Browse    *services.BrowseService
	Scheduler *services.Scheduler

	store *sqlite.Store
}

// New builds every component from cfg.
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	a := &App{Config: cfg, Metrics: metrics.New()}

	var catalogStore driven.CatalogStore
	var runLog driven.RunLogStore
	if opts.Memory {
		logger.Debug("Using in-memory catalog")
		catalogStore = memory.NewCatalogStore()
		runLog = memory.NewRunLogStore()
	} else {
		store, err := sqlite.NewStore(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("opening catalog: %w", err)
		}
		logger.Debug("Catalog database: %s", store.Path())
		a.store = store
		catalogStore = store.CatalogStore()
		runLog = store.RunLogStore()
	}
	if n, err := catalogStore.Count(context.Background()); err != nil {
		logger.Warn("Counting catalog records: %v", err)
	} else {
		logger.Debug("Catalog holds %d records", n)
	}

	a.Catalog = services.NewCatalog(catalogStore, services.CatalogOptions{
		TopTags:  cfg.Browse.TopTags,
		MaxItems: cfg.MaxOptionValues(),
	})

	client := site.NewClient(site.Options{
		UserAgent:    cfg.Site.UserAgent,
		Timeout:      cfg.Sync.HTTPTimeout.Duration,
		RequestDelay: cfg.Sync.RequestDelay.Duration,
		MaxAttempts:  cfg.Sync.MaxAttempts,
		RetryDelay:   cfg.Sync.RetryDelay.Duration,
	})
	a.Sync = services.NewSyncReconciler(
		a.Catalog,
		site.NewSitemap(client, cfg.Site.BaseURL),
		site.NewArchive(client, cfg.Site.BaseURL, cfg.Site.ContentPath),
		client,
		extractor.New(),
		runLog,
		a.Metrics,
		services.SyncOptions{
			ContentPath:     cfg.Site.ContentPath,
			ArchiveMaxPages: cfg.Sync.ArchiveMaxPages,
			UpdateBudget:    cfg.Sync.UpdateBudget.Duration,
			RebuildBudget:   cfg.Sync.RebuildBudget.Duration,
		},
	)

	a.Admin = services.NewAdminService(a.Sync, a.Catalog, runLog, services.NewOperationLock(), cfg.Admin.Roles)
	a.Browse = services.NewBrowseService(a.Catalog, a.Metrics, services.BrowseOptions{
		PageSize:      cfg.Browse.PageSize,
		ResultLimit:   cfg.Browse.ResultLimit,
		IdleTimeout:   cfg.Browse.IdleTimeout.Duration,
		SweepInterval: cfg.Browse.SweepInterval.Duration,
	})
	a.Scheduler = services.NewScheduler(domain.SchedulerConfig{
		SyncInterval: cfg.Sync.ScheduleInterval.Duration,
	}, a.Admin)

	return a, nil
}

// Reload applies the settings that may change while running.
func (a *App) Reload(cfg *config.Config) {
	a.Admin.SetAdminRoles(cfg.Admin.Roles)
	logger.Info("Configuration reloaded: %d admin roles", len(cfg.Admin.Roles))
}

// Close releases the catalog database.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
