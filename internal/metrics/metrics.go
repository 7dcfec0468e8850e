// Package metrics exports librarian's telemetry to prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
	"github.com/custodia-labs/librarian/internal/logger"
)

// Ensure Collector implements the interface.
var _ driven.Telemetry = (*Collector)(nil)

// Collector records sync and browse activity.
type Collector struct {
	registry *prometheus.Registry

	syncRuns        *prometheus.CounterVec
	syncPages       *prometheus.CounterVec
	syncDuration    *prometheus.HistogramVec
	syncLastRun     *prometheus.GaugeVec
	sessionsActive  prometheus.Gauge
	browseEvents    *prometheus.CounterVec
	sessionsExpired prometheus.Counter
}

// New creates a collector on its own registry, which also carries the Go
// runtime and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		syncRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "librarian_sync_runs_total",
				Help: "Sync runs by mode and final status.",
			},
			[]string{"mode", "status"},
		),
		syncPages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "librarian_sync_pages_total",
				Help: "Article pages processed during sync, by result.",
			},
			[]string{"result"},
		),
		syncDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "librarian_sync_duration_seconds",
				Help:    "Duration of sync runs in seconds.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"mode"},
		),
		syncLastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "librarian_sync_last_run_timestamp_seconds",
				Help: "Start time of the most recent sync run, by mode.",
			},
			[]string{"mode"},
		),
		sessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "librarian_browse_sessions_active",
				Help: "Browsing sessions currently open.",
			},
		),
		browseEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "librarian_browse_events_total",
				Help: "Browse events received, by kind.",
			},
			[]string{"kind"},
		),
		sessionsExpired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "librarian_browse_expired_total",
				Help: "Browsing sessions closed for inactivity.",
			},
		),
	}
	c.registry.MustRegister(
		c.syncRuns,
		c.syncPages,
		c.syncDuration,
		c.syncLastRun,
		c.sessionsActive,
		c.browseEvents,
		c.sessionsExpired,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the registry the collectors are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RunFinished records a completed sync run.
func (c *Collector) RunFinished(s *domain.RunSummary) {
	mode := string(s.Mode)
	c.syncRuns.WithLabelValues(mode, string(s.Status)).Inc()
	c.syncDuration.WithLabelValues(mode).Observe(s.Duration.Seconds())
	c.syncLastRun.WithLabelValues(mode).Set(float64(s.StartedAt.Unix()))
}

// PageProcessed counts one article page.
func (c *Collector) PageProcessed(result string) {
	c.syncPages.WithLabelValues(result).Inc()
}

// SessionsActive sets the number of open sessions.
func (c *Collector) SessionsActive(n int) {
	c.sessionsActive.Set(float64(n))
}

// BrowseEvent counts one event.
func (c *Collector) BrowseEvent(kind domain.EventKind) {
	c.browseEvents.WithLabelValues(string(kind)).Inc()
}

// SessionExpired counts one idle expiry.
func (c *Collector) SessionExpired() {
	c.sessionsExpired.Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Exposing Prometheus metrics on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
