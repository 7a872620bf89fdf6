// Package feeds periodically pulls the provider offering and roster feeds and
// drives catalog rebuilds.
package feeds

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/catalog"
	"github.com/motohub/motohub-cart-service/internal/clients"
	"github.com/motohub/motohub-cart-service/internal/metrics"
	"github.com/motohub/motohub-cart-service/internal/models"
)

// Reconciler is notified with the active package list after every rebuild.
type Reconciler interface {
	ReconcileAll(ctx context.Context, packages []models.ServicePackage)
}

// Refresher refreshes the feeds on a fixed interval. It is a cancellable
// start/stop handle: Stop is the session-teardown cancellation point.
// A failed fetch keeps the last-good data for that feed and retries on the
// next tick, with no user-facing error.
type Refresher struct {
	client     clients.FeedClient
	snapshot   *catalog.Snapshot
	reconciler Reconciler
	cache      *SnapshotCache
	interval   time.Duration
	logger     *zap.Logger

	mu            sync.Mutex
	lastOfferings []models.ProviderOffering
	lastRoster    []models.ServiceProvider

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefresher creates the feed refresher. cache may be nil.
func NewRefresher(client clients.FeedClient, snapshot *catalog.Snapshot, reconciler Reconciler, cache *SnapshotCache, interval time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		client:     client,
		snapshot:   snapshot,
		reconciler: reconciler,
		cache:      cache,
		interval:   interval,
		logger:     logger.Named("feed-refresher"),
	}
}

// Start primes the catalog (from the last-good cache when available, then an
// immediate refresh) and begins the periodic loop.
func (r *Refresher) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})

	if r.cache != nil {
		if offerings, roster, err := r.cache.Load(ctx); err == nil && offerings != nil {
			r.mu.Lock()
			r.lastOfferings, r.lastRoster = offerings, roster
			r.rebuild(ctx)
			r.mu.Unlock()
			r.logger.Info("Catalog primed from last-good feed cache",
				zap.Int("offerings", len(offerings)),
				zap.Int("providers", len(roster)))
		}
	}

	go r.run(ctx)
}

// Stop cancels the loop and waits for it to exit.
func (r *Refresher) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

func (r *Refresher) run(ctx context.Context) {
	defer close(r.done)

	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Feed refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fetchedAny := false

	offerings, err := r.client.FetchOfferings(ctx)
	if err != nil {
		metrics.FeedRefreshTotal.WithLabelValues("offerings", "error").Inc()
		r.logger.Warn("Offerings refresh failed, keeping last-good", zap.Error(err))
	} else {
		metrics.FeedRefreshTotal.WithLabelValues("offerings", "ok").Inc()
		r.lastOfferings = offerings
		fetchedAny = true
	}

	roster, err := r.client.FetchRoster(ctx)
	if err != nil {
		metrics.FeedRefreshTotal.WithLabelValues("roster", "error").Inc()
		r.logger.Warn("Roster refresh failed, keeping last-good", zap.Error(err))
	} else {
		metrics.FeedRefreshTotal.WithLabelValues("roster", "ok").Inc()
		r.lastRoster = roster
		fetchedAny = true
	}

	if !fetchedAny {
		return
	}

	r.rebuild(ctx)

	if r.cache != nil {
		if err := r.cache.Store(ctx, r.lastOfferings, r.lastRoster); err != nil {
			r.logger.Warn("Failed to cache last-good feeds", zap.Error(err))
		}
	}
}

// rebuild swaps the new catalog in and reconciles every live cart. Callers
// hold r.mu.
func (r *Refresher) rebuild(ctx context.Context) {
	packages := r.snapshot.Rebuild(r.lastOfferings, r.lastRoster)
	metrics.CatalogPackages.Set(float64(len(packages)))
	if r.reconciler != nil {
		r.reconciler.ReconcileAll(ctx, packages)
	}
}
