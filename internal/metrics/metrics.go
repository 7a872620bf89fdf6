// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedRefreshTotal counts periodic feed refresh outcomes per feed.
	FeedRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_feed_refresh_total",
		Help: "Feed refresh attempts by feed and outcome.",
	}, []string{"feed", "outcome"})

	// CartMutationsTotal counts cart mutations by operation.
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})

	// SubmissionsTotal counts submission attempts by outcome.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_submissions_total",
		Help: "Service request submissions by outcome.",
	}, []string{"outcome"})

	// CatalogPackages tracks the size of the active catalog.
	CatalogPackages = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cart_catalog_packages",
		Help: "Number of packages in the active catalog.",
	})
)
