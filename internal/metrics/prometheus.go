// Package metrics exposes Prometheus collectors for the shopping pipeline
// and keeps a queryable history of sync runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ShoppingMetrics contains Prometheus metrics for store access and syncs.
type ShoppingMetrics struct {
	storeFallbacksTotal *prometheus.CounterVec
	storeFailuresTotal  *prometheus.CounterVec
	storeMirrorFailures *prometheus.CounterVec
	syncDuration        prometheus.Histogram
	syncItemsTotal      *prometheus.CounterVec
}

// NewShoppingMetrics creates the metrics and registers them with registry.
func NewShoppingMetrics(registry prometheus.Registerer) (*ShoppingMetrics, error) {
	m := &ShoppingMetrics{
		storeFallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "family_planner_store_fallbacks_total",
				Help: "Store operations served by the secondary store after a primary failure",
			},
			[]string{"op"},
		),
		storeFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "family_planner_store_failures_total",
				Help: "Store operations that failed on every configured store",
			},
			[]string{"op"},
		),
		storeMirrorFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "family_planner_store_mirror_failures_total",
				Help: "Primary writes that could not be copied to the secondary store",
			},
			[]string{"op"},
		),
		syncDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "family_planner_sync_duration_seconds",
				Help: "Time taken to re-derive a shopping list",
				// 5ms to ~10s
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
		syncItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "family_planner_sync_items_total",
				Help: "Shopping items touched by syncs",
			},
			[]string{"kind"}, // aggregated, upserted, unchanged, deleted, delete_failed
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements the Collector interface
func (m *ShoppingMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.storeFallbacksTotal.Describe(ch)
	m.storeFailuresTotal.Describe(ch)
	m.storeMirrorFailures.Describe(ch)
	m.syncDuration.Describe(ch)
	m.syncItemsTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *ShoppingMetrics) Collect(ch chan<- prometheus.Metric) {
	m.storeFallbacksTotal.Collect(ch)
	m.storeFailuresTotal.Collect(ch)
	m.storeMirrorFailures.Collect(ch)
	m.syncDuration.Collect(ch)
	m.syncItemsTotal.Collect(ch)
}

// StoreFallback counts an operation retried on the secondary store.
func (m *ShoppingMetrics) StoreFallback(op string) {
	m.storeFallbacksTotal.WithLabelValues(op).Inc()
}

// StoreFailure counts an operation that no store could serve.
func (m *ShoppingMetrics) StoreFailure(op string) {
	m.storeFailuresTotal.WithLabelValues(op).Inc()
}

// StoreMirrorFailure counts a primary write the secondary store missed.
func (m *ShoppingMetrics) StoreMirrorFailure(op string) {
	m.storeMirrorFailures.WithLabelValues(op).Inc()
}
