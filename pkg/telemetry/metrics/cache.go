package metrics

import (
	"mercator-hq/tessera/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks the suggestion cache.
//
// Metrics:
//   - tessera_validation_cache_hits_total: hits by cache name
//   - tessera_validation_cache_misses_total: misses by cache name
//
// Hit rate is a PromQL concern:
//
//	rate(tessera_validation_cache_hits_total{cache="suggest"}[5m]) /
//	(rate(tessera_validation_cache_hits_total{cache="suggest"}[5m]) +
//	 rate(tessera_validation_cache_misses_total{cache="suggest"}[5m]))
type CacheMetrics struct {
	hitsTotal   *prometheus.CounterVec
	missesTotal *prometheus.CounterVec
}

// NewCacheMetrics creates and registers cache metrics.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),

		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
	}

	registry.MustRegister(cm.hitsTotal, cm.missesTotal)
	return cm
}

// RecordHit records a cache hit.
func (cm *CacheMetrics) RecordHit(cacheName string) {
	cm.hitsTotal.WithLabelValues(cacheName).Inc()
}

// RecordMiss records a cache miss.
func (cm *CacheMetrics) RecordMiss(cacheName string) {
	cm.missesTotal.WithLabelValues(cacheName).Inc()
}
