package metrics

import (
	"time"

	"mercator-hq/tessera/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus metrics for validation runs. All Record
// methods are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	runMetrics     *RunMetrics
	findingMetrics *FindingMetrics
	cacheMetrics   *CacheMetrics
}

// NewCollector creates a collector and registers its metrics with registry.
// A nil registry gets a fresh one.
//
//	cfg := &config.MetricsConfig{Enabled: true}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:         cfg,
		registry:       registry,
		runMetrics:     NewRunMetrics(cfg, registry),
		findingMetrics: NewFindingMetrics(cfg, registry),
		cacheMetrics:   NewCacheMetrics(cfg, registry),
	}
}

// RecordRun records a completed validation run.
//
// Parameters:
//   - valid: whether the dataset (and rules, when checked) passed
//   - duration: wall time of the run
func (c *Collector) RecordRun(valid bool, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.runMetrics.RecordRun(valid, duration)
}

// SetEntityCount records how many records of an entity the last run saw.
func (c *Collector) SetEntityCount(entity string, n int) {
	if !c.config.Enabled {
		return
	}
	c.runMetrics.entities.WithLabelValues(entity).Set(float64(n))
}

// RecordFixes counts fixes by outcome ("suggested", "applied", "failed").
func (c *Collector) RecordFixes(outcome string, n int) {
	if !c.config.Enabled || n <= 0 {
		return
	}
	c.runMetrics.fixesTotal.WithLabelValues(outcome).Add(float64(n))
}

// RecordHistoryPruned counts history records removed by retention.
func (c *Collector) RecordHistoryPruned(n int64) {
	if !c.config.Enabled || n <= 0 {
		return
	}
	c.runMetrics.prunedTotal.Add(float64(n))
}

// RecordFinding counts one finding.
//
// Parameters:
//   - scope: "dataset" or "rules"
//   - kind: the finding kind, e.g. "duplicate_id"
//   - severity: "error", "warning" or "info"
func (c *Collector) RecordFinding(scope, kind, severity string) {
	if !c.config.Enabled {
		return
	}
	c.findingMetrics.findingsTotal.WithLabelValues(scope, kind, severity).Inc()
}

// RecordConflict counts one rule conflict.
func (c *Collector) RecordConflict(conflictType, severity string) {
	if !c.config.Enabled {
		return
	}
	c.findingMetrics.conflictsTotal.WithLabelValues(conflictType, severity).Inc()
}

// RecordCacheHit records a cache hit for the named cache.
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.config.Enabled {
		return
	}
	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a cache miss for the named cache.
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.config.Enabled {
		return
	}
	c.cacheMetrics.RecordMiss(cacheName)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
