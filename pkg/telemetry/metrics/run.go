package metrics

import (
	"time"

	"mercator-hq/tessera/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics tracks validation runs.
//
// Metrics:
//   - tessera_validation_runs_total: runs by result ("valid", "invalid")
//   - tessera_validation_run_duration_seconds: run wall time
//   - tessera_validation_entities: records per entity in the last run
//   - tessera_validation_fixes_total: fixes by outcome
//   - tessera_validation_history_pruned_total: history records pruned
type RunMetrics struct {
	runsTotal   *prometheus.CounterVec
	duration    prometheus.Histogram
	entities    *prometheus.GaugeVec
	fixesTotal  *prometheus.CounterVec
	prunedTotal prometheus.Counter
}

// NewRunMetrics creates and registers run metrics.
func NewRunMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of validation runs by result",
			},
			[]string{"result"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Validation run duration in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		entities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "entities",
				Help:      "Number of records per entity in the last validated dataset",
			},
			[]string{"entity"},
		),

		fixesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fixes_total",
				Help:      "Total number of fixes by outcome",
			},
			[]string{"outcome"},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "history_pruned_total",
				Help:      "Total number of history records removed by retention",
			},
		),
	}

	registry.MustRegister(rm.runsTotal, rm.duration, rm.entities, rm.fixesTotal, rm.prunedTotal)
	return rm
}

// RecordRun records one run.
func (rm *RunMetrics) RecordRun(valid bool, duration time.Duration) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	rm.runsTotal.WithLabelValues(result).Inc()
	rm.duration.Observe(duration.Seconds())
}

// FindingMetrics tracks findings and rule conflicts.
//
// Metrics:
//   - tessera_validation_findings_total: findings by scope, kind and severity
//   - tessera_validation_rule_conflicts_total: conflicts by type and severity
type FindingMetrics struct {
	findingsTotal  *prometheus.CounterVec
	conflictsTotal *prometheus.CounterVec
}

// NewFindingMetrics creates and registers finding metrics.
func NewFindingMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *FindingMetrics {
	fm := &FindingMetrics{
		findingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "findings_total",
				Help:      "Total number of findings by scope, kind and severity",
			},
			[]string{"scope", "kind", "severity"},
		),

		conflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_conflicts_total",
				Help:      "Total number of rule conflicts by type and severity",
			},
			[]string{"type", "severity"},
		),
	}

	registry.MustRegister(fm.findingsTotal, fm.conflictsTotal)
	return fm
}
