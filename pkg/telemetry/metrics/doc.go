// Package metrics provides Prometheus metrics for validation runs.
//
// # Metrics
//
//   - runs_total, run_duration_seconds: one observation per engine run
//   - entities: record counts of the last dataset
//   - findings_total: findings by scope ("dataset", "rules"), kind and severity
//   - rule_conflicts_total: conflicts by type and severity
//   - fixes_total: fixes by outcome
//   - cache_hits_total, cache_misses_total: suggestion cache lookups
//   - history_pruned_total: records removed by retention
//
// Every name is prefixed with the configured namespace and subsystem
// (tessera_validation_ by default).
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordRun(result.IsValid, time.Since(start))
//	http.Handle("/metrics", collector.Handler())
//
// Label values come from closed sets (finding kinds, conflict types), so
// cardinality is bounded.
package metrics
