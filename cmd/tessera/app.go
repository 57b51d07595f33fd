package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mercator-hq/tessera/pkg/config"
	"mercator-hq/tessera/pkg/engine"
	"mercator-hq/tessera/pkg/history"
	"mercator-hq/tessera/pkg/rules"
	"mercator-hq/tessera/pkg/suggest"
	"mercator-hq/tessera/pkg/telemetry/metrics"
	"mercator-hq/tessera/pkg/validator"
)

// newValidator builds the dataset validator from the validation section.
func newValidator(cfg *config.Config) *validator.Validator {
	v := cfg.Validation
	return validator.New(validator.WithLimits(validator.Limits{
		PriorityMin:       v.PriorityMin,
		PriorityMax:       v.PriorityMax,
		QualificationMin:  v.QualificationMin,
		QualificationMax:  v.QualificationMax,
		DurationWarnAbove: v.DurationWarnThreshold,
		MaxLoadWarnAbove:  v.MaxLoadWarnThreshold,
		PhaseMin:          v.PhaseMin,
		PhaseMax:          v.PhaseMax,
	}))
}

func newRuleValidator(cfg *config.Config) *rules.Validator {
	return rules.NewValidator(rules.WithPhaseBounds(cfg.Rules.PhaseMin, cfg.Rules.PhaseMax))
}

// newCollector creates the metrics collector. Process and Go runtime
// collectors are added so the watch endpoint is useful on its own.
func newCollector(cfg *config.Config) *metrics.Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.NewCollector(&cfg.Telemetry.Metrics, registry)
}

// openHistory opens the configured run history store. It returns nil when
// history is disabled.
func openHistory(cfg *config.Config) (history.Store, error) {
	h := cfg.History
	if !h.Enabled {
		return nil, nil
	}

	switch h.Backend {
	case "memory":
		return history.NewMemoryStore(), nil
	case "sqlite":
		if err := ensureDir(h.SQLite.Path); err != nil {
			return nil, err
		}
		store, err := history.NewSQLiteStore(&history.SQLiteConfig{
			Path:        h.SQLite.Path,
			WALMode:     h.SQLite.WALMode,
			BusyTimeout: h.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", h.Backend)
	}
}

// historyConfig converts the retention settings for the pruner.
func historyConfig(cfg *config.Config) *history.Config {
	return &history.Config{
		RetentionDays: cfg.History.RetentionDays,
		MaxRecords:    cfg.History.MaxRecords,
		PruneSchedule: cfg.History.PruneSchedule,
	}
}

// openSuggestCache opens the configured suggestion cache.
func openSuggestCache(cfg *config.Config) (suggest.Cache, error) {
	s := cfg.Suggest
	switch s.CacheBackend {
	case "memory":
		return suggest.NewMemoryCache(), nil
	case "sqlite":
		if err := ensureDir(s.CachePath); err != nil {
			return nil, err
		}
		return suggest.NewSQLiteCache(s.CachePath)
	default:
		return nil, fmt.Errorf("unsupported suggest cache backend: %s", s.CacheBackend)
	}
}

// engineOptions collects what every validating command shares.
type engineOptions struct {
	store     history.Store
	collector *metrics.Collector
}

func newEngine(cfg *config.Config, opts engineOptions) *engine.Engine {
	o := engine.Options{
		Validator:     newValidator(cfg),
		RuleValidator: newRuleValidator(cfg),
		AutoNormalize: cfg.Validation.AutoNormalize,
		Store:         opts.store,
	}
	if opts.collector != nil {
		o.Metrics = opts.collector
	}
	return engine.New(o)
}

// ensureDir creates the parent directory of a database file.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}
