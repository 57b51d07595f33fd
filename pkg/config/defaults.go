package config

import "time"

// Default values for configuration fields.
const (
	// Validation defaults
	DefaultPriorityMin           = 1
	DefaultPriorityMax           = 5
	DefaultQualificationMin      = 1
	DefaultQualificationMax      = 5
	DefaultDurationWarnThreshold = 10
	DefaultMaxLoadWarnThreshold  = 20
	DefaultPhaseMin              = 1
	DefaultPhaseMax              = 20
	DefaultAutoNormalize         = true

	// Rules defaults
	DefaultRulePhaseMin = 1
	DefaultRulePhaseMax = 50

	// History defaults
	DefaultHistoryEnabled           = true
	DefaultHistoryBackend           = "sqlite"
	DefaultHistorySQLitePath        = "data/history.db"
	DefaultHistorySQLiteWALMode     = true
	DefaultHistorySQLiteBusyTimeout = 5 * time.Second
	DefaultHistoryRetentionDays     = 30
	DefaultHistoryMaxRecords        = int64(1000)
	DefaultHistoryPruneSchedule     = "0 3 * * *"

	// Suggest defaults
	DefaultSuggestCacheBackend = "memory"
	DefaultSuggestCachePath    = "data/suggest.db"
	DefaultSuggestTTL          = time.Hour

	// Watch defaults
	DefaultWatchDebounce = 300 * time.Millisecond

	// Export defaults
	DefaultExportVersion = "1.0"

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "text"
	DefaultRedactPII        = true
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "tessera"
	DefaultMetricsSubsystem = "validation"
)

// DefaultDurationBuckets are the run-duration histogram buckets in seconds.
var DefaultDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// Default returns a configuration with every field set to its default,
// including the boolean switches that ApplyDefaults cannot tell apart from
// an explicit false.
func Default() *Config {
	cfg := &Config{}
	cfg.Validation.AutoNormalize = DefaultAutoNormalize
	cfg.History.Enabled = DefaultHistoryEnabled
	cfg.History.SQLite.WALMode = DefaultHistorySQLiteWALMode
	cfg.Telemetry.Logging.RedactPII = DefaultRedactPII
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to fields that have zero values.
// It is idempotent.
func ApplyDefaults(cfg *Config) {
	v := &cfg.Validation
	if v.PriorityMin == 0 {
		v.PriorityMin = DefaultPriorityMin
	}
	if v.PriorityMax == 0 {
		v.PriorityMax = DefaultPriorityMax
	}
	if v.QualificationMin == 0 {
		v.QualificationMin = DefaultQualificationMin
	}
	if v.QualificationMax == 0 {
		v.QualificationMax = DefaultQualificationMax
	}
	if v.DurationWarnThreshold == 0 {
		v.DurationWarnThreshold = DefaultDurationWarnThreshold
	}
	if v.MaxLoadWarnThreshold == 0 {
		v.MaxLoadWarnThreshold = DefaultMaxLoadWarnThreshold
	}
	if v.PhaseMin == 0 {
		v.PhaseMin = DefaultPhaseMin
	}
	if v.PhaseMax == 0 {
		v.PhaseMax = DefaultPhaseMax
	}

	if cfg.Rules.PhaseMin == 0 {
		cfg.Rules.PhaseMin = DefaultRulePhaseMin
	}
	if cfg.Rules.PhaseMax == 0 {
		cfg.Rules.PhaseMax = DefaultRulePhaseMax
	}

	h := &cfg.History
	if h.Backend == "" {
		h.Backend = DefaultHistoryBackend
	}
	if h.SQLite.Path == "" {
		h.SQLite.Path = DefaultHistorySQLitePath
	}
	if h.SQLite.BusyTimeout == 0 {
		h.SQLite.BusyTimeout = DefaultHistorySQLiteBusyTimeout
	}
	if h.RetentionDays == 0 {
		h.RetentionDays = DefaultHistoryRetentionDays
	}
	if h.MaxRecords == 0 {
		h.MaxRecords = DefaultHistoryMaxRecords
	}
	if h.PruneSchedule == "" {
		h.PruneSchedule = DefaultHistoryPruneSchedule
	}

	if cfg.Suggest.CacheBackend == "" {
		cfg.Suggest.CacheBackend = DefaultSuggestCacheBackend
	}
	if cfg.Suggest.CachePath == "" {
		cfg.Suggest.CachePath = DefaultSuggestCachePath
	}
	if cfg.Suggest.TTL == 0 {
		cfg.Suggest.TTL = DefaultSuggestTTL
	}

	if cfg.Watch.DebounceInterval == 0 {
		cfg.Watch.DebounceInterval = DefaultWatchDebounce
	}

	if cfg.Export.Version == "" {
		cfg.Export.Version = DefaultExportVersion
	}

	l := &cfg.Telemetry.Logging
	if l.Level == "" {
		l.Level = DefaultLoggingLevel
	}
	if l.Format == "" {
		l.Format = DefaultLoggingFormat
	}

	m := &cfg.Telemetry.Metrics
	if m.Path == "" {
		m.Path = DefaultMetricsPath
	}
	if m.Namespace == "" {
		m.Namespace = DefaultMetricsNamespace
	}
	if m.Subsystem == "" {
		m.Subsystem = DefaultMetricsSubsystem
	}
	if len(m.DurationBuckets) == 0 {
		m.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
}
