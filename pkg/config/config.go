package config

import "time"

// Config is the root configuration structure for tessera.
type Config struct {
	// Validation contains the numeric bounds used by the dataset validator.
	Validation ValidationConfig `yaml:"validation"`

	// Rules contains settings for business rule validation.
	Rules RulesConfig `yaml:"rules"`

	// History controls persistence of validation run records.
	History HistoryConfig `yaml:"history"`

	// Suggest controls the rule suggestion cache.
	Suggest SuggestConfig `yaml:"suggest"`

	// Watch controls watch mode.
	Watch WatchConfig `yaml:"watch"`

	// Export controls the rules.json export.
	Export ExportConfig `yaml:"export"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ValidationConfig contains the dataset validator bounds.
type ValidationConfig struct {
	// PriorityMin and PriorityMax bound a client's PriorityLevel.
	// Default: 1, 5
	PriorityMin int `yaml:"priority_min"`
	PriorityMax int `yaml:"priority_max"`

	// QualificationMin and QualificationMax bound a worker's QualificationLevel.
	// Default: 1, 5
	QualificationMin int `yaml:"qualification_min"`
	QualificationMax int `yaml:"qualification_max"`

	// DurationWarnThreshold flags task durations above it.
	// Default: 10
	DurationWarnThreshold int `yaml:"duration_warn_threshold"`

	// MaxLoadWarnThreshold flags worker MaxLoadPerPhase values above it.
	// Default: 20
	MaxLoadWarnThreshold int `yaml:"max_load_warn_threshold"`

	// PhaseMin and PhaseMax bound the phases referenced in the data.
	// Default: 1, 20
	PhaseMin int `yaml:"phase_min"`
	PhaseMax int `yaml:"phase_max"`

	// AutoNormalize rewrites PreferredPhases to canonical form before
	// validating.
	// Default: true
	AutoNormalize bool `yaml:"auto_normalize"`
}

// RulesConfig contains business rule validation settings.
type RulesConfig struct {
	// PhaseMin and PhaseMax bound the phases slot restrictions may name.
	// Default: 1, 50
	PhaseMin int `yaml:"phase_min"`
	PhaseMax int `yaml:"phase_max"`
}

// HistoryConfig controls validation run history.
type HistoryConfig struct {
	// Enabled turns run recording on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the store.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the SQLite backend.
	SQLite HistorySQLiteConfig `yaml:"sqlite"`

	// RetentionDays deletes records older than this many days. 0 keeps
	// records forever.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the number of stored records. 0 means unlimited.
	// Default: 1000
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is the cron expression used by watch mode to prune.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// HistorySQLiteConfig configures the SQLite history backend.
type HistorySQLiteConfig struct {
	// Path is the database file.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// SuggestConfig controls the rule suggestion cache.
type SuggestConfig struct {
	// CacheBackend selects the cache.
	// Options: "sqlite", "memory"
	// Default: "memory"
	CacheBackend string `yaml:"cache_backend"`

	// CachePath is the SQLite cache file.
	// Default: "data/suggest.db"
	CachePath string `yaml:"cache_path"`

	// TTL is how long cached suggestions stay valid.
	// Default: 1h
	TTL time.Duration `yaml:"ttl"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	// DebounceInterval coalesces bursts of file events.
	// Default: 300ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// ExportConfig controls the rules.json export.
type ExportConfig struct {
	// Version is written into the export document.
	// Default: "1.0"
	Version string `yaml:"version"`

	// Weights are the prioritization weights. Empty means the standard
	// weights.
	Weights map[string]float64 `yaml:"weights"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII masks contact details found in logged values.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns adds custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern is a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is where watch mode serves metrics. Empty disables the
	// endpoint.
	// Default: ""
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// APIKeys, when set, restrict Path to requests carrying one of the keys.
	// Health endpoints stay open.
	APIKeys []string `yaml:"api_keys"`

	// Namespace is the metric name prefix.
	// Default: "tessera"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "validation"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for run duration (seconds).
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}
