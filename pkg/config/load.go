package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TESSERA_"

// LoadConfig loads configuration from a YAML file at path. Values absent
// from the file keep their defaults. The result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults without validating.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration and applies environment
// variable overrides named TESSERA_SECTION_FIELD. An empty path starts from
// the defaults. Environment variables take precedence over the file.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		var err error
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Validation overrides
	envInt("VALIDATION_PRIORITY_MIN", &cfg.Validation.PriorityMin)
	envInt("VALIDATION_PRIORITY_MAX", &cfg.Validation.PriorityMax)
	envInt("VALIDATION_QUALIFICATION_MIN", &cfg.Validation.QualificationMin)
	envInt("VALIDATION_QUALIFICATION_MAX", &cfg.Validation.QualificationMax)
	envInt("VALIDATION_DURATION_WARN_THRESHOLD", &cfg.Validation.DurationWarnThreshold)
	envInt("VALIDATION_MAX_LOAD_WARN_THRESHOLD", &cfg.Validation.MaxLoadWarnThreshold)
	envInt("VALIDATION_PHASE_MIN", &cfg.Validation.PhaseMin)
	envInt("VALIDATION_PHASE_MAX", &cfg.Validation.PhaseMax)
	envBool("VALIDATION_AUTO_NORMALIZE", &cfg.Validation.AutoNormalize)

	// Rules overrides
	envInt("RULES_PHASE_MIN", &cfg.Rules.PhaseMin)
	envInt("RULES_PHASE_MAX", &cfg.Rules.PhaseMax)

	// History overrides
	envBool("HISTORY_ENABLED", &cfg.History.Enabled)
	envString("HISTORY_BACKEND", &cfg.History.Backend)
	envString("HISTORY_SQLITE_PATH", &cfg.History.SQLite.Path)
	envDuration("HISTORY_SQLITE_BUSY_TIMEOUT", &cfg.History.SQLite.BusyTimeout)
	envInt("HISTORY_RETENTION_DAYS", &cfg.History.RetentionDays)
	if val := os.Getenv(EnvPrefix + "HISTORY_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.History.MaxRecords = i
		}
	}
	envString("HISTORY_PRUNE_SCHEDULE", &cfg.History.PruneSchedule)

	// Suggest overrides
	envString("SUGGEST_CACHE_BACKEND", &cfg.Suggest.CacheBackend)
	envString("SUGGEST_CACHE_PATH", &cfg.Suggest.CachePath)
	envDuration("SUGGEST_TTL", &cfg.Suggest.TTL)

	// Watch overrides
	envDuration("WATCH_DEBOUNCE_INTERVAL", &cfg.Watch.DebounceInterval)

	// Export overrides
	envString("EXPORT_VERSION", &cfg.Export.Version)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	envBool("TELEMETRY_LOGGING_REDACT_PII", &cfg.Telemetry.Logging.RedactPII)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_LISTEN_ADDRESS", &cfg.Telemetry.Metrics.ListenAddress)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envList("TELEMETRY_METRICS_API_KEYS", &cfg.Telemetry.Metrics.APIKeys)
}

// Unparseable values are ignored and the existing value is kept.

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

// envList splits a comma-separated value, dropping empty entries.
func envList(name string, dst *[]string) {
	val := os.Getenv(EnvPrefix + name)
	if val == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}
