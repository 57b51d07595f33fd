package config

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "history.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All field errors are
// collected and returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateValidation(&cfg.Validation)...)
	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateSuggest(&cfg.Suggest)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)
	errs = append(errs, validateExport(&cfg.Export)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateRange(prefix, minName, maxName string, lo, hi int) []FieldError {
	var errs []FieldError
	if lo < 0 {
		errs = append(errs, FieldError{
			Field:   prefix + "." + minName,
			Message: fmt.Sprintf("must be >= 0, got %d", lo),
		})
	}
	if hi < lo {
		errs = append(errs, FieldError{
			Field:   prefix + "." + maxName,
			Message: fmt.Sprintf("must be >= %s (%d < %d)", minName, hi, lo),
		})
	}
	return errs
}

func validateValidation(cfg *ValidationConfig) []FieldError {
	var errs []FieldError

	errs = append(errs, validateRange("validation", "priority_min", "priority_max", cfg.PriorityMin, cfg.PriorityMax)...)
	errs = append(errs, validateRange("validation", "qualification_min", "qualification_max", cfg.QualificationMin, cfg.QualificationMax)...)
	errs = append(errs, validateRange("validation", "phase_min", "phase_max", cfg.PhaseMin, cfg.PhaseMax)...)

	if cfg.DurationWarnThreshold < 1 {
		errs = append(errs, FieldError{
			Field:   "validation.duration_warn_threshold",
			Message: "must be at least 1",
		})
	}
	if cfg.MaxLoadWarnThreshold < 1 {
		errs = append(errs, FieldError{
			Field:   "validation.max_load_warn_threshold",
			Message: "must be at least 1",
		})
	}
	return errs
}

func validateRules(cfg *RulesConfig) []FieldError {
	return validateRange("rules", "phase_min", "phase_max", cfg.PhaseMin, cfg.PhaseMax)
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "history.sqlite.path",
				Message: "path is required for the sqlite backend",
			})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   "history.sqlite.busy_timeout",
				Message: "busy timeout must not be negative",
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "history.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend),
		})
	}

	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention_days",
			Message: "retention days must be >= 0",
		})
	}
	if cfg.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "history.max_records",
			Message: "max records must be >= 0",
		})
	}
	if cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "history.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.PruneSchedule, err),
			})
		}
	}
	return errs
}

func validateSuggest(cfg *SuggestConfig) []FieldError {
	var errs []FieldError

	switch cfg.CacheBackend {
	case "sqlite":
		if cfg.CachePath == "" {
			errs = append(errs, FieldError{
				Field:   "suggest.cache_path",
				Message: "cache path is required for the sqlite backend",
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "suggest.cache_backend",
			Message: fmt.Sprintf("invalid cache backend %q: must be 'sqlite' or 'memory'", cfg.CacheBackend),
		})
	}

	if cfg.TTL < 0 {
		errs = append(errs, FieldError{
			Field:   "suggest.ttl",
			Message: "ttl must not be negative",
		})
	}
	return errs
}

func validateWatch(cfg *WatchConfig) []FieldError {
	if cfg.DebounceInterval < 0 {
		return []FieldError{{
			Field:   "watch.debounce_interval",
			Message: "debounce interval must not be negative",
		}}
	}
	return nil
}

func validateExport(cfg *ExportConfig) []FieldError {
	var errs []FieldError

	names := make([]string, 0, len(cfg.Weights))
	for name := range cfg.Weights {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		w := cfg.Weights[name]
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			errs = append(errs, FieldError{
				Field:   "export.weights." + name,
				Message: fmt.Sprintf("weight must be a finite non-negative number, got %v", w),
			})
		}
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if p.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: "pattern is required",
			})
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path is required when metrics are enabled",
		})
	}
	if cfg.Metrics.Path != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: fmt.Sprintf("metrics path %q must start with '/'", cfg.Metrics.Path),
		})
	}
	for i := 1; i < len(cfg.Metrics.DurationBuckets); i++ {
		if cfg.Metrics.DurationBuckets[i] <= cfg.Metrics.DurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}
	return errs
}
