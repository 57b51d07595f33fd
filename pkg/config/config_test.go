package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tessera.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := Validate(cfg); err != nil {
		t.Fatalf("default configuration invalid: %v", err)
	}
	if cfg.Validation.PriorityMax != DefaultPriorityMax || cfg.Validation.PhaseMax != DefaultPhaseMax {
		t.Errorf("validation defaults = %+v", cfg.Validation)
	}
	if !cfg.Validation.AutoNormalize || !cfg.History.Enabled || !cfg.History.SQLite.WALMode {
		t.Error("boolean defaults not applied")
	}
	if cfg.Rules.PhaseMax != 50 {
		t.Errorf("rules phase max = %d, want 50", cfg.Rules.PhaseMax)
	}
	if cfg.Watch.DebounceInterval != 300*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Watch.DebounceInterval)
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		t.Error("duration buckets not defaulted")
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.History.Backend != first.History.Backend || cfg.Suggest.TTL != first.Suggest.TTL {
		t.Error("ApplyDefaults is not idempotent")
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) != len(DefaultDurationBuckets) {
		t.Error("buckets appended twice")
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
validation:
  priority_max: 7
  auto_normalize: false

history:
  backend: "memory"
  retention_days: 7

export:
  weights:
    fairness: 2
    priorityLevel: 1

telemetry:
  logging:
    level: "debug"
    format: "json"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Validation.PriorityMax != 7 {
		t.Errorf("priority_max = %d, want 7", cfg.Validation.PriorityMax)
	}
	if cfg.Validation.PriorityMin != DefaultPriorityMin {
		t.Errorf("priority_min = %d, want default", cfg.Validation.PriorityMin)
	}
	if cfg.Validation.AutoNormalize {
		t.Error("explicit auto_normalize: false was overridden")
	}
	if cfg.History.Backend != "memory" || cfg.History.RetentionDays != 7 {
		t.Errorf("history = %+v", cfg.History)
	}
	if !cfg.History.Enabled {
		t.Error("history.enabled lost its default")
	}
	if cfg.Export.Weights["fairness"] != 2 {
		t.Errorf("weights = %v", cfg.Export.Weights)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "malformed yaml", content: "validation: [", wantErr: "failed to parse"},
		{name: "unknown backend", content: "history:\n  backend: postgres\n", wantErr: "history.backend"},
		{name: "inverted range", content: "validation:\n  priority_min: 4\n  priority_max: 2\n", wantErr: "validation.priority_max"},
		{name: "bad cron", content: "history:\n  prune_schedule: \"every day\"\n", wantErr: "history.prune_schedule"},
		{name: "bad level", content: "telemetry:\n  logging:\n    level: loud\n", wantErr: "telemetry.logging.level"},
		{name: "negative weight", content: "export:\n  weights:\n    fairness: -1\n", wantErr: "export.weights.fairness"},
		{name: "unsorted buckets", content: "telemetry:\n  metrics:\n    duration_buckets: [1, 0.5]\n", wantErr: "duration_buckets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapped ErrNotExist", err)
	}
}

func TestValidationError_Aggregates(t *testing.T) {
	cfg := Default()
	cfg.History.Backend = "s3"
	cfg.Suggest.CacheBackend = "redis"
	cfg.Telemetry.Logging.Format = "xml"

	err := Validate(cfg)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(ve.Errors) != 3 {
		t.Errorf("got %d field errors, want 3: %v", len(ve.Errors), ve.Errors)
	}
	if !strings.Contains(err.Error(), "with 3 errors") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "history:\n  backend: sqlite\n")

	t.Setenv("TESSERA_HISTORY_BACKEND", "memory")
	t.Setenv("TESSERA_VALIDATION_AUTO_NORMALIZE", "false")
	t.Setenv("TESSERA_HISTORY_MAX_RECORDS", "42")
	t.Setenv("TESSERA_WATCH_DEBOUNCE_INTERVAL", "1s")
	t.Setenv("TESSERA_VALIDATION_PHASE_MAX", "not-a-number")
	t.Setenv("TESSERA_TELEMETRY_METRICS_API_KEYS", "k1, ,k2")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.History.Backend != "memory" {
		t.Errorf("backend = %q, want env override", cfg.History.Backend)
	}
	if cfg.Validation.AutoNormalize {
		t.Error("auto_normalize not overridden")
	}
	if cfg.History.MaxRecords != 42 {
		t.Errorf("max_records = %d", cfg.History.MaxRecords)
	}
	if cfg.Watch.DebounceInterval != time.Second {
		t.Errorf("debounce = %v", cfg.Watch.DebounceInterval)
	}
	if cfg.Validation.PhaseMax != DefaultPhaseMax {
		t.Errorf("unparseable override changed phase_max to %d", cfg.Validation.PhaseMax)
	}
	if keys := cfg.Telemetry.Metrics.APIKeys; len(keys) != 2 || keys[0] != "k1" || keys[1] != "k2" {
		t.Errorf("api_keys = %v", keys)
	}
}

func TestLoadConfigWithEnvOverrides_EmptyPath(t *testing.T) {
	t.Setenv("TESSERA_TELEMETRY_LOGGING_LEVEL", "error")
	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Telemetry.Logging.Level != "error" {
		t.Errorf("level = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	t.Setenv("TESSERA_HISTORY_BACKEND", "postgres")
	if _, err := LoadConfigWithEnvOverrides(""); err == nil {
		t.Error("invalid override accepted")
	}
}

func resetSingleton() {
	SetConfig(nil)
	initOnce = sync.Once{}
}

func TestInitialize(t *testing.T) {
	resetSingleton()
	defer resetSingleton()

	path := writeConfig(t, "history:\n  backend: memory\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	cfg := GetConfig()
	if cfg == nil || cfg.History.Backend != "memory" {
		t.Fatalf("GetConfig() = %+v", cfg)
	}

	// later calls are ignored
	if err := Initialize(writeConfig(t, "history:\n  backend: sqlite\n")); err != nil {
		t.Fatal(err)
	}
	if GetConfig().History.Backend != "memory" {
		t.Error("second Initialize replaced the configuration")
	}
}

func TestReloadConfig(t *testing.T) {
	resetSingleton()
	defer resetSingleton()

	SetConfig(Default())
	if err := ReloadConfig(writeConfig(t, "history:\n  backend: nope\n")); err == nil {
		t.Fatal("ReloadConfig() accepted invalid file")
	}
	if GetConfig().History.Backend != DefaultHistoryBackend {
		t.Error("failed reload replaced the configuration")
	}

	if err := ReloadConfig(writeConfig(t, "history:\n  backend: memory\n")); err != nil {
		t.Fatal(err)
	}
	if GetConfig().History.Backend != "memory" {
		t.Error("reload did not apply")
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	resetSingleton()
	defer func() {
		if recover() == nil {
			t.Error("MustGetConfig() did not panic")
		}
	}()
	MustGetConfig()
}
