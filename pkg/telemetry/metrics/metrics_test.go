package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/tessera/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "test",
		Subsystem:       "metrics",
		DurationBuckets: []float64{0.01, 0.1, 1},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)
	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	collector := NewCollector(cfg, nil)

	if collector.Registry() == nil {
		t.Fatal("nil registry")
	}
	if cfg.Namespace != "tessera" || cfg.Subsystem != "validation" || len(cfg.DurationBuckets) == 0 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestCollector_RecordRun(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordRun(true, 5*time.Millisecond)
	collector.RecordRun(false, 50*time.Millisecond)
	collector.RecordRun(false, time.Second)

	if got := testutil.ToFloat64(collector.runMetrics.runsTotal.WithLabelValues("valid")); got != 1 {
		t.Errorf("valid runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.runMetrics.runsTotal.WithLabelValues("invalid")); got != 2 {
		t.Errorf("invalid runs = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(collector.runMetrics.duration); n != 1 {
		t.Errorf("duration histogram series = %d", n)
	}
}

func TestCollector_EntitiesAndFixes(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.SetEntityCount("clients", 4)
	collector.SetEntityCount("clients", 6)
	collector.RecordFixes("suggested", 3)
	collector.RecordFixes("suggested", 0)
	collector.RecordHistoryPruned(5)
	collector.RecordHistoryPruned(-1)

	if got := testutil.ToFloat64(collector.runMetrics.entities.WithLabelValues("clients")); got != 6 {
		t.Errorf("clients = %v, want 6", got)
	}
	if got := testutil.ToFloat64(collector.runMetrics.fixesTotal.WithLabelValues("suggested")); got != 3 {
		t.Errorf("fixes = %v, want 3", got)
	}
	if got := testutil.ToFloat64(collector.runMetrics.prunedTotal); got != 5 {
		t.Errorf("pruned = %v, want 5", got)
	}
}

func TestCollector_FindingsAndConflicts(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordFinding("dataset", "duplicate_id", "error")
	collector.RecordFinding("dataset", "duplicate_id", "error")
	collector.RecordFinding("rules", "missing_task", "error")
	collector.RecordConflict("overlapping_corun_tasks", "medium")

	if got := testutil.ToFloat64(collector.findingMetrics.findingsTotal.WithLabelValues("dataset", "duplicate_id", "error")); got != 2 {
		t.Errorf("duplicate_id = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.findingMetrics.findingsTotal.WithLabelValues("rules", "missing_task", "error")); got != 1 {
		t.Errorf("missing_task = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.findingMetrics.conflictsTotal.WithLabelValues("overlapping_corun_tasks", "medium")); got != 1 {
		t.Errorf("conflicts = %v, want 1", got)
	}
}

func TestCollector_CacheMetrics(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordCacheHit("suggest")
	collector.RecordCacheMiss("suggest")
	collector.RecordCacheMiss("suggest")

	if got := testutil.ToFloat64(collector.cacheMetrics.hitsTotal.WithLabelValues("suggest")); got != 1 {
		t.Errorf("hits = %v", got)
	}
	if got := testutil.ToFloat64(collector.cacheMetrics.missesTotal.WithLabelValues("suggest")); got != 2 {
		t.Errorf("misses = %v", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordRun(true, time.Second)
	collector.RecordFinding("dataset", "duplicate_id", "error")
	collector.RecordCacheHit("suggest")

	if got := testutil.ToFloat64(collector.runMetrics.runsTotal.WithLabelValues("valid")); got != 0 {
		t.Errorf("disabled collector recorded %v runs", got)
	}
	if got := testutil.ToFloat64(collector.findingMetrics.findingsTotal.WithLabelValues("dataset", "duplicate_id", "error")); got != 0 {
		t.Errorf("disabled collector recorded %v findings", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordRun(true, time.Millisecond)

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "test_metrics_runs_total") {
		t.Errorf("exposition missing runs_total:\n%s", body)
	}
}
