package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/tessera/pkg/engine"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DebounceInterval != 300*time.Millisecond {
		t.Errorf("DebounceInterval = %v, want 300ms", cfg.DebounceInterval)
	}
}

func TestNewFileWatcher_NoPaths(t *testing.T) {
	if _, err := NewFileWatcher(&Config{}, nil); err == nil {
		t.Error("NewFileWatcher() error = nil, want error")
	}
}

func TestFileWatcher_StopIsIdempotent(t *testing.T) {
	fw, err := NewFileWatcher(&Config{Paths: []string{"data.yaml"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := fw.Stop(); err != nil {
		t.Errorf("first Stop() error = %v", err)
	}
	if err := fw.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

// waitFor rewrites path until fired reports true or the deadline passes.
func waitFor(t *testing.T, path string, fired func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if err := os.WriteFile(path, []byte("clients: []\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(100 * time.Millisecond)
		if fired() {
			return true
		}
	}
	return false
}

func TestFileWatcher_Watch(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "data.yaml")
	other := filepath.Join(dir, "notes.yaml")
	for _, p := range []string{watched, other} {
		if err := os.WriteFile(p, []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	fw, err := NewFileWatcher(&Config{Paths: []string{watched}, DebounceInterval: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- fw.Watch(ctx, func(context.Context) error {
			calls.Add(1)
			return nil
		})
	}()

	if !waitFor(t, watched, func() bool { return calls.Load() > 0 }) {
		t.Fatal("onChange not called after writing the watched file")
	}

	time.Sleep(100 * time.Millisecond)
	before := calls.Load()
	if err := os.WriteFile(other, []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if calls.Load() != before {
		t.Error("onChange called for an unwatched file")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
	if err := fw.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestFileWatcher_CancelDropsPendingChange(t *testing.T) {
	watched := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(watched, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fw, err := NewFileWatcher(&Config{Paths: []string{watched}, DebounceInterval: 300 * time.Millisecond}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Stop()

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- fw.Watch(ctx, func(context.Context) error {
			calls.Add(1)
			return nil
		})
	}()

	pending := func() bool {
		fw.debounce.mu.Lock()
		defer fw.debounce.mu.Unlock()
		return fw.debounce.callback != nil
	}
	if !waitFor(t, watched, pending) {
		t.Fatal("no change scheduled after writing the watched file")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}

	time.Sleep(500 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("onChange called %d times after cancel, want 0", n)
	}
}

func TestFileWatcher_AlreadyRunning(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWatcher(&Config{Paths: []string{filepath.Join(dir, "d.yaml")}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Stop()

	go func() { _ = fw.Watch(context.Background(), func(context.Context) error { return nil }) }()
	time.Sleep(50 * time.Millisecond)

	if err := fw.Watch(context.Background(), func(context.Context) error { return nil }); err == nil {
		t.Error("second Watch() error = nil")
	}
}

func TestDebouncer_Coalesces(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls, last atomic.Int32
	for i := 1; i <= 5; i++ {
		i := int32(i)
		d.Trigger(func() {
			calls.Add(1)
			last.Store(i)
		})
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
	if last.Load() != 5 {
		t.Errorf("ran callback %d, want the last one", last.Load())
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("calls = %d after Stop, want 0", calls.Load())
	}
}

const dataYAML = `clients:
  - ClientID: C1
    ClientName: Acme
    PriorityLevel: 3
    RequestedTaskIDs: T1
    GroupTag: enterprise
    AttributesJSON: '{}'
workers:
  - WorkerID: W1
    WorkerName: Ada
    Skills: go
    AvailableSlots: "[1,2]"
    MaxLoadPerPhase: 1
    WorkerGroup: backend
    QualificationLevel: 3
tasks:
  - TaskID: T1
    TaskName: Build
    Category: eng
    Duration: 1
    RequiredSkills: go
    PreferredPhases: "[1]"
    MaxConcurrent: 1
`

const rulesYAML = `rules:
  - id: r1
    type: coRun
    taskIds: [T1]
`

func TestRunner(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data.yaml")
	rulesPath := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(dataPath, []byte(dataYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(rulesPath, []byte(rulesYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	var reports int
	r := &Runner{
		DataPath:  dataPath,
		RulesPath: rulesPath,
		Engine:    engine.New(engine.Options{}),
		OnReport:  func(*engine.Report) { reports++ },
	}
	ctx := context.Background()

	if err := r.Ready(ctx); err == nil {
		t.Error("Ready() before first run = nil")
	}
	if got := r.Paths(); len(got) != 2 {
		t.Errorf("Paths() = %v", got)
	}

	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := r.Ready(ctx); err != nil {
		t.Errorf("Ready() = %v", err)
	}
	last := r.Last()
	if last == nil || last.Source != dataPath {
		t.Fatalf("Last() = %+v", last)
	}
	if !last.Result.IsValid {
		t.Errorf("dataset errors: %v", last.Result.Errors)
	}
	if last.RuleResult == nil || last.RuleResult.IsValid {
		t.Error("single-task co-run rule should be invalid")
	}
	if reports != 1 {
		t.Errorf("OnReport called %d times", reports)
	}

	if err := os.WriteFile(dataPath, []byte("clients: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.Run(ctx); err == nil {
		t.Error("Run() on broken file error = nil")
	}
	if err := r.Ready(ctx); err == nil {
		t.Error("Ready() after failed run = nil")
	}
	if r.Last() != last {
		t.Error("failed run replaced the last report")
	}
}

func TestRunner_NoEngine(t *testing.T) {
	r := &Runner{DataPath: "data.yaml"}
	if err := r.Run(context.Background()); err == nil {
		t.Error("Run() without engine error = nil")
	}
	if got := r.Paths(); len(got) != 1 {
		t.Errorf("Paths() = %v", got)
	}
}

func TestRunner_SetEngine(t *testing.T) {
	dataPath := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(dataPath, []byte(dataYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &Runner{DataPath: dataPath, Engine: engine.New(engine.Options{})}
	ctx := context.Background()
	if err := r.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if r.Last().Normalized {
		t.Fatal("first run normalized without AutoNormalize")
	}

	r.SetEngine(engine.New(engine.Options{AutoNormalize: true}))
	if err := r.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !r.Last().Normalized {
		t.Error("run after SetEngine did not use the new engine")
	}
}
