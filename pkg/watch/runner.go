package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/engine"
	"mercator-hq/tessera/pkg/rules"
	"mercator-hq/tessera/pkg/telemetry/logging"
)

// Runner loads the watched files and validates them with an engine. It
// remembers the outcome of the last attempt for readiness checks.
type Runner struct {
	DataPath  string
	RulesPath string // optional

	// Engine validates each run. Use SetEngine to replace it while watching.
	Engine *engine.Engine

	// OnReport is called after every successful run.
	OnReport func(*engine.Report)

	mu      sync.RWMutex
	last    *engine.Report
	lastErr error
}

// Run loads both files and validates them once.
func (r *Runner) Run(ctx context.Context) error {
	report, err := r.run(ctx)

	r.mu.Lock()
	r.lastErr = err
	if err == nil {
		r.last = report
	}
	r.mu.Unlock()

	if err != nil {
		return err
	}
	if r.OnReport != nil {
		r.OnReport(report)
	}
	return nil
}

func (r *Runner) run(ctx context.Context) (*engine.Report, error) {
	eng := r.engine()
	if eng == nil {
		return nil, errors.New("runner has no engine")
	}

	ds, err := dataset.Load(r.DataPath)
	if err != nil {
		return nil, err
	}

	var rs []rules.Rule
	if r.RulesPath != "" {
		rs, err = rules.LoadFile(r.RulesPath)
		if err != nil {
			return nil, err
		}
		ctx = logging.WithRulesSource(ctx, r.RulesPath)
	}

	return eng.Run(logging.WithSource(ctx, r.DataPath), ds, rs)
}

// SetEngine replaces the engine used by subsequent runs.
func (r *Runner) SetEngine(e *engine.Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Engine = e
}

func (r *Runner) engine() *engine.Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Engine
}

// Last returns the most recent successful report, or nil.
func (r *Runner) Last() *engine.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Ready fails until a run has succeeded and while the latest attempt is
// failing to load. Invalid data does not make the runner unready.
func (r *Runner) Ready(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.lastErr != nil {
		return fmt.Errorf("last run failed: %w", r.lastErr)
	}
	if r.last == nil {
		return errors.New("no run completed yet")
	}
	return nil
}

// Paths returns the files the runner reads.
func (r *Runner) Paths() []string {
	if r.RulesPath == "" {
		return []string{r.DataPath}
	}
	return []string{r.DataPath, r.RulesPath}
}
