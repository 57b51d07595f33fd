package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/findings"
	"mercator-hq/tessera/pkg/fixes"
	"mercator-hq/tessera/pkg/history"
	"mercator-hq/tessera/pkg/rules"
	"mercator-hq/tessera/pkg/telemetry/logging"
	"mercator-hq/tessera/pkg/validator"
)

// Recorder receives run statistics. *metrics.Collector satisfies it.
type Recorder interface {
	RecordRun(valid bool, duration time.Duration)
	SetEntityCount(entity string, n int)
	RecordFixes(outcome string, n int)
	RecordFinding(scope, kind, severity string)
	RecordConflict(conflictType, severity string)
}

// Options configures an Engine. Every field is optional.
type Options struct {
	// Validator checks the dataset. Defaults to validator.New().
	Validator *validator.Validator

	// RuleValidator checks rules. Defaults to rules.NewValidator().
	RuleValidator *rules.Validator

	// AutoNormalize canonicalizes PreferredPhases before validating.
	AutoNormalize bool

	// Store receives one history record per run.
	Store history.Store

	// Metrics receives run statistics.
	Metrics Recorder

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Engine runs validation passes. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	validator     *validator.Validator
	ruleValidator *rules.Validator
	autoNormalize bool
	store         history.Store
	metrics       Recorder
	logger        *slog.Logger
	now           func() time.Time
}

// New creates an engine.
func New(opts Options) *Engine {
	e := &Engine{
		validator:     opts.Validator,
		ruleValidator: opts.RuleValidator,
		autoNormalize: opts.AutoNormalize,
		store:         opts.Store,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		now:           time.Now,
	}
	if e.validator == nil {
		e.validator = validator.New()
	}
	if e.ruleValidator == nil {
		e.ruleValidator = rules.NewValidator()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// Report is the outcome of one run.
type Report struct {
	RunID     string        `json:"run_id"`
	Source    string        `json:"source,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	// Dataset is the data that was validated. It is the normalized copy
	// when Normalized is true, otherwise the caller's dataset.
	Dataset    *dataset.DataSet `json:"-"`
	Normalized bool             `json:"normalized"`

	Result *findings.Result `json:"data_validation"`

	// RuleResult is nil when no rules were supplied.
	RuleResult *rules.Result `json:"rule_validation,omitempty"`
}

// IsValid reports whether the dataset and, when checked, the rules passed.
// Conflicts do not count.
func (r *Report) IsValid() bool {
	if r.Result == nil || !r.Result.IsValid {
		return false
	}
	return r.RuleResult == nil || r.RuleResult.IsValid
}

// Run validates ds and, when rs is non-nil, the rules in rs against it.
// ds is never modified. The dataset source is read from ctx
// (see logging.WithSource).
func (e *Engine) Run(ctx context.Context, ds *dataset.DataSet, rs []rules.Rule) (*Report, error) {
	report, err := e.evaluate(ctx, ds, rs)
	if err != nil {
		return nil, err
	}
	e.observe(ctx, report)
	return report, nil
}

// evaluate runs the validators without reporting to side channels.
func (e *Engine) evaluate(ctx context.Context, ds *dataset.DataSet, rs []rules.Rule) (*Report, error) {
	if ds == nil {
		return nil, errors.New("dataset is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := e.now()
	report := &Report{
		RunID:     logging.GetRunID(ctx),
		Source:    logging.GetSource(ctx),
		StartedAt: start.UTC(),
		Dataset:   ds,
	}
	if report.RunID == "" {
		report.RunID = uuid.NewString()
	}

	if e.autoNormalize {
		report.Dataset = dataset.Normalize(ds)
		report.Normalized = true
	}

	report.Result = e.validator.Validate(report.Dataset)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rs != nil {
		report.RuleResult = e.ruleValidator.Validate(rs, report.Dataset)
	}

	report.Duration = time.Since(start)
	return report, nil
}

// observe reports a finished run to metrics, history and the log.
func (e *Engine) observe(ctx context.Context, r *Report) {
	logger := e.logger.With("run_id", r.RunID)
	if r.Source != "" {
		logger = logger.With("source", r.Source)
	}

	if e.metrics != nil {
		e.recordMetrics(r)
	}

	if e.store != nil {
		rec := history.NewRecord(r.RunID, r.Source, r.Result.Summary.EntityCounts, r.Result, r.RuleResult, r.Duration)
		if err := e.store.Save(ctx, rec); err != nil {
			logger.Warn("failed to save run history", "error", err)
		}
	}

	attrs := []any{
		"valid", r.IsValid(),
		"errors", len(r.Result.Errors),
		"warnings", len(r.Result.Warnings),
		"fixes", len(r.Result.Fixes),
		"duration", r.Duration,
	}
	if r.RuleResult != nil {
		attrs = append(attrs,
			"rule_errors", len(r.RuleResult.Errors),
			"conflicts", len(r.RuleResult.Conflicts))
	}
	logger.Info("validation run complete", attrs...)
}

func (e *Engine) recordMetrics(r *Report) {
	e.metrics.RecordRun(r.IsValid(), r.Duration)

	counts := r.Result.Summary.EntityCounts
	e.metrics.SetEntityCount(string(dataset.EntityClients), counts.Clients)
	e.metrics.SetEntityCount(string(dataset.EntityWorkers), counts.Workers)
	e.metrics.SetEntityCount(string(dataset.EntityTasks), counts.Tasks)

	record := func(scope string, fs []findings.Finding) {
		for _, f := range fs {
			e.metrics.RecordFinding(scope, string(f.Kind), string(f.Severity))
		}
	}
	record("dataset", r.Result.Errors)
	record("dataset", r.Result.Warnings)
	e.metrics.RecordFixes("suggested", len(r.Result.Fixes))

	if r.RuleResult != nil {
		record("rules", r.RuleResult.Errors)
		record("rules", r.RuleResult.Warnings)
		for _, c := range r.RuleResult.Conflicts {
			e.metrics.RecordConflict(string(c.Type), string(c.Severity))
		}
	}
}

// FixReport is the outcome of Fix.
type FixReport struct {
	// Before is the validation the fixes came from.
	Before *findings.Result

	// Applied counts fixes written to the dataset.
	Applied int

	// Failures holds one error per fix that could not be applied.
	Failures []error

	// After is the run over the corrected dataset. After.Dataset holds it.
	After *Report
}

// Fix validates ds, applies every fix the validation produced and runs the
// corrected dataset through Run. Fixes are applied once; findings that need
// a person stay in After. Fixes that cannot be applied are reported in
// Failures and do not fail the call.
func (e *Engine) Fix(ctx context.Context, ds *dataset.DataSet, rs []rules.Rule) (*FixReport, error) {
	before, err := e.evaluate(ctx, ds, rs)
	if err != nil {
		return nil, err
	}

	fixed, applyErr := fixes.Apply(before.Dataset, before.Result.Fixes)
	failures := unwrapAll(applyErr)
	out := &FixReport{
		Before:   before.Result,
		Applied:  len(before.Result.Fixes) - len(failures),
		Failures: failures,
	}

	if e.metrics != nil {
		e.metrics.RecordFixes("applied", out.Applied)
		e.metrics.RecordFixes("failed", len(failures))
	}
	for _, f := range failures {
		e.logger.Warn("fix not applied", "run_id", before.RunID, "error", f)
	}

	after, err := e.Run(ctx, fixed, rs)
	if err != nil {
		return nil, fmt.Errorf("failed to validate fixed dataset: %w", err)
	}
	after.Normalized = after.Normalized || before.Normalized
	out.After = after
	return out, nil
}

// unwrapAll splits an errors.Join result into its parts.
func unwrapAll(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
