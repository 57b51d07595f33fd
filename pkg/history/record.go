package history

import (
	"context"
	"fmt"
	"time"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/findings"
	"mercator-hq/tessera/pkg/rules"
)

// Record is the outcome of one validation run.
type Record struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`

	// Source names the dataset that was validated, usually a file path.
	Source string               `json:"source"`
	Counts dataset.EntityCounts `json:"counts"`

	IsValid        bool `json:"is_valid"`
	Errors         int  `json:"errors"`
	Warnings       int  `json:"warnings"`
	CriticalErrors int  `json:"critical_errors"`
	Fixes          int  `json:"fixes"`

	// Rule fields stay zero when no rules were validated.
	RulesValid   bool `json:"rules_valid"`
	RuleErrors   int  `json:"rule_errors"`
	RuleWarnings int  `json:"rule_warnings"`
	Conflicts    int  `json:"conflicts"`

	Duration time.Duration `json:"duration"`
}

// NewRecord summarizes a run. rr may be nil when no rules were checked.
func NewRecord(runID, source string, counts dataset.EntityCounts, dr *findings.Result, rr *rules.Result, took time.Duration) *Record {
	rec := &Record{
		RunID:     runID,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Counts:    counts,
		Duration:  took,
	}
	if dr != nil {
		rec.IsValid = dr.IsValid
		rec.Errors = len(dr.Errors)
		rec.Warnings = len(dr.Warnings)
		rec.CriticalErrors = dr.Summary.CriticalErrors
		rec.Fixes = len(dr.Fixes)
	}
	if rr != nil {
		rec.RulesValid = rr.IsValid
		rec.RuleErrors = len(rr.Errors)
		rec.RuleWarnings = len(rr.Warnings)
		rec.Conflicts = len(rr.Conflicts)
	}
	return rec
}

// Store persists run records.
type Store interface {
	// Save stores a record. RunID must be unique.
	Save(ctx context.Context, rec *Record) error

	// List returns up to limit records, newest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteBefore removes records older than cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the n oldest records.
	DeleteOldest(ctx context.Context, n int64) (int64, error)

	Close() error
}

// StorageError is returned by Store implementations.
type StorageError struct {
	Backend   string // "sqlite" or "memory"
	Operation string // "save", "list", "delete", ...
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("history storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
