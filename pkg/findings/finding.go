package findings

import (
	"fmt"
	"strings"

	"mercator-hq/tessera/pkg/dataset"
)

// Severity is the blocking level of a finding.
type Severity string

const (
	SeverityError   Severity = "error"   // Blocks IsValid
	SeverityWarning Severity = "warning" // Advisory only
	SeverityInfo    Severity = "info"    // Informational, never reported as error or warning
)

// Finding is a single validation issue. Row is a positional snapshot into the
// entity collection at validation time; RecordID addresses the same record by
// its stable identifier.
type Finding struct {
	Kind           Kind           `json:"type"`
	Message        string         `json:"message"`
	Severity       Severity       `json:"severity"`
	Entity         dataset.Entity `json:"entity,omitempty"`
	Row            *int           `json:"row,omitempty"`
	RecordID       string         `json:"record_id,omitempty"`
	RuleID         string         `json:"rule_id,omitempty"`
	Column         string         `json:"column,omitempty"`
	Value          any            `json:"value,omitempty"`
	Suggestion     string         `json:"suggestion,omitempty"`
	SuggestedValue any            `json:"suggested_value,omitempty"`
}

// RowIndex returns the row the finding points at, if any.
func (f Finding) RowIndex() (int, bool) {
	if f.Row == nil {
		return 0, false
	}
	return *f.Row, true
}

// String renders the finding on one line.
func (f Finding) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", f.Kind, f.Message))
	if f.Entity != "" {
		sb.WriteString(fmt.Sprintf(" (%s", f.Entity))
		if row, ok := f.RowIndex(); ok {
			sb.WriteString(fmt.Sprintf(" row %d", row))
		}
		if f.Column != "" {
			sb.WriteString(fmt.Sprintf(" column %s", f.Column))
		}
		sb.WriteString(")")
	}
	if f.RuleID != "" {
		sb.WriteString(fmt.Sprintf(" rule=%s", f.RuleID))
	}
	if f.Suggestion != "" {
		sb.WriteString(fmt.Sprintf(" = suggestion: %s", f.Suggestion))
	}
	return sb.String()
}

// Fix is a directly applicable correction: set Column of the addressed
// record to Value.
type Fix struct {
	Kind     Kind           `json:"type"`
	Message  string         `json:"message"`
	Entity   dataset.Entity `json:"entity"`
	Row      int            `json:"row"`
	RecordID string         `json:"record_id"`
	Column   string         `json:"column"`
	Value    any            `json:"value"`
}

// Summary aggregates counts over a Result.
type Summary struct {
	TotalErrors    int                  `json:"total_errors"`
	TotalWarnings  int                  `json:"total_warnings"`
	CriticalErrors int                  `json:"critical_errors"`
	EntityCounts   dataset.EntityCounts `json:"entity_counts"`
}

// Result is the immutable outcome of one dataset validation pass.
type Result struct {
	IsValid  bool      `json:"is_valid"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
	Fixes    []Fix     `json:"fixes"`
	Summary  Summary   `json:"summary"`
}

// ByKind returns the errors and warnings of the given kind, errors first.
func (r *Result) ByKind(k Kind) []Finding {
	var out []Finding
	for _, f := range r.Errors {
		if f.Kind == k {
			out = append(out, f)
		}
	}
	for _, f := range r.Warnings {
		if f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}

// HasKind reports whether any error or warning has the given kind.
func (r *Result) HasKind(k Kind) bool {
	return len(r.ByKind(k)) > 0
}

// Collector accumulates findings during a validation pass.
type Collector struct {
	errors   []Finding
	warnings []Finding
	fixes    []Fix
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		errors:   make([]Finding, 0),
		warnings: make([]Finding, 0),
		fixes:    make([]Fix, 0),
	}
}

// Error records f as an error.
func (c *Collector) Error(f Finding) {
	f.Severity = SeverityError
	c.errors = append(c.errors, f)
}

// Warning records f as a warning.
func (c *Collector) Warning(f Finding) {
	f.Severity = SeverityWarning
	c.warnings = append(c.warnings, f)
}

// Fix records a directly applicable correction.
func (c *Collector) Fix(fx Fix) {
	c.fixes = append(c.fixes, fx)
}

// Errors returns the errors recorded so far.
func (c *Collector) Errors() []Finding {
	return c.errors
}

// Warnings returns the warnings recorded so far.
func (c *Collector) Warnings() []Finding {
	return c.warnings
}

// Result builds the Result for the recorded findings.
func (c *Collector) Result(counts dataset.EntityCounts) *Result {
	critical := 0
	for _, f := range c.errors {
		if IsCritical(f.Kind) {
			critical++
		}
	}

	return &Result{
		IsValid:  len(c.errors) == 0,
		Errors:   c.errors,
		Warnings: c.warnings,
		Fixes:    c.fixes,
		Summary: Summary{
			TotalErrors:    len(c.errors),
			TotalWarnings:  len(c.warnings),
			CriticalErrors: critical,
			EntityCounts:   counts,
		},
	}
}

// Row returns a pointer to row for use in Finding literals.
func Row(row int) *int {
	return &row
}
