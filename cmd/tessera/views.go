package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"mercator-hq/tessera/pkg/engine"
	"mercator-hq/tessera/pkg/findings"
	"mercator-hq/tessera/pkg/history"
	"mercator-hq/tessera/pkg/rules"
)

// reportView renders one or more validation reports.
type reportView struct {
	Valid   bool             `json:"valid"`
	Reports []*engine.Report `json:"reports"`
}

func newReportView(reports []*engine.Report) *reportView {
	v := &reportView{Valid: true, Reports: reports}
	for _, r := range reports {
		if !r.IsValid() {
			v.Valid = false
		}
	}
	return v
}

func status(valid bool) string {
	if valid {
		return "VALID"
	}
	return "INVALID"
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// RenderText implements cli.TextRenderer.
func (v *reportView) RenderText(w io.Writer) error {
	for i, r := range v.Reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		name := r.Source
		if name == "" {
			name = "dataset"
		}
		res := r.Result
		fmt.Fprintf(w, "%s: %s (%s, %s, %s)\n", name, status(res.IsValid),
			plural(len(res.Errors), "error"), plural(len(res.Warnings), "warning"), plural(len(res.Fixes), "fix"))

		grouped := findings.Categorize(res)
		for _, c := range findings.Categories {
			fs := grouped[c]
			if len(fs) == 0 {
				continue
			}
			fmt.Fprintf(w, "  %s\n", c)
			for _, f := range fs {
				fmt.Fprintf(w, "    %s %s\n", marker(f.Severity), f)
			}
		}

		if rr := r.RuleResult; rr != nil {
			fmt.Fprintf(w, "  rules: %s (%s, %s, %s)\n", status(rr.IsValid),
				plural(len(rr.Errors), "error"), plural(len(rr.Warnings), "warning"), plural(len(rr.Conflicts), "conflict"))
			for _, f := range rr.Errors {
				fmt.Fprintf(w, "    %s %s\n", marker(f.Severity), f)
			}
			for _, f := range rr.Warnings {
				fmt.Fprintf(w, "    %s %s\n", marker(f.Severity), f)
			}
			for _, c := range rr.Conflicts {
				fmt.Fprintf(w, "    ⚡ %s/%s (%s, %s): %s\n", c.Rule1, c.Rule2, c.Type, c.Severity, c.Message)
			}
		}
	}
	return nil
}

func marker(s findings.Severity) string {
	if s == findings.SeverityError {
		return "✗"
	}
	return "!"
}

var findingHeader = []string{
	"source", "scope", "severity", "category", "type", "entity", "row",
	"record_id", "rule_id", "column", "message", "suggestion",
}

// Header implements cli.Tabular.
func (v *reportView) Header() []string {
	return findingHeader
}

// Rows implements cli.Tabular. Conflicts are written with scope "conflict".
func (v *reportView) Rows() [][]string {
	var rows [][]string
	add := func(source, scope string, fs []findings.Finding) {
		for _, f := range fs {
			rows = append(rows, findingRow(source, scope, f))
		}
	}
	for _, r := range v.Reports {
		add(r.Source, "dataset", r.Result.Errors)
		add(r.Source, "dataset", r.Result.Warnings)
		if rr := r.RuleResult; rr != nil {
			add(r.Source, "rules", rr.Errors)
			add(r.Source, "rules", rr.Warnings)
			for _, c := range rr.Conflicts {
				rows = append(rows, []string{
					r.Source, "conflict", string(c.Severity), "", string(c.Type), "rules", "",
					"", c.Rule1 + "," + c.Rule2, "", c.Message, "",
				})
			}
		}
	}
	return rows
}

func findingRow(source, scope string, f findings.Finding) []string {
	row := ""
	if i, ok := f.RowIndex(); ok {
		row = strconv.Itoa(i)
	}
	return []string{
		source, scope, string(f.Severity), string(findings.CategoryOf(f.Kind)), string(f.Kind),
		string(f.Entity), row, f.RecordID, f.RuleID, f.Column, f.Message, f.Suggestion,
	}
}

// ruleReportView renders a rule-only validation.
type ruleReportView struct {
	Source string        `json:"source"`
	Result *rules.Result `json:"result"`
}

// RenderText implements cli.TextRenderer.
func (v *ruleReportView) RenderText(w io.Writer) error {
	r := v.Result
	fmt.Fprintf(w, "%s: %s (%s active, %s, %s, %s)\n", v.Source, status(r.IsValid),
		plural(len(r.ApplicableRules), "rule"), plural(len(r.Errors), "error"),
		plural(len(r.Warnings), "warning"), plural(len(r.Conflicts), "conflict"))
	for _, f := range append(append([]findings.Finding(nil), r.Errors...), r.Warnings...) {
		fmt.Fprintf(w, "  %s %s\n", marker(f.Severity), f)
	}
	for _, c := range r.Conflicts {
		fmt.Fprintf(w, "  ⚡ %s/%s (%s, %s): %s\n", c.Rule1, c.Rule2, c.Type, c.Severity, c.Message)
	}
	return nil
}

// Header implements cli.Tabular.
func (v *ruleReportView) Header() []string {
	return findingHeader
}

// Rows implements cli.Tabular.
func (v *ruleReportView) Rows() [][]string {
	report := &engine.Report{
		Source:     v.Source,
		Result:     &findings.Result{},
		RuleResult: v.Result,
	}
	return (&reportView{Reports: []*engine.Report{report}}).Rows()
}

// fixView renders the outcome of tessera fix.
type fixView struct {
	Source    string          `json:"source"`
	Output    string          `json:"output,omitempty"`
	DryRun    bool            `json:"dry_run"`
	Available int             `json:"available"`
	Applied   int             `json:"applied"`
	Failed    []string        `json:"failed,omitempty"`
	After     *engine.Report  `json:"after"`
	Remaining []findings.Kind `json:"remaining_kinds,omitempty"`
}

func newFixView(source, output string, dryRun bool, fr *engine.FixReport) *fixView {
	v := &fixView{
		Source:    source,
		Output:    output,
		DryRun:    dryRun,
		Available: len(fr.Before.Fixes),
		Applied:   fr.Applied,
		After:     fr.After,
	}
	for _, err := range fr.Failures {
		v.Failed = append(v.Failed, err.Error())
	}
	seen := make(map[findings.Kind]bool)
	for _, f := range fr.After.Result.Errors {
		if !seen[f.Kind] {
			seen[f.Kind] = true
			v.Remaining = append(v.Remaining, f.Kind)
		}
	}
	return v
}

// RenderText implements cli.TextRenderer.
func (v *fixView) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "%s: applied %d of %d fixes\n", v.Source, v.Applied, v.Available)
	for _, msg := range v.Failed {
		fmt.Fprintf(w, "  ✗ %s\n", msg)
	}
	fmt.Fprintf(w, "after fixing: %s (%s, %s)\n", status(v.After.IsValid()),
		plural(len(v.After.Result.Errors), "error"), plural(len(v.After.Result.Warnings), "warning"))
	for _, f := range v.After.Result.Errors {
		fmt.Fprintf(w, "  ✗ %s\n", f)
	}
	switch {
	case v.DryRun:
		fmt.Fprintln(w, "dry run: nothing written")
	case v.Output != "":
		fmt.Fprintf(w, "wrote %s\n", v.Output)
	}
	return nil
}

// historyView renders stored run records.
type historyView struct {
	Records []*history.Record `json:"records"`
}

// RenderText implements cli.TextRenderer.
func (v *historyView) RenderText(w io.Writer) error {
	if len(v.Records) == 0 {
		fmt.Fprintln(w, "no validation runs recorded")
		return nil
	}
	for _, r := range v.Records {
		line := fmt.Sprintf("%s  %-7s  %s  %s, %s",
			r.Timestamp.Local().Format(time.DateTime), status(r.IsValid), r.RunID,
			plural(r.Errors, "error"), plural(r.Warnings, "warning"))
		if r.RuleErrors > 0 || r.RuleWarnings > 0 || r.Conflicts > 0 || r.RulesValid {
			line += fmt.Sprintf("; rules %s", strings.ToLower(status(r.RulesValid)))
		}
		if r.Source != "" {
			line += "  " + r.Source
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// Header implements cli.Tabular.
func (v *historyView) Header() []string {
	return []string{
		"run_id", "timestamp", "source", "valid", "errors", "warnings", "critical_errors",
		"fixes", "rules_valid", "rule_errors", "rule_warnings", "conflicts", "duration_ms",
	}
}

// Rows implements cli.Tabular.
func (v *historyView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Records))
	for _, r := range v.Records {
		rows = append(rows, []string{
			r.RunID,
			r.Timestamp.UTC().Format(time.RFC3339),
			r.Source,
			strconv.FormatBool(r.IsValid),
			strconv.Itoa(r.Errors),
			strconv.Itoa(r.Warnings),
			strconv.Itoa(r.CriticalErrors),
			strconv.Itoa(r.Fixes),
			strconv.FormatBool(r.RulesValid),
			strconv.Itoa(r.RuleErrors),
			strconv.Itoa(r.RuleWarnings),
			strconv.Itoa(r.Conflicts),
			strconv.FormatInt(r.Duration.Milliseconds(), 10),
		})
	}
	return rows
}
