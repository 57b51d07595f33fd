package rules

import (
	"fmt"
	"strings"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/findings"
	"mercator-hq/tessera/pkg/parse"
)

// Option configures a Validator.
type Option func(*Validator)

// WithPhaseBounds sets the phase range SlotRestriction phases are expected
// to fall in. Phases outside it produce warnings.
func WithPhaseBounds(min, max int) Option {
	return func(v *Validator) {
		v.phaseMin = min
		v.phaseMax = max
	}
}

// Validator checks business rules against a dataset and against each other.
// It holds configuration only and is safe for concurrent use.
type Validator struct {
	phaseMin int
	phaseMax int
}

// NewValidator creates a rule validator. The default SlotRestriction phase
// bounds are [1, 50].
func NewValidator(opts ...Option) *Validator {
	v := &Validator{phaseMin: 1, phaseMax: 50}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Result is the outcome of one rule validation pass. Conflicts are reported
// separately and do not affect IsValid.
type Result struct {
	IsValid         bool               `json:"is_valid"`
	Errors          []findings.Finding `json:"errors"`
	Warnings        []findings.Finding `json:"warnings"`
	ApplicableRules []Rule             `json:"applicable_rules"`
	Conflicts       []Conflict         `json:"conflicting_rules"`
}

// Validate checks the active rules in rules. Inactive rules are ignored by
// every check, but still count as known IDs for precedence overrides.
func (v *Validator) Validate(rules []Rule, ds *dataset.DataSet) *Result {
	if ds == nil {
		ds = &dataset.DataSet{}
	}
	p := newRulePass(v, rules, ds)

	active := Active(rules)
	p.checkIdentity(active)
	for _, r := range active {
		p.checkRule(r)
	}

	return &Result{
		IsValid:         len(p.out.Errors()) == 0,
		Errors:          p.out.Errors(),
		Warnings:        p.out.Warnings(),
		ApplicableRules: active,
		Conflicts:       detectConflicts(active),
	}
}

// rulePass carries the dataset indexes of a single Validate call.
type rulePass struct {
	v   *Validator
	ds  *dataset.DataSet
	out *findings.Collector

	ruleIDs      []string
	taskRows     map[string]int
	clientGroups map[string]struct{}
	workerGroups map[string][]int
}

func newRulePass(v *Validator, rules []Rule, ds *dataset.DataSet) *rulePass {
	p := &rulePass{
		v:            v,
		ds:           ds,
		out:          findings.NewCollector(),
		taskRows:     make(map[string]int, len(ds.Tasks)),
		clientGroups: make(map[string]struct{}),
		workerGroups: make(map[string][]int),
	}

	for _, r := range rules {
		if id := strings.TrimSpace(r.ID); id != "" {
			p.ruleIDs = append(p.ruleIDs, id)
		}
	}
	for row, t := range ds.Tasks {
		id := strings.TrimSpace(t.TaskID)
		if _, seen := p.taskRows[id]; id != "" && !seen {
			p.taskRows[id] = row
		}
	}
	for _, c := range ds.Clients {
		if g := strings.TrimSpace(c.GroupTag); g != "" {
			p.clientGroups[g] = struct{}{}
		}
	}
	for row, w := range ds.Workers {
		if g := strings.TrimSpace(w.WorkerGroup); g != "" {
			p.workerGroups[g] = append(p.workerGroups[g], row)
		}
	}
	return p
}

// finding returns a finding addressed at a rule.
func (p *rulePass) finding(r Rule, kind findings.Kind, column, message string) findings.Finding {
	return findings.Finding{
		Kind:    kind,
		Message: message,
		Entity:  dataset.EntityRules,
		RuleID:  r.ID,
		Column:  column,
	}
}

func (p *rulePass) errorf(r Rule, kind findings.Kind, column, format string, args ...any) {
	p.out.Error(p.finding(r, kind, column, fmt.Sprintf(format, args...)))
}

func (p *rulePass) warnf(r Rule, kind findings.Kind, column, format string, args ...any) {
	p.out.Warning(p.finding(r, kind, column, fmt.Sprintf(format, args...)))
}

// checkIdentity requires every active rule to carry a unique ID.
func (p *rulePass) checkIdentity(active []Rule) {
	counts := make(map[string]int, len(active))
	for _, r := range active {
		if id := strings.TrimSpace(r.ID); id != "" {
			counts[id]++
		}
	}
	for i, r := range active {
		id := strings.TrimSpace(r.ID)
		switch {
		case id == "":
			p.errorf(r, findings.KindMissingRuleID, "id", "Rule #%d (%s) has no id", i+1, displayName(r))
		case counts[id] > 1:
			f := p.finding(r, findings.KindDuplicateRuleID, "id",
				fmt.Sprintf("Duplicate rule id %q (appears %d times)", id, counts[id]))
			f.Value = id
			p.out.Error(f)
		}
	}
}

// checkRule dispatches on the rule type.
func (p *rulePass) checkRule(r Rule) {
	switch s := r.spec().(type) {
	case CoRun:
		p.checkCoRun(r, s)
	case SlotRestriction:
		p.checkSlotRestriction(r, s)
	case LoadLimit:
		p.checkLoadLimit(r, s)
	case PhaseWindow:
		p.checkPhaseWindow(r, s)
	case PatternMatch:
		p.checkPatternMatch(r, s)
	case PrecedenceOverride:
		p.checkPrecedenceOverride(r, s)
	case nil:
		p.errorf(r, findings.KindMissingRuleSpec, "type", "Rule %s has no type-specific definition", displayName(r))
	default:
		panic(fmt.Sprintf("rules: unhandled spec type %T", s))
	}
}

// taskPhases returns the parsed preferred phases of the task with id.
func (p *rulePass) taskPhases(id string) []int {
	row, ok := p.taskRows[id]
	if !ok {
		return nil
	}
	phases, _ := parse.ParsePhaseList(p.ds.Tasks[row].PreferredPhases)
	return phases
}

func displayName(r Rule) string {
	switch {
	case strings.TrimSpace(r.Name) != "":
		return fmt.Sprintf("%q", r.Name)
	case strings.TrimSpace(r.ID) != "":
		return r.ID
	default:
		return "(unnamed)"
	}
}

func trimmed(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func intersect(a, b []int) []int {
	set := parse.PhaseSet(b)
	var out []int
	seen := make(map[int]struct{})
	for _, n := range a {
		if _, ok := set[n]; !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
