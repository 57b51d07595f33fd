package validator

import (
	"strings"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/findings"
	"mercator-hq/tessera/pkg/parse"
)

// Limits holds the numeric bounds the validator enforces.
type Limits struct {
	// PriorityMin and PriorityMax bound Client.PriorityLevel.
	PriorityMin int
	PriorityMax int

	// QualificationMin and QualificationMax bound Worker.QualificationLevel.
	QualificationMin int
	QualificationMax int

	// DurationWarnAbove flags Task.Duration values above it as unusual.
	DurationWarnAbove int

	// MaxLoadWarnAbove flags Worker.MaxLoadPerPhase values above it as unusual.
	MaxLoadWarnAbove int

	// PhaseMin and PhaseMax bound the phases referenced anywhere in the data.
	// Phases outside the range produce advisory warnings.
	PhaseMin int
	PhaseMax int
}

// DefaultLimits returns the standard bounds.
func DefaultLimits() Limits {
	return Limits{
		PriorityMin:       1,
		PriorityMax:       5,
		QualificationMin:  1,
		QualificationMax:  5,
		DurationWarnAbove: 10,
		MaxLoadWarnAbove:  20,
		PhaseMin:          1,
		PhaseMax:          20,
	}
}

// Option configures a Validator.
type Option func(*Validator)

// WithLimits overrides the default bounds.
func WithLimits(l Limits) Option {
	return func(v *Validator) {
		v.limits = l
	}
}

// Validator runs the dataset checks. A Validator holds configuration only and
// is safe for concurrent use; every call to Validate allocates its own state.
type Validator struct {
	limits Limits
}

// New creates a validator with the given options.
func New(opts ...Option) *Validator {
	v := &Validator{limits: DefaultLimits()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Limits returns the bounds in effect.
func (v *Validator) Limits() Limits {
	return v.limits
}

// Validate runs every check over ds in a fixed order and returns a fresh
// result. ds is not modified.
func (v *Validator) Validate(ds *dataset.DataSet) *findings.Result {
	if ds == nil {
		ds = &dataset.DataSet{}
	}
	p := newPass(ds, v.limits)

	p.checkRequiredFields()
	p.checkDuplicateIDs()
	p.checkRanges()
	p.checkMalformedLists()
	p.checkJSON()
	p.checkReferences()
	p.checkSkillCoverage()
	p.checkWorkerOverload()
	p.checkMaxConcurrency()
	p.checkPhaseSaturation()
	p.checkPhaseRange()
	p.checkAdvisories()

	return p.out.Result(ds.Counts())
}

// pass carries the state of a single Validate call. Lists are parsed once up
// front and shared by every check.
type pass struct {
	ds     *dataset.DataSet
	limits Limits
	out    *findings.Collector

	workerSlots    [][]int
	workerSlotErrs [][]parse.TokenError
	workerSkills   []map[string]struct{}
	taskPhases     [][]int
	taskPhaseErrs  [][]parse.TokenError
	taskSkills     [][]string
}

func newPass(ds *dataset.DataSet, limits Limits) *pass {
	p := &pass{
		ds:             ds,
		limits:         limits,
		out:            findings.NewCollector(),
		workerSlots:    make([][]int, len(ds.Workers)),
		workerSlotErrs: make([][]parse.TokenError, len(ds.Workers)),
		workerSkills:   make([]map[string]struct{}, len(ds.Workers)),
		taskPhases:     make([][]int, len(ds.Tasks)),
		taskPhaseErrs:  make([][]parse.TokenError, len(ds.Tasks)),
		taskSkills:     make([][]string, len(ds.Tasks)),
	}

	for i, w := range ds.Workers {
		p.workerSlots[i], p.workerSlotErrs[i] = parse.ParsePhaseList(w.AvailableSlots)
		p.workerSkills[i] = parse.FoldSet(w.Skills)
	}
	for i, t := range ds.Tasks {
		p.taskPhases[i], p.taskPhaseErrs[i] = parse.ParsePhaseList(t.PreferredPhases)
		p.taskSkills[i] = distinctFold(parse.ParseCommaList(t.RequiredSkills))
	}
	return p
}

// at returns a finding addressed at a record.
func (p *pass) at(e dataset.Entity, row int, kind findings.Kind, column, message string) findings.Finding {
	return findings.Finding{
		Kind:     kind,
		Message:  message,
		Entity:   e,
		Row:      findings.Row(row),
		RecordID: p.ds.RecordID(e, row),
		Column:   column,
	}
}

// fix records a directly applicable correction for a record.
func (p *pass) fix(e dataset.Entity, row int, kind findings.Kind, column string, value any, message string) {
	p.out.Fix(findings.Fix{
		Kind:     kind,
		Message:  message,
		Entity:   e,
		Row:      row,
		RecordID: p.ds.RecordID(e, row),
		Column:   column,
		Value:    value,
	})
}

// distinctFold removes case-insensitive duplicates, keeping the first spelling.
func distinctFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func displayID(id string) string {
	if strings.TrimSpace(id) == "" {
		return "(blank)"
	}
	return id
}
