package rules

import (
	"time"

	"mercator-hq/tessera/pkg/dataset"
)

// Type is the discriminator of a rule document.
type Type string

const (
	TypeCoRun              Type = "coRun"
	TypeSlotRestriction    Type = "slotRestriction"
	TypeLoadLimit          Type = "loadLimit"
	TypePhaseWindow        Type = "phaseWindow"
	TypePatternMatch       Type = "patternMatch"
	TypePrecedenceOverride Type = "precedenceOverride"
)

// Types lists every supported rule type.
var Types = []Type{
	TypeCoRun,
	TypeSlotRestriction,
	TypeLoadLimit,
	TypePhaseWindow,
	TypePatternMatch,
	TypePrecedenceOverride,
}

// Rule is a scheduling or allocation rule. The common metadata lives on Rule;
// the type-specific payload is Spec.
type Rule struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	Priority    int
	CreatedAt   time.Time
	Spec        Spec
}

// Type returns the rule type, or "" when Spec is nil.
func (r Rule) Type() Type {
	s := r.spec()
	if s == nil {
		return ""
	}
	return s.ruleType()
}

// spec returns Spec with pointer variants dereferenced, so every type switch
// sees value types. A nil pointer yields nil.
func (r Rule) spec() Spec {
	switch s := r.Spec.(type) {
	case *CoRun:
		if s != nil {
			return *s
		}
	case *SlotRestriction:
		if s != nil {
			return *s
		}
	case *LoadLimit:
		if s != nil {
			return *s
		}
	case *PhaseWindow:
		if s != nil {
			return *s
		}
	case *PatternMatch:
		if s != nil {
			return *s
		}
	case *PrecedenceOverride:
		if s != nil {
			return *s
		}
	default:
		return s
	}
	return nil
}

// Spec is the closed set of rule payloads. Only types in this package
// implement it. Pointers to the payload types are accepted and treated as
// their values.
type Spec interface {
	ruleType() Type
}

// CoRun requires the listed tasks to be scheduled together.
type CoRun struct {
	TaskIDs []string
}

// SlotRestriction requires the members of a client or worker group to share
// at least MinCommonSlots phases. Exactly one of ClientGroup and WorkerGroup
// is set.
type SlotRestriction struct {
	ClientGroup    string
	WorkerGroup    string
	MinCommonSlots int
	Phases         []int
}

// LoadLimit caps the slots per phase a worker group may be allocated.
type LoadLimit struct {
	WorkerGroup      string
	MaxSlotsPerPhase int
}

// PhaseWindow restricts a task to AllowedPhases and excludes it from
// RestrictedPhases.
type PhaseWindow struct {
	TaskID           string
	AllowedPhases    []int
	RestrictedPhases []int
}

// PatternMatch applies Action to every record of Entity whose Field matches
// the regular expression Pattern. Matching is case-insensitive.
type PatternMatch struct {
	Pattern string
	Field   string
	Entity  dataset.Entity
	Action  string
}

// PrecedenceOverride replaces the action of a global rule when
// SpecificConditions hold.
type PrecedenceOverride struct {
	GlobalRuleID       string
	SpecificConditions map[string]any
	OverrideAction     string
}

func (CoRun) ruleType() Type              { return TypeCoRun }
func (SlotRestriction) ruleType() Type    { return TypeSlotRestriction }
func (LoadLimit) ruleType() Type          { return TypeLoadLimit }
func (PhaseWindow) ruleType() Type        { return TypePhaseWindow }
func (PatternMatch) ruleType() Type       { return TypePatternMatch }
func (PrecedenceOverride) ruleType() Type { return TypePrecedenceOverride }

// PatternFields lists the columns a PatternMatch rule may target per entity.
var PatternFields = map[dataset.Entity][]string{
	dataset.EntityClients: {"ClientID", "ClientName", "GroupTag", "AttributesJSON"},
	dataset.EntityWorkers: {"WorkerID", "WorkerName", "Skills", "WorkerGroup"},
	dataset.EntityTasks:   {"TaskID", "TaskName", "Category", "RequiredSkills"},
}

// Active returns the active rules in input order.
func Active(rules []Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out
}
