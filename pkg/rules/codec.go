package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mercator-hq/tessera/pkg/dataset"
)

// document is the flat wire form of a rule. Type selects which payload
// fields are read.
type document struct {
	ID          string     `yaml:"id" json:"id"`
	Type        Type       `yaml:"type" json:"type"`
	Name        string     `yaml:"name,omitempty" json:"name,omitempty"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	IsActive    *bool      `yaml:"isActive,omitempty" json:"isActive,omitempty"` // Pointer to distinguish unset vs false
	Priority    int        `yaml:"priority,omitempty" json:"priority,omitempty"`
	CreatedAt   *time.Time `yaml:"createdAt,omitempty" json:"createdAt,omitempty"`

	// coRun
	TaskIDs []string `yaml:"taskIds,omitempty" json:"taskIds,omitempty"`

	// slotRestriction, loadLimit
	GroupType        string `yaml:"groupType,omitempty" json:"groupType,omitempty"`
	GroupID          string `yaml:"groupId,omitempty" json:"groupId,omitempty"`
	ClientGroup      string `yaml:"clientGroup,omitempty" json:"clientGroup,omitempty"`
	WorkerGroup      string `yaml:"workerGroup,omitempty" json:"workerGroup,omitempty"`
	MinCommonSlots   int    `yaml:"minCommonSlots,omitempty" json:"minCommonSlots,omitempty"`
	Phases           []int  `yaml:"phases,omitempty" json:"phases,omitempty"`
	MaxSlotsPerPhase int    `yaml:"maxSlotsPerPhase,omitempty" json:"maxSlotsPerPhase,omitempty"`

	// phaseWindow
	TaskID           string `yaml:"taskId,omitempty" json:"taskId,omitempty"`
	AllowedPhases    []int  `yaml:"allowedPhases,omitempty" json:"allowedPhases,omitempty"`
	RestrictedPhases []int  `yaml:"restrictedPhases,omitempty" json:"restrictedPhases,omitempty"`

	// patternMatch
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Field   string `yaml:"field,omitempty" json:"field,omitempty"`
	Entity  string `yaml:"entity,omitempty" json:"entity,omitempty"`
	Action  string `yaml:"action,omitempty" json:"action,omitempty"`

	// precedenceOverride
	GlobalRuleID       string         `yaml:"globalRuleId,omitempty" json:"globalRuleId,omitempty"`
	SpecificConditions map[string]any `yaml:"specificConditions,omitempty" json:"specificConditions,omitempty"`
	OverrideAction     string         `yaml:"overrideAction,omitempty" json:"overrideAction,omitempty"`
}

// ruleFile is the top-level shape of a rules document.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

func (d *document) toRule() (Rule, error) {
	r := Rule{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive == nil || *d.IsActive,
		Priority:    d.Priority,
	}
	if d.CreatedAt != nil {
		r.CreatedAt = *d.CreatedAt
	}

	switch d.Type {
	case TypeCoRun:
		r.Spec = CoRun{TaskIDs: d.TaskIDs}
	case TypeSlotRestriction:
		s := SlotRestriction{
			ClientGroup:    d.ClientGroup,
			WorkerGroup:    d.WorkerGroup,
			MinCommonSlots: d.MinCommonSlots,
			Phases:         d.Phases,
		}
		switch strings.ToLower(strings.TrimSpace(d.GroupType)) {
		case "":
		case "client":
			s.ClientGroup = d.GroupID
		case "worker":
			s.WorkerGroup = d.GroupID
		default:
			return Rule{}, fmt.Errorf("rule %q: unknown groupType %q (valid: client, worker)", d.ID, d.GroupType)
		}
		r.Spec = s
	case TypeLoadLimit:
		r.Spec = LoadLimit{WorkerGroup: d.WorkerGroup, MaxSlotsPerPhase: d.MaxSlotsPerPhase}
	case TypePhaseWindow:
		r.Spec = PhaseWindow{TaskID: d.TaskID, AllowedPhases: d.AllowedPhases, RestrictedPhases: d.RestrictedPhases}
	case TypePatternMatch:
		r.Spec = PatternMatch{Pattern: d.Pattern, Field: d.Field, Entity: dataset.Entity(d.Entity), Action: d.Action}
	case TypePrecedenceOverride:
		r.Spec = PrecedenceOverride{
			GlobalRuleID:       d.GlobalRuleID,
			SpecificConditions: d.SpecificConditions,
			OverrideAction:     d.OverrideAction,
		}
	case "":
		return Rule{}, fmt.Errorf("rule %q: missing type", d.ID)
	default:
		return Rule{}, fmt.Errorf("rule %q: unknown rule type %q", d.ID, d.Type)
	}
	return r, nil
}

func fromRule(r Rule) (*document, error) {
	active := r.IsActive
	d := &document{
		ID:          r.ID,
		Type:        r.Type(),
		Name:        r.Name,
		Description: r.Description,
		IsActive:    &active,
		Priority:    r.Priority,
	}
	if !r.CreatedAt.IsZero() {
		t := r.CreatedAt
		d.CreatedAt = &t
	}

	switch s := r.spec().(type) {
	case CoRun:
		d.TaskIDs = s.TaskIDs
	case SlotRestriction:
		d.ClientGroup = s.ClientGroup
		d.WorkerGroup = s.WorkerGroup
		d.MinCommonSlots = s.MinCommonSlots
		d.Phases = s.Phases
	case LoadLimit:
		d.WorkerGroup = s.WorkerGroup
		d.MaxSlotsPerPhase = s.MaxSlotsPerPhase
	case PhaseWindow:
		d.TaskID = s.TaskID
		d.AllowedPhases = s.AllowedPhases
		d.RestrictedPhases = s.RestrictedPhases
	case PatternMatch:
		d.Pattern = s.Pattern
		d.Field = s.Field
		d.Entity = string(s.Entity)
		d.Action = s.Action
	case PrecedenceOverride:
		d.GlobalRuleID = s.GlobalRuleID
		d.SpecificConditions = s.SpecificConditions
		d.OverrideAction = s.OverrideAction
	case nil:
		return nil, fmt.Errorf("rule %q: missing spec", r.ID)
	default:
		panic(fmt.Sprintf("rules: unhandled spec type %T", s))
	}
	return d, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	var d document
	if err := value.Decode(&d); err != nil {
		return err
	}
	decoded, err := d.toRule()
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*r = decoded
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r Rule) MarshalYAML() (interface{}, error) {
	return fromRule(r)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var d document
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	decoded, err := d.toRule()
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Rule) MarshalJSON() ([]byte, error) {
	d, err := fromRule(r)
	if err != nil {
		return nil, err
	}
	return json.Marshal(d)
}

// Decode parses a YAML or JSON rules document. The document is either a list
// of rules or a mapping with a "rules" key. Rules without isActive are
// active.
func Decode(data []byte) ([]Rule, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}
	if len(root.Content) == 0 {
		return []Rule{}, nil
	}

	doc := root.Content[0]
	var rules []Rule
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&rules); err != nil {
			return nil, fmt.Errorf("failed to decode rules: %w", err)
		}
	case yaml.MappingNode:
		var f ruleFile
		if err := doc.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode rules: %w", err)
		}
		rules = f.Rules
	default:
		return nil, fmt.Errorf("failed to decode rules: expected a list or a mapping with a rules key")
	}

	if rules == nil {
		rules = []Rule{}
	}
	return rules, nil
}

// LoadFile reads a rules document from path.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %q: %w", path, err)
	}
	rules, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// SaveFile writes rules to path as a mapping with a "rules" key. Files ending
// in .json are written as indented JSON, everything else as YAML.
func SaveFile(path string, rules []Rule) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(map[string][]Rule{"rules": rules}, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	} else {
		data, err = yaml.Marshal(ruleFile{Rules: rules})
	}
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write rules file %q: %w", path, err)
	}
	return nil
}
