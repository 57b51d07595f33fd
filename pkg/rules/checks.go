package rules

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/findings"
	"mercator-hq/tessera/pkg/parse"
)

// checkCoRun requires at least two existing tasks and warns when their
// preferred phases cannot coincide.
func (p *rulePass) checkCoRun(r Rule, s CoRun) {
	ids := trimmed(s.TaskIDs)
	if len(ids) < 2 {
		f := p.finding(r, findings.KindInvalidCoRunTasks, "taskIds",
			fmt.Sprintf("Co-run rule %s needs at least 2 tasks, has %d", displayName(r), len(ids)))
		f.Value = ids
		p.out.Error(f)
	}

	var missing []string
	for _, id := range ids {
		if _, ok := p.taskRows[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		f := p.finding(r, findings.KindMissingCoRunTasks, "taskIds",
			fmt.Sprintf("Co-run rule %s references unknown tasks: %s", displayName(r), strings.Join(missing, ", ")))
		f.Value = missing
		p.out.Error(f)
	}

	var common []int
	constrained := 0
	for _, id := range ids {
		phases := p.taskPhases(id)
		if len(phases) == 0 {
			continue
		}
		if constrained == 0 {
			common = phases
		} else {
			common = intersect(common, phases)
		}
		constrained++
	}
	if constrained >= 2 && len(common) == 0 {
		p.warnf(r, findings.KindCoRunPhaseConflict, "taskIds",
			"Tasks in co-run rule %s have no preferred phase in common", displayName(r))
	}
}

// checkSlotRestriction validates the target group, the slot minimum and the
// phase bounds.
func (p *rulePass) checkSlotRestriction(r Rule, s SlotRestriction) {
	client := strings.TrimSpace(s.ClientGroup)
	worker := strings.TrimSpace(s.WorkerGroup)

	switch {
	case (client == "") == (worker == ""):
		p.errorf(r, findings.KindMissingRestrictionTarget, "groupId",
			"Slot restriction %s must target exactly one of a client group or a worker group", displayName(r))
	case client != "":
		if _, ok := p.clientGroups[client]; !ok {
			f := p.finding(r, findings.KindMissingClientGroup, "clientGroup",
				fmt.Sprintf("Client group %q in rule %s matches no client", client, displayName(r)))
			f.Value = client
			f.Suggestion = findings.SuggestName(client, sortedKeys(p.clientGroups))
			p.out.Error(f)
		}
	default:
		if _, ok := p.workerGroups[worker]; !ok {
			f := p.finding(r, findings.KindMissingWorkerGroup, "workerGroup",
				fmt.Sprintf("Worker group %q in rule %s matches no worker", worker, displayName(r)))
			f.Value = worker
			f.Suggestion = findings.SuggestName(worker, p.workerGroupNames())
			p.out.Error(f)
		}
	}

	if s.MinCommonSlots < 1 {
		f := p.finding(r, findings.KindInvalidMinSlots, "minCommonSlots",
			fmt.Sprintf("minCommonSlots must be at least 1, got %d", s.MinCommonSlots))
		f.Value = s.MinCommonSlots
		f.SuggestedValue = 1
		p.out.Error(f)
	}

	for _, phase := range s.Phases {
		if phase < p.v.phaseMin || phase > p.v.phaseMax {
			f := p.finding(r, findings.KindPhaseOutOfBounds, "phases",
				fmt.Sprintf("Phase %d in rule %s is outside [%d,%d]", phase, displayName(r), p.v.phaseMin, p.v.phaseMax))
			f.Value = phase
			p.out.Warning(f)
		}
	}

	rows, ok := p.workerGroups[worker]
	if client != "" || !ok || s.MinCommonSlots < 1 {
		return
	}
	var common []int
	for i, row := range rows {
		slots, _ := parse.ParsePhaseList(p.ds.Workers[row].AvailableSlots)
		if i == 0 {
			common = slots
		} else {
			common = intersect(common, slots)
		}
	}
	if n := len(parse.PhaseSet(common)); n < s.MinCommonSlots {
		f := p.finding(r, findings.KindInsufficientCommonSlots, "minCommonSlots",
			fmt.Sprintf("Workers in group %q share %d common slots, rule %s requires %d", worker, n, displayName(r), s.MinCommonSlots))
		f.Value = s.MinCommonSlots
		f.SuggestedValue = n
		p.out.Warning(f)
	}
}

// checkLoadLimit validates the target group and compares the limit against
// the group's capacity.
func (p *rulePass) checkLoadLimit(r Rule, s LoadLimit) {
	group := strings.TrimSpace(s.WorkerGroup)
	if group == "" {
		p.errorf(r, findings.KindMissingLoadTarget, "workerGroup", "Load limit %s has no worker group", displayName(r))
	}
	if s.MaxSlotsPerPhase < 1 {
		f := p.finding(r, findings.KindInvalidMaxSlots, "maxSlotsPerPhase",
			fmt.Sprintf("maxSlotsPerPhase must be at least 1, got %d", s.MaxSlotsPerPhase))
		f.Value = s.MaxSlotsPerPhase
		f.SuggestedValue = 1
		p.out.Error(f)
	}
	if group == "" {
		return
	}

	rows, ok := p.workerGroups[group]
	if !ok {
		f := p.finding(r, findings.KindMissingWorkerGroup, "workerGroup",
			fmt.Sprintf("Worker group %q in rule %s matches no worker", group, displayName(r)))
		f.Value = group
		f.Suggestion = findings.SuggestName(group, p.workerGroupNames())
		p.out.Error(f)
		return
	}

	capacity := 0
	for _, row := range rows {
		capacity += p.ds.Workers[row].MaxLoadPerPhase
	}
	if s.MaxSlotsPerPhase > capacity {
		f := p.finding(r, findings.KindExcessiveLoadLimit, "maxSlotsPerPhase",
			fmt.Sprintf("Load limit %d for group %q exceeds its total capacity of %d", s.MaxSlotsPerPhase, group, capacity))
		f.Value = s.MaxSlotsPerPhase
		f.SuggestedValue = capacity
		f.Suggestion = fmt.Sprintf("Group %q can take at most %d slots per phase", group, capacity)
		p.out.Warning(f)
	}
}

// checkPhaseWindow validates the target task and the allowed and restricted
// phase sets.
func (p *rulePass) checkPhaseWindow(r Rule, s PhaseWindow) {
	id := strings.TrimSpace(s.TaskID)
	if _, ok := p.taskRows[id]; !ok {
		f := p.finding(r, findings.KindMissingTask, "taskId",
			fmt.Sprintf("Phase window %s targets unknown task %q", displayName(r), id))
		f.Value = id
		f.Suggestion = findings.SuggestName(id, sortedKeys(p.taskIDSet()))
		p.out.Error(f)
		return
	}

	if len(s.AllowedPhases) == 0 {
		p.errorf(r, findings.KindNoAllowedPhases, "allowedPhases",
			"Phase window %s allows no phases", displayName(r))
	} else if preferred := p.taskPhases(id); len(preferred) > 0 && len(intersect(preferred, s.AllowedPhases)) == 0 {
		f := p.finding(r, findings.KindPhasePreferenceConflict, "allowedPhases",
			fmt.Sprintf("Allowed phases %s of rule %s do not overlap task %s preferred phases %s",
				parse.FormatBracketed(s.AllowedPhases), displayName(r), id, parse.FormatBracketed(preferred)))
		f.Value = s.AllowedPhases
		p.out.Warning(f)
	}

	if both := intersect(s.AllowedPhases, s.RestrictedPhases); len(both) > 0 {
		sort.Ints(both)
		f := p.finding(r, findings.KindConflictingPhases, "restrictedPhases",
			fmt.Sprintf("Phases %s are both allowed and restricted in rule %s", parse.FormatBracketed(both), displayName(r)))
		f.Value = both
		p.out.Error(f)
	}
}

// checkPatternMatch compiles the pattern, validates the target column and
// warns when nothing matches.
func (p *rulePass) checkPatternMatch(r Rule, s PatternMatch) {
	var re *regexp.Regexp
	if strings.TrimSpace(s.Pattern) == "" {
		p.errorf(r, findings.KindInvalidPattern, "pattern", "Pattern rule %s has an empty pattern", displayName(r))
	} else {
		var err error
		if re, err = regexp.Compile("(?i)" + s.Pattern); err != nil {
			f := p.finding(r, findings.KindInvalidPattern, "pattern",
				fmt.Sprintf("Pattern %q in rule %s is not a valid regular expression: %v", s.Pattern, displayName(r), err))
			f.Value = s.Pattern
			p.out.Error(f)
		}
	}

	entity, err := dataset.ParseEntity(string(s.Entity))
	if err != nil {
		f := p.finding(r, findings.KindInvalidEntity, "entity",
			fmt.Sprintf("Pattern rule %s targets unknown entity %q", displayName(r), s.Entity))
		f.Value = string(s.Entity)
		f.Suggestion = findings.SuggestName(string(s.Entity), []string{"clients", "workers", "tasks"})
		p.out.Error(f)
		return
	}

	fields := PatternFields[entity]
	if !slices.Contains(fields, s.Field) {
		f := p.finding(r, findings.KindInvalidField, "field",
			fmt.Sprintf("Field %q cannot be matched on %s (valid: %s)", s.Field, entity, strings.Join(fields, ", ")))
		f.Value = s.Field
		f.Suggestion = findings.SuggestName(s.Field, fields)
		p.out.Error(f)
		return
	}
	if re == nil {
		return
	}

	for row := 0; row < p.ds.Len(entity); row++ {
		value, err := p.ds.FieldValue(entity, row, s.Field)
		if err == nil && re.MatchString(value) {
			return
		}
	}
	f := p.finding(r, findings.KindNoPatternMatches, "pattern",
		fmt.Sprintf("Pattern %q matches no %s by %s", s.Pattern, entity, s.Field))
	f.Value = s.Pattern
	p.out.Warning(f)
}

// checkPrecedenceOverride requires the three override fields and warns when
// the overridden rule is unknown.
func (p *rulePass) checkPrecedenceOverride(r Rule, s PrecedenceOverride) {
	global := strings.TrimSpace(s.GlobalRuleID)
	if global == "" {
		p.errorf(r, findings.KindMissingGlobalRule, "globalRuleId",
			"Precedence override %s has no globalRuleId", displayName(r))
	} else if !slices.Contains(p.ruleIDs, global) {
		f := p.finding(r, findings.KindUnknownGlobalRule, "globalRuleId",
			fmt.Sprintf("Precedence override %s refers to unknown rule %q", displayName(r), global))
		f.Value = global
		f.Suggestion = findings.SuggestName(global, p.ruleIDs)
		p.out.Warning(f)
	}
	if len(s.SpecificConditions) == 0 {
		p.errorf(r, findings.KindMissingConditions, "specificConditions",
			"Precedence override %s has no specificConditions", displayName(r))
	}
	if strings.TrimSpace(s.OverrideAction) == "" {
		p.errorf(r, findings.KindMissingOverrideAction, "overrideAction",
			"Precedence override %s has no overrideAction", displayName(r))
	}
}

func (p *rulePass) workerGroupNames() []string {
	names := make([]string, 0, len(p.workerGroups))
	for g := range p.workerGroups {
		names = append(names, g)
	}
	sort.Strings(names)
	return names
}

func (p *rulePass) taskIDSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.taskRows))
	for id := range p.taskRows {
		set[id] = struct{}{}
	}
	return set
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
