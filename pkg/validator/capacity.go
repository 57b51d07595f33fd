package validator

import (
	"fmt"
	"sort"
	"strings"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/findings"
	"mercator-hq/tessera/pkg/parse"
)

// checkWorkerOverload flags workers whose per-phase load exceeds the number
// of parsed entries in their AvailableSlots. Repeated phases count each time.
func (p *pass) checkWorkerOverload() {
	for row, w := range p.ds.Workers {
		slots := len(p.workerSlots[row])
		if slots == 0 || slots >= w.MaxLoadPerPhase {
			continue
		}

		f := p.at(dataset.EntityWorkers, row, findings.KindWorkerOverload, "MaxLoadPerPhase",
			fmt.Sprintf("Worker %s has MaxLoadPerPhase %d but only %d available slots",
				displayID(w.WorkerID), w.MaxLoadPerPhase, slots))
		f.Value = w.MaxLoadPerPhase
		f.SuggestedValue = slots
		f.Suggestion = fmt.Sprintf("Set MaxLoadPerPhase to %d", slots)
		p.out.Error(f)
		p.fix(dataset.EntityWorkers, row, findings.KindWorkerOverload, "MaxLoadPerPhase", slots, f.Suggestion)
	}
}

// checkMaxConcurrency flags tasks that allow more concurrent assignments than
// there are workers holding all of their required skills.
func (p *pass) checkMaxConcurrency() {
	for row, t := range p.ds.Tasks {
		qualified := 0
		for _, skills := range p.workerSkills {
			if hasAll(skills, p.taskSkills[row]) {
				qualified++
			}
		}
		if t.MaxConcurrent <= qualified {
			continue
		}

		f := p.at(dataset.EntityTasks, row, findings.KindMaxConcurrencyInfeasible, "MaxConcurrent",
			fmt.Sprintf("Task %s allows %d concurrent workers but only %d are qualified",
				displayID(t.TaskID), t.MaxConcurrent, qualified))
		f.Value = t.MaxConcurrent
		f.SuggestedValue = qualified
		f.Suggestion = fmt.Sprintf("Set MaxConcurrent to %d", qualified)
		p.out.Error(f)

		// MaxConcurrent must stay >= 1; with no qualified workers the
		// skill_coverage finding is the actionable one.
		if qualified > 0 {
			p.fix(dataset.EntityTasks, row, findings.KindMaxConcurrencyInfeasible, "MaxConcurrent", qualified, f.Suggestion)
		}
	}
}

func hasAll(have map[string]struct{}, need []string) bool {
	for _, s := range need {
		if _, ok := have[strings.ToLower(s)]; !ok {
			return false
		}
	}
	return true
}

// checkPhaseSaturation compares per-phase worker capacity against per-phase
// task demand. Tasks without preferred phases count against every known phase.
func (p *pass) checkPhaseSaturation() {
	capacity := make(map[int]int)
	for row, w := range p.ds.Workers {
		for phase := range parse.PhaseSet(p.workerSlots[row]) {
			capacity[phase] += w.MaxLoadPerPhase
		}
	}

	demand := make(map[int]int)
	known := make(map[int]struct{}, len(capacity))
	for phase := range capacity {
		known[phase] = struct{}{}
	}
	floating := 0
	for row, t := range p.ds.Tasks {
		preferred := parse.PhaseSet(p.taskPhases[row])
		if len(preferred) == 0 {
			floating += t.Duration
			continue
		}
		for phase := range preferred {
			demand[phase] += t.Duration
			known[phase] = struct{}{}
		}
	}

	phases := make([]int, 0, len(known))
	for phase := range known {
		phases = append(phases, phase)
	}
	sort.Ints(phases)

	for _, phase := range phases {
		need := demand[phase] + floating
		if need <= capacity[phase] {
			continue
		}
		suggestion := fmt.Sprintf("Add %d slot(s) of capacity in phase %d or move tasks to other phases",
			need-capacity[phase], phase)
		p.out.Error(findings.Finding{
			Kind:       findings.KindPhaseSlotSaturation,
			Message:    fmt.Sprintf("Phase %d is oversubscribed: task demand %d exceeds worker capacity %d", phase, need, capacity[phase]),
			Entity:     dataset.EntityGeneral,
			Value:      phase,
			Suggestion: suggestion,
		})
	}
}

// checkPhaseRange warns when any referenced phase falls outside the expected
// range.
func (p *pass) checkPhaseRange() {
	lo, hi, seen := 0, 0, false
	observe := func(phases []int) {
		for _, ph := range phases {
			if !seen || ph < lo {
				lo = ph
			}
			if !seen || ph > hi {
				hi = ph
			}
			seen = true
		}
	}
	for _, slots := range p.workerSlots {
		observe(slots)
	}
	for _, phases := range p.taskPhases {
		observe(phases)
	}
	if !seen {
		return
	}

	if lo < p.limits.PhaseMin {
		p.out.Warning(findings.Finding{
			Kind:    findings.KindPhaseRange,
			Message: fmt.Sprintf("Phase %d is below the expected minimum of %d", lo, p.limits.PhaseMin),
			Entity:  dataset.EntityGeneral,
			Value:   lo,
		})
	}
	if hi > p.limits.PhaseMax {
		p.out.Warning(findings.Finding{
			Kind:    findings.KindPhaseRange,
			Message: fmt.Sprintf("Phase %d is above the expected maximum of %d", hi, p.limits.PhaseMax),
			Entity:  dataset.EntityGeneral,
			Value:   hi,
		})
	}
}
