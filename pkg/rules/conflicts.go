package rules

import (
	"fmt"
	"strings"
)

// ConflictType names the way two rules contradict each other.
type ConflictType string

const (
	ConflictOverlappingCoRun     ConflictType = "overlapping_corun_tasks"
	ConflictMultiplePhaseWindows ConflictType = "multiple_phase_windows_same_task"
)

// ConflictSeverity ranks a conflict for presentation.
type ConflictSeverity string

const (
	ConflictLow    ConflictSeverity = "low"
	ConflictMedium ConflictSeverity = "medium"
	ConflictHigh   ConflictSeverity = "high"
)

// Conflict reports a pair of active rules that cannot both be honored as
// written. Rule1 precedes Rule2 in the input order.
type Conflict struct {
	Rule1    string           `json:"rule1"`
	Rule2    string           `json:"rule2"`
	Type     ConflictType     `json:"conflict_type"`
	Severity ConflictSeverity `json:"severity"`
	Message  string           `json:"message"`
}

// detectConflicts compares every pair of active rules.
func detectConflicts(active []Rule) []Conflict {
	conflicts := make([]Conflict, 0)

	var coRuns []Rule
	windows := make(map[string][]Rule)
	var windowTasks []string
	for _, r := range active {
		switch s := r.spec().(type) {
		case CoRun:
			coRuns = append(coRuns, r)
		case PhaseWindow:
			id := strings.TrimSpace(s.TaskID)
			if id == "" {
				continue
			}
			if _, seen := windows[id]; !seen {
				windowTasks = append(windowTasks, id)
			}
			windows[id] = append(windows[id], r)
		}
	}

	for i := 0; i < len(coRuns); i++ {
		for j := i + 1; j < len(coRuns); j++ {
			shared := sharedTasks(coRuns[i].spec().(CoRun), coRuns[j].spec().(CoRun))
			if len(shared) == 0 {
				continue
			}
			conflicts = append(conflicts, Conflict{
				Rule1:    coRuns[i].ID,
				Rule2:    coRuns[j].ID,
				Type:     ConflictOverlappingCoRun,
				Severity: ConflictMedium,
				Message:  fmt.Sprintf("Co-run rules share tasks: %s", strings.Join(shared, ", ")),
			})
		}
	}

	for _, task := range windowTasks {
		rs := windows[task]
		for i := 0; i < len(rs); i++ {
			for j := i + 1; j < len(rs); j++ {
				conflicts = append(conflicts, Conflict{
					Rule1:    rs[i].ID,
					Rule2:    rs[j].ID,
					Type:     ConflictMultiplePhaseWindows,
					Severity: ConflictHigh,
					Message:  fmt.Sprintf("Task %s has more than one phase window", task),
				})
			}
		}
	}

	return conflicts
}

func sharedTasks(a, b CoRun) []string {
	in := make(map[string]struct{}, len(a.TaskIDs))
	for _, id := range trimmed(a.TaskIDs) {
		in[id] = struct{}{}
	}
	var shared []string
	for _, id := range trimmed(b.TaskIDs) {
		if _, ok := in[id]; ok {
			shared = append(shared, id)
			delete(in, id)
		}
	}
	return shared
}
