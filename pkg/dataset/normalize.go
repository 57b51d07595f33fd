package dataset

import (
	"sort"
	"strings"

	"mercator-hq/tessera/pkg/parse"
)

// CanonicalPhases renders parsed phases in the canonical stored form:
// "[a,b,c]", or "" when there are no phases.
func CanonicalPhases(phases []int) string {
	if len(phases) == 0 {
		return ""
	}
	return parse.FormatBracketed(phases)
}

// Normalize returns a copy of ds with every task's PreferredPhases rewritten
// to its canonical form. Values that do not parse cleanly are left as they
// are so validation still reports them. The input is not modified. Normalize
// is idempotent.
func Normalize(ds *DataSet) *DataSet {
	out := ds.Clone()
	for i := range out.Tasks {
		raw := out.Tasks[i].PreferredPhases
		phases, errs := parse.ParsePhaseList(raw)
		if len(errs) > 0 || (len(phases) == 0 && parse.NormalizeRaw(raw) != "") {
			continue
		}
		out.Tasks[i].PreferredPhases = CanonicalPhases(phases)
	}
	return out
}

// Summary is a content digest of a dataset used to key rule suggestions.
// Every slice is sorted so equal datasets produce equal summaries.
type Summary struct {
	Counts       EntityCounts `json:"counts"`
	ClientGroups []string     `json:"client_groups"`
	WorkerGroups []string     `json:"worker_groups"`
	Skills       []string     `json:"skills"`
	Categories   []string     `json:"categories"`
	Phases       []int        `json:"phases"`
	TaskIDs      []string     `json:"task_ids"`

	// TasksByCategory maps each category to its sorted task IDs.
	TasksByCategory map[string][]string `json:"tasks_by_category"`

	// GroupCapacity maps each worker group to its summed MaxLoadPerPhase.
	GroupCapacity map[string]int `json:"group_capacity"`
}

// Summarize builds the Summary of a dataset.
func Summarize(ds *DataSet) Summary {
	clientGroups := map[string]struct{}{}
	workerGroups := map[string]struct{}{}
	skills := map[string]struct{}{}
	categories := map[string]struct{}{}
	phases := map[int]struct{}{}
	taskIDs := map[string]struct{}{}
	byCategory := map[string]map[string]struct{}{}
	capacity := map[string]int{}

	for _, c := range ds.Clients {
		if g := strings.TrimSpace(c.GroupTag); g != "" {
			clientGroups[g] = struct{}{}
		}
	}
	for _, w := range ds.Workers {
		if g := strings.TrimSpace(w.WorkerGroup); g != "" {
			workerGroups[g] = struct{}{}
			capacity[g] += w.MaxLoadPerPhase
		}
		for s := range parse.FoldSet(w.Skills) {
			skills[s] = struct{}{}
		}
		slots, _ := parse.ParsePhaseList(w.AvailableSlots)
		for _, p := range slots {
			phases[p] = struct{}{}
		}
	}
	for _, t := range ds.Tasks {
		c := strings.TrimSpace(t.Category)
		id := strings.TrimSpace(t.TaskID)
		if c != "" {
			categories[c] = struct{}{}
		}
		if id != "" {
			taskIDs[id] = struct{}{}
		}
		if c != "" && id != "" {
			if byCategory[c] == nil {
				byCategory[c] = map[string]struct{}{}
			}
			byCategory[c][id] = struct{}{}
		}
		preferred, _ := parse.ParsePhaseList(t.PreferredPhases)
		for _, p := range preferred {
			phases[p] = struct{}{}
		}
	}

	tasksByCategory := make(map[string][]string, len(byCategory))
	for c, ids := range byCategory {
		tasksByCategory[c] = sortedKeys(ids)
	}

	return Summary{
		Counts:          ds.Counts(),
		ClientGroups:    sortedKeys(clientGroups),
		WorkerGroups:    sortedKeys(workerGroups),
		Skills:          sortedKeys(skills),
		Categories:      sortedKeys(categories),
		Phases:          sortedInts(phases),
		TaskIDs:         sortedKeys(taskIDs),
		TasksByCategory: tasksByCategory,
		GroupCapacity:   capacity,
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedInts(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
