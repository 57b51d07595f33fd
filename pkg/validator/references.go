package validator

import (
	"fmt"
	"sort"
	"strings"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/findings"
	"mercator-hq/tessera/pkg/parse"
)

// checkReferences requires every requested task ID to exist. The suggested
// value of each finding is the request with the unknown IDs removed.
func (p *pass) checkReferences() {
	known := make(map[string]struct{}, len(p.ds.Tasks))
	for _, t := range p.ds.Tasks {
		if id := strings.TrimSpace(t.TaskID); id != "" {
			known[id] = struct{}{}
		}
	}
	knownList := make([]string, 0, len(known))
	for id := range known {
		knownList = append(knownList, id)
	}
	sort.Strings(knownList)

	for row, c := range p.ds.Clients {
		requested := parse.ParseCommaList(c.RequestedTaskIDs)

		valid := make([]string, 0, len(requested))
		var unknown []string
		for _, id := range requested {
			if _, ok := known[id]; ok {
				valid = append(valid, id)
			} else {
				unknown = append(unknown, id)
			}
		}

		for _, id := range unknown {
			f := p.at(dataset.EntityClients, row, findings.KindUnknownReference, "RequestedTaskIDs",
				fmt.Sprintf("Client %s requests unknown task %q", displayID(c.ClientID), id))
			f.Value = id
			f.SuggestedValue = strings.Join(valid, ",")
			f.Suggestion = findings.SuggestName(id, knownList)
			p.out.Error(f)
		}
	}
}

// checkSkillCoverage requires every skill a task needs to be held by at least
// one worker. Skills compare case-insensitively.
func (p *pass) checkSkillCoverage() {
	available := make(map[string]struct{})
	for _, skills := range p.workerSkills {
		for s := range skills {
			available[s] = struct{}{}
		}
	}

	for row, t := range p.ds.Tasks {
		for _, skill := range p.taskSkills[row] {
			if _, ok := available[strings.ToLower(skill)]; ok {
				continue
			}
			f := p.at(dataset.EntityTasks, row, findings.KindSkillCoverage, "RequiredSkills",
				fmt.Sprintf("Required skill %q for task %s is not held by any worker", skill, displayID(t.TaskID)))
			f.Value = skill
			f.Suggestion = fmt.Sprintf("Add a worker with skill %q or remove it from the task", skill)
			p.out.Error(f)
		}
	}
}
