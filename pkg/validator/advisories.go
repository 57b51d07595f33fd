package validator

import (
	"fmt"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/findings"
	"mercator-hq/tessera/pkg/parse"
)

// checkAdvisories emits warnings for records that are valid but unlikely to
// be useful to an allocator.
func (p *pass) checkAdvisories() {
	for row, t := range p.ds.Tasks {
		if parse.NormalizeRaw(t.PreferredPhases) != "" && len(p.taskPhases[row]) == 0 {
			f := p.at(dataset.EntityTasks, row, findings.KindNoPreferredPhases, "PreferredPhases",
				fmt.Sprintf("PreferredPhases %q for task %s contains no usable phases", t.PreferredPhases, displayID(t.TaskID)))
			f.Value = t.PreferredPhases
			p.out.Warning(f)
		}
	}

	for row, w := range p.ds.Workers {
		if len(p.workerSkills[row]) == 0 {
			p.out.Warning(p.at(dataset.EntityWorkers, row, findings.KindNoSkills, "Skills",
				fmt.Sprintf("Worker %s has no skills", displayID(w.WorkerID))))
		}
	}

	for row, c := range p.ds.Clients {
		if len(parse.ParseCommaList(c.RequestedTaskIDs)) == 0 {
			p.out.Warning(p.at(dataset.EntityClients, row, findings.KindNoRequestedTasks, "RequestedTaskIDs",
				fmt.Sprintf("Client %s has not requested any tasks", displayID(c.ClientID))))
		}
	}
}
