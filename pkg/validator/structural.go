package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/findings"
	"mercator-hq/tessera/pkg/parse"
)

// checkRequiredFields flags blank identifiers (errors) and blank display
// names (warnings).
func (p *pass) checkRequiredFields() {
	for _, e := range dataset.RecordEntities {
		idCol, nameCol := e.IDColumn(), e.NameColumn()
		for row := 0; row < p.ds.Len(e); row++ {
			id, _ := p.ds.FieldValue(e, row, idCol)
			if strings.TrimSpace(id) == "" {
				f := p.at(e, row, findings.KindMissingRequired, idCol,
					fmt.Sprintf("Missing required field %s in %s row %d", idCol, e, row))
				f.Suggestion = fmt.Sprintf("Assign a unique %s", idCol)
				p.out.Error(f)
			}

			name, _ := p.ds.FieldValue(e, row, nameCol)
			if strings.TrimSpace(name) == "" {
				p.out.Warning(p.at(e, row, findings.KindMissingOptional, nameCol,
					fmt.Sprintf("Missing %s for %s %s", nameCol, idCol, displayID(id))))
			}
		}
	}
}

// checkDuplicateIDs emits one error per occurrence of an identifier that
// appears more than once. Blank identifiers are reported by
// checkRequiredFields instead.
func (p *pass) checkDuplicateIDs() {
	for _, e := range dataset.RecordEntities {
		idCol := e.IDColumn()
		n := p.ds.Len(e)

		counts := make(map[string]int, n)
		for row := 0; row < n; row++ {
			if id := strings.TrimSpace(p.ds.RecordID(e, row)); id != "" {
				counts[id]++
			}
		}

		for row := 0; row < n; row++ {
			id := strings.TrimSpace(p.ds.RecordID(e, row))
			if id == "" || counts[id] < 2 {
				continue
			}
			f := p.at(e, row, findings.KindDuplicateID, idCol,
				fmt.Sprintf("Duplicate %s %q (appears %d times)", idCol, id, counts[id]))
			f.Value = id
			f.Suggestion = fmt.Sprintf("Give each record a unique %s", idCol)
			p.out.Error(f)
		}
	}
}

// checkRanges validates numeric columns. Hard bounds produce an error, a
// clamped suggestion and a fix; soft thresholds produce warnings only.
func (p *pass) checkRanges() {
	l := p.limits

	for row, c := range p.ds.Clients {
		p.checkBounded(dataset.EntityClients, row, "PriorityLevel", c.PriorityLevel, l.PriorityMin, l.PriorityMax)
	}

	for row, w := range p.ds.Workers {
		if w.MaxLoadPerPhase < 1 {
			p.checkBounded(dataset.EntityWorkers, row, "MaxLoadPerPhase", w.MaxLoadPerPhase, 1, math.MaxInt)
		} else if w.MaxLoadPerPhase > l.MaxLoadWarnAbove {
			f := p.at(dataset.EntityWorkers, row, findings.KindUnusualValue, "MaxLoadPerPhase",
				fmt.Sprintf("MaxLoadPerPhase %d for worker %s is unusually high (> %d)",
					w.MaxLoadPerPhase, displayID(w.WorkerID), l.MaxLoadWarnAbove))
			f.Value = w.MaxLoadPerPhase
			p.out.Warning(f)
		}
		p.checkBounded(dataset.EntityWorkers, row, "QualificationLevel", w.QualificationLevel, l.QualificationMin, l.QualificationMax)
	}

	for row, t := range p.ds.Tasks {
		if t.Duration < 1 {
			p.checkBounded(dataset.EntityTasks, row, "Duration", t.Duration, 1, math.MaxInt)
		} else if t.Duration > l.DurationWarnAbove {
			f := p.at(dataset.EntityTasks, row, findings.KindUnusualValue, "Duration",
				fmt.Sprintf("Duration %d for task %s is unusually long (> %d phases)",
					t.Duration, displayID(t.TaskID), l.DurationWarnAbove))
			f.Value = t.Duration
			p.out.Warning(f)
		}
		if t.MaxConcurrent < 1 {
			p.checkBounded(dataset.EntityTasks, row, "MaxConcurrent", t.MaxConcurrent, 1, math.MaxInt)
		}
	}
}

// checkBounded emits an out_of_range error and a clamping fix when value
// falls outside [lo, hi].
func (p *pass) checkBounded(e dataset.Entity, row int, column string, value, lo, hi int) {
	if value >= lo && value <= hi {
		return
	}

	clamped, suggestion := findings.SuggestClamp(column, value, lo, hi)
	var msg string
	if value < lo {
		msg = fmt.Sprintf("%s %d is below the minimum of %d", column, value, lo)
	} else {
		msg = fmt.Sprintf("%s %d is above the maximum of %d", column, value, hi)
	}

	f := p.at(e, row, findings.KindOutOfRange, column, msg)
	f.Value = value
	f.Suggestion = suggestion
	f.SuggestedValue = clamped
	p.out.Error(f)
	p.fix(e, row, findings.KindOutOfRange, column, clamped, suggestion)
}

// checkMalformedLists reports unparseable phase tokens and proposes the
// canonical serialization wherever the stored list is not already canonical.
func (p *pass) checkMalformedLists() {
	for row, w := range p.ds.Workers {
		p.checkPhaseList(dataset.EntityWorkers, row, "AvailableSlots", w.AvailableSlots,
			p.workerSlots[row], p.workerSlotErrs[row])
	}
	for row, t := range p.ds.Tasks {
		p.checkPhaseList(dataset.EntityTasks, row, "PreferredPhases", t.PreferredPhases,
			p.taskPhases[row], p.taskPhaseErrs[row])
	}
}

func (p *pass) checkPhaseList(e dataset.Entity, row int, column, raw string, phases []int, errs []parse.TokenError) {
	for _, tokErr := range errs {
		f := p.at(e, row, findings.KindMalformedArray, column,
			fmt.Sprintf("Invalid phase %q in %s of %s", tokErr.Token, column, displayID(p.ds.RecordID(e, row))))
		f.Value = tokErr.Token
		f.Suggestion = "Use integers in [1,2,3], 1,2,3 or 1-3 form"
		p.out.Error(f)
	}

	if parse.FormatPhaseList(phases) == parse.NormalizeRaw(raw) {
		return
	}
	canonical := dataset.CanonicalPhases(phases)
	p.fix(e, row, findings.KindMalformedArray, column, canonical,
		fmt.Sprintf("Normalize %s %q to %q", column, raw, canonical))
}

// checkJSON requires non-empty AttributesJSON to be well-formed JSON.
func (p *pass) checkJSON() {
	for row, c := range p.ds.Clients {
		raw := strings.TrimSpace(c.AttributesJSON)
		if raw == "" || json.Valid([]byte(raw)) {
			continue
		}
		f := p.at(dataset.EntityClients, row, findings.KindInvalidJSON, "AttributesJSON",
			fmt.Sprintf("AttributesJSON for client %s is not valid JSON", displayID(c.ClientID)))
		f.Value = c.AttributesJSON
		f.Suggestion = `Use a JSON object such as {"key":"value"}`
		p.out.Error(f)
	}
}
