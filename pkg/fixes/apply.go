// Package fixes applies validation fixes to a dataset.
//
// Fixes are addressed by record ID. The positional row recorded at
// validation time is only used when the fix has no ID or when the ID is
// shared by several records, so fixes stay correct after rows are inserted,
// removed or reordered.
package fixes

import (
	"errors"
	"fmt"
	"strings"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/findings"
)

// ApplyError reports a fix that could not be applied.
type ApplyError struct {
	Fix    findings.Fix
	Reason string
}

// Error implements the error interface.
func (e *ApplyError) Error() string {
	target := e.Fix.RecordID
	if target == "" {
		target = fmt.Sprintf("row %d", e.Fix.Row)
	}
	return fmt.Sprintf("cannot apply %s fix to %s %s column %s: %s",
		e.Fix.Kind, e.Fix.Entity, target, e.Fix.Column, e.Reason)
}

// Apply returns a copy of ds with every fix applied in order. ds is not
// modified. Fixes that cannot be resolved or assigned are skipped and
// reported together in the returned error; the returned dataset always holds
// the fixes that did apply.
//
// The caller must validate the result again: fixes can change which findings
// apply.
func Apply(ds *dataset.DataSet, fxs []findings.Fix) (*dataset.DataSet, error) {
	out := ds.Clone()

	var errs []error
	for _, fx := range fxs {
		row, err := Resolve(out, fx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := out.SetField(fx.Entity, row, fx.Column, fx.Value); err != nil {
			errs = append(errs, &ApplyError{Fix: fx, Reason: err.Error()})
		}
	}
	return out, errors.Join(errs...)
}

// Resolve returns the row a fix addresses in ds.
func Resolve(ds *dataset.DataSet, fx findings.Fix) (int, error) {
	switch fx.Entity {
	case dataset.EntityClients, dataset.EntityWorkers, dataset.EntityTasks:
	default:
		return 0, &ApplyError{Fix: fx, Reason: "fix does not address a record"}
	}

	id := strings.TrimSpace(fx.RecordID)
	if id == "" {
		if fx.Row < 0 || fx.Row >= ds.Len(fx.Entity) {
			return 0, &ApplyError{Fix: fx, Reason: fmt.Sprintf("row %d out of range", fx.Row)}
		}
		return fx.Row, nil
	}

	var rows []int
	for row := 0; row < ds.Len(fx.Entity); row++ {
		if strings.TrimSpace(ds.RecordID(fx.Entity, row)) == id {
			rows = append(rows, row)
		}
	}

	switch len(rows) {
	case 0:
		return 0, &ApplyError{Fix: fx, Reason: "record not found"}
	case 1:
		return rows[0], nil
	}
	for _, row := range rows {
		if row == fx.Row {
			return row, nil
		}
	}
	return 0, &ApplyError{Fix: fx, Reason: fmt.Sprintf("id %q is shared by %d records", id, len(rows))}
}
