package fixes

import (
	"errors"
	"testing"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/findings"
	"mercator-hq/tessera/pkg/validator"
)

func sample() *dataset.DataSet {
	return &dataset.DataSet{
		Clients: []dataset.Client{
			{ClientID: "C1", ClientName: "Acme", PriorityLevel: 9, RequestedTaskIDs: "T1"},
			{ClientID: "C2", ClientName: "Bolt", PriorityLevel: 2, RequestedTaskIDs: "T1"},
		},
		Workers: []dataset.Worker{
			{WorkerID: "W1", WorkerName: "Ada", Skills: "go", AvailableSlots: "1-3", MaxLoadPerPhase: 5, QualificationLevel: 3},
		},
		Tasks: []dataset.Task{
			{TaskID: "T1", TaskName: "Build", Duration: 1, RequiredSkills: "go", PreferredPhases: "1, 2", MaxConcurrent: 1},
		},
	}
}

func TestApply(t *testing.T) {
	ds := sample()
	fxs := []findings.Fix{
		{Kind: findings.KindOutOfRange, Entity: dataset.EntityClients, Row: 0, RecordID: "C1", Column: "PriorityLevel", Value: 5},
		{Kind: findings.KindMalformedArray, Entity: dataset.EntityTasks, Row: 0, RecordID: "T1", Column: "PreferredPhases", Value: "[1,2]"},
	}

	got, err := Apply(ds, fxs)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got.Clients[0].PriorityLevel != 5 {
		t.Errorf("PriorityLevel = %d, want 5", got.Clients[0].PriorityLevel)
	}
	if got.Tasks[0].PreferredPhases != "[1,2]" {
		t.Errorf("PreferredPhases = %q", got.Tasks[0].PreferredPhases)
	}
	if ds.Clients[0].PriorityLevel != 9 {
		t.Error("Apply() modified its input")
	}
}

func TestApplyFollowsRecordID(t *testing.T) {
	ds := sample()
	// C1 moved to row 1 after validation.
	ds.Clients[0], ds.Clients[1] = ds.Clients[1], ds.Clients[0]

	fx := findings.Fix{Kind: findings.KindOutOfRange, Entity: dataset.EntityClients, Row: 0, RecordID: "C1", Column: "PriorityLevel", Value: 5}
	got, err := Apply(ds, []findings.Fix{fx})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got.Clients[1].PriorityLevel != 5 || got.Clients[0].PriorityLevel != 2 {
		t.Errorf("clients = %+v", got.Clients)
	}
}

func TestResolve(t *testing.T) {
	ds := sample()
	ds.Tasks = append(ds.Tasks, dataset.Task{TaskID: "T1"}, dataset.Task{TaskID: "T1"})

	tests := []struct {
		name    string
		fix     findings.Fix
		want    int
		wantErr bool
	}{
		{name: "by id", fix: findings.Fix{Entity: dataset.EntityWorkers, RecordID: "W1", Row: 7}, want: 0},
		{name: "by row without id", fix: findings.Fix{Entity: dataset.EntityClients, Row: 1}, want: 1},
		{name: "row out of range", fix: findings.Fix{Entity: dataset.EntityClients, Row: 4}, wantErr: true},
		{name: "unknown id", fix: findings.Fix{Entity: dataset.EntityWorkers, RecordID: "W9"}, wantErr: true},
		{name: "shared id picks row", fix: findings.Fix{Entity: dataset.EntityTasks, RecordID: "T1", Row: 2}, want: 2},
		{name: "shared id without matching row", fix: findings.Fix{Entity: dataset.EntityTasks, RecordID: "T1", Row: 5}, wantErr: true},
		{name: "global entity", fix: findings.Fix{Entity: dataset.EntityGeneral}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(ds, tt.fix)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Resolve() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestApplyReportsFailures(t *testing.T) {
	ds := sample()
	fxs := []findings.Fix{
		{Kind: findings.KindOutOfRange, Entity: dataset.EntityClients, RecordID: "C9", Column: "PriorityLevel", Value: 5},
		{Kind: findings.KindOutOfRange, Entity: dataset.EntityClients, RecordID: "C1", Column: "PriorityLevel", Value: "five"},
		{Kind: findings.KindWorkerOverload, Entity: dataset.EntityWorkers, RecordID: "W1", Column: "MaxLoadPerPhase", Value: 3},
	}

	got, err := Apply(ds, fxs)
	if err == nil {
		t.Fatal("Apply() error = nil, want failures")
	}
	var applyErr *ApplyError
	if !errors.As(err, &applyErr) {
		t.Errorf("error %v does not wrap *ApplyError", err)
	}
	if got.Workers[0].MaxLoadPerPhase != 3 {
		t.Errorf("successful fix was not applied: %+v", got.Workers[0])
	}
}

func TestApplyValidatorFixesConverges(t *testing.T) {
	v := validator.New()
	ds := sample()

	before := v.Validate(ds)
	if len(before.Fixes) == 0 {
		t.Fatal("expected fixes for the sample dataset")
	}

	fixed, err := Apply(ds, before.Fixes)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	after := v.Validate(fixed)
	if len(after.Fixes) != 0 {
		t.Errorf("fixes remain after applying all fixes: %+v", after.Fixes)
	}
	for _, k := range []findings.Kind{findings.KindOutOfRange, findings.KindWorkerOverload, findings.KindMalformedArray} {
		if after.HasKind(k) {
			t.Errorf("%s still reported after fixing", k)
		}
	}
}
