package validator

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/findings"
)

// cleanDataset returns a dataset that produces no findings.
func cleanDataset() *dataset.DataSet {
	return &dataset.DataSet{
		Clients: []dataset.Client{
			{ClientID: "C1", ClientName: "Acme", PriorityLevel: 3, RequestedTaskIDs: "T1,T2", GroupTag: "enterprise", AttributesJSON: `{"tier":"gold"}`},
		},
		Workers: []dataset.Worker{
			{WorkerID: "W1", WorkerName: "Ada", Skills: "go,sql", AvailableSlots: "[1,2,3]", MaxLoadPerPhase: 2, WorkerGroup: "backend", QualificationLevel: 4},
			{WorkerID: "W2", WorkerName: "Bo", Skills: "go,design", AvailableSlots: "[2,3,4]", MaxLoadPerPhase: 2, WorkerGroup: "frontend", QualificationLevel: 3},
		},
		Tasks: []dataset.Task{
			{TaskID: "T1", TaskName: "Build", Category: "eng", Duration: 2, RequiredSkills: "go", PreferredPhases: "[1,2]", MaxConcurrent: 2},
			{TaskID: "T2", TaskName: "Design", Category: "ux", Duration: 1, RequiredSkills: "design", PreferredPhases: "[3,4]", MaxConcurrent: 1},
		},
	}
}

func TestValidateCleanDataset(t *testing.T) {
	r := New().Validate(cleanDataset())

	if !r.IsValid {
		t.Errorf("IsValid = false, errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", r.Warnings)
	}
	if len(r.Fixes) != 0 {
		t.Errorf("unexpected fixes: %v", r.Fixes)
	}
	if r.Summary.EntityCounts != (dataset.EntityCounts{Clients: 1, Workers: 2, Tasks: 2}) {
		t.Errorf("EntityCounts = %+v", r.Summary.EntityCounts)
	}
}

func TestValidateNilDataset(t *testing.T) {
	r := New().Validate(nil)
	if !r.IsValid || len(r.Errors) != 0 {
		t.Errorf("Validate(nil) = %+v", r)
	}
}

func TestScenarioPriorityOutOfRange(t *testing.T) {
	ds := &dataset.DataSet{Clients: []dataset.Client{{ClientID: "C1", PriorityLevel: 7}}}
	r := New().Validate(ds)

	if len(r.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(r.Errors), r.Errors)
	}
	e := r.Errors[0]
	if e.Kind != findings.KindOutOfRange {
		t.Errorf("Kind = %s, want out_of_range", e.Kind)
	}
	if e.SuggestedValue != 5 {
		t.Errorf("SuggestedValue = %v, want 5", e.SuggestedValue)
	}
	if len(r.Fixes) != 1 || r.Fixes[0].Value != 5 || r.Fixes[0].RecordID != "C1" {
		t.Errorf("Fixes = %+v", r.Fixes)
	}
}

func TestScenarioDuplicateTaskIDs(t *testing.T) {
	ds := &dataset.DataSet{Tasks: []dataset.Task{{TaskID: "T1"}, {TaskID: "T1"}}}
	r := New().Validate(ds)

	dups := r.ByKind(findings.KindDuplicateID)
	if len(dups) != 2 {
		t.Fatalf("got %d duplicate_id errors, want 2", len(dups))
	}
	for i, f := range dups {
		if f.Entity != dataset.EntityTasks {
			t.Errorf("dup %d Entity = %s, want tasks", i, f.Entity)
		}
		if row, ok := f.RowIndex(); !ok || row != i {
			t.Errorf("dup %d Row = %v, want %d", i, f.Row, i)
		}
	}
}

func TestScenarioWorkerOverload(t *testing.T) {
	ds := &dataset.DataSet{Workers: []dataset.Worker{
		{WorkerID: "W1", WorkerName: "Ada", Skills: "go", AvailableSlots: "1-3", MaxLoadPerPhase: 5, QualificationLevel: 3},
	}}
	r := New().Validate(ds)

	got := r.ByKind(findings.KindWorkerOverload)
	if len(got) != 1 {
		t.Fatalf("got %d worker_overload errors, want 1", len(got))
	}
	if got[0].SuggestedValue != 3 {
		t.Errorf("SuggestedValue = %v, want 3", got[0].SuggestedValue)
	}

	var found bool
	for _, fx := range r.Fixes {
		if fx.Kind == findings.KindWorkerOverload && fx.Column == "MaxLoadPerPhase" && fx.Value == 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("missing MaxLoadPerPhase fix in %+v", r.Fixes)
	}
}

func TestWorkerOverloadCountsSlotEntries(t *testing.T) {
	tests := []struct {
		name    string
		slots   string
		maxLoad int
		want    int
	}{
		{name: "repeated phases fill the load", slots: "[1,1,2]", maxLoad: 3, want: -1},
		{name: "each repeated entry counts toward the limit", slots: "[1,1,2]", maxLoad: 4, want: 3},
		{name: "no slots", slots: "", maxLoad: 4, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := &dataset.DataSet{Workers: []dataset.Worker{
				{WorkerID: "W1", WorkerName: "Ada", Skills: "go", AvailableSlots: tt.slots, MaxLoadPerPhase: tt.maxLoad, QualificationLevel: 3},
			}}
			got := New().Validate(ds).ByKind(findings.KindWorkerOverload)
			if tt.want < 0 {
				if len(got) != 0 {
					t.Errorf("got %d worker_overload errors, want none", len(got))
				}
				return
			}
			if len(got) != 1 || got[0].SuggestedValue != tt.want {
				t.Errorf("worker_overload = %+v, want one with SuggestedValue %d", got, tt.want)
			}
		})
	}
}

func TestScenarioSkillCoverage(t *testing.T) {
	ds := cleanDataset()
	ds.Tasks[0].RequiredSkills = "Rust"
	r := New().Validate(ds)

	got := r.ByKind(findings.KindSkillCoverage)
	if len(got) != 1 {
		t.Fatalf("got %d skill_coverage errors, want 1", len(got))
	}
	if got[0].Value != "Rust" {
		t.Errorf("Value = %v, want Rust", got[0].Value)
	}
	if r.Summary.CriticalErrors < 1 {
		t.Errorf("CriticalErrors = %d, skill_coverage must count", r.Summary.CriticalErrors)
	}
}

func TestPriorityClampProperty(t *testing.T) {
	for v := -3; v <= 9; v++ {
		t.Run(fmt.Sprint(v), func(t *testing.T) {
			ds := cleanDataset()
			ds.Clients[0].PriorityLevel = v
			r := New().Validate(ds)
			got := r.ByKind(findings.KindOutOfRange)

			switch {
			case v < 1:
				if len(got) != 1 || got[0].SuggestedValue != 1 {
					t.Errorf("v=%d: findings = %+v, want clamp to 1", v, got)
				}
			case v > 5:
				if len(got) != 1 || got[0].SuggestedValue != 5 {
					t.Errorf("v=%d: findings = %+v, want clamp to 5", v, got)
				}
			default:
				if len(got) != 0 {
					t.Errorf("v=%d: unexpected findings %+v", v, got)
				}
			}
		})
	}
}

func TestDuplicateDetectionCompleteness(t *testing.T) {
	for n := 2; n <= 5; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			ds := cleanDataset()
			for i := 0; i < n; i++ {
				ds.Workers = append(ds.Workers, dataset.Worker{
					WorkerID: "WX", WorkerName: "dup", Skills: "go", AvailableSlots: "1,2", MaxLoadPerPhase: 1, QualificationLevel: 1,
				})
			}
			r := New().Validate(ds)
			if got := len(r.ByKind(findings.KindDuplicateID)); got != n {
				t.Errorf("duplicate_id errors = %d, want %d", got, n)
			}
		})
	}
}

func TestValidateIsIdempotentAndReadOnly(t *testing.T) {
	ds := cleanDataset()
	ds.Clients[0].PriorityLevel = 9
	ds.Workers[0].AvailableSlots = "1-3"
	ds.Tasks[0].PreferredPhases = " 1, 2 "
	ds.Tasks[1].RequiredSkills = "design,cobol"
	before := ds.Clone()

	v := New()
	first := v.Validate(ds)
	second := v.Validate(ds)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Validate() not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if !reflect.DeepEqual(ds, before) {
		t.Errorf("Validate() modified its input:\nbefore: %+v\nafter:  %+v", before, ds)
	}
}

func TestNormalizedPreferredPhasesAreStable(t *testing.T) {
	ds := cleanDataset()
	ds.Tasks[0].PreferredPhases = "1-2"

	normalized := dataset.Normalize(ds)
	if normalized.Tasks[0].PreferredPhases != "[1,2]" {
		t.Fatalf("Normalize() = %q", normalized.Tasks[0].PreferredPhases)
	}

	r1 := New().Validate(normalized)
	r2 := New().Validate(dataset.Normalize(normalized))
	if !reflect.DeepEqual(r1, r2) {
		t.Error("validation differs after a second normalization")
	}
	for _, fx := range r1.Fixes {
		if fx.Column == "PreferredPhases" {
			t.Errorf("normalized PreferredPhases still yields fix %+v", fx)
		}
	}
}

func TestSkillCoverageMonotonicity(t *testing.T) {
	ds := cleanDataset()
	ds.Tasks[0].RequiredSkills = "go,Rust"

	if n := len(New().Validate(ds).ByKind(findings.KindSkillCoverage)); n != 1 {
		t.Fatalf("initial skill_coverage = %d, want 1", n)
	}

	ds.Workers = append(ds.Workers, dataset.Worker{
		WorkerID: "W3", WorkerName: "Cy", Skills: "rust", AvailableSlots: "1,2", MaxLoadPerPhase: 1, QualificationLevel: 2,
	})
	if n := len(New().Validate(ds).ByKind(findings.KindSkillCoverage)); n != 0 {
		t.Errorf("after adding rust worker skill_coverage = %d, want 0", n)
	}

	ds.Workers = ds.Workers[:2]
	if n := len(New().Validate(ds).ByKind(findings.KindSkillCoverage)); n != 1 {
		t.Errorf("after removing rust worker skill_coverage = %d, want 1", n)
	}
}

func TestRequiredFields(t *testing.T) {
	ds := cleanDataset()
	ds.Clients[0].ClientID = "  "
	ds.Workers[0].WorkerName = ""
	r := New().Validate(ds)

	missing := r.ByKind(findings.KindMissingRequired)
	if len(missing) != 1 || missing[0].Column != "ClientID" || missing[0].Severity != findings.SeverityError {
		t.Errorf("missing_required = %+v", missing)
	}
	optional := r.ByKind(findings.KindMissingOptional)
	if len(optional) != 1 || optional[0].Column != "WorkerName" || optional[0].Severity != findings.SeverityWarning {
		t.Errorf("missing_optional = %+v", optional)
	}
}

func TestRangeThresholds(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(ds *dataset.DataSet)
		column    string
		kind      findings.Kind
		severity  findings.Severity
		wantFix   bool
		suggested any
	}{
		{
			name:      "duration below one",
			mutate:    func(ds *dataset.DataSet) { ds.Tasks[0].Duration = 0 },
			column:    "Duration",
			kind:      findings.KindOutOfRange,
			severity:  findings.SeverityError,
			wantFix:   true,
			suggested: 1,
		},
		{
			name:     "duration unusually long",
			mutate:   func(ds *dataset.DataSet) { ds.Tasks[1].Duration = 11 },
			column:   "Duration",
			kind:     findings.KindUnusualValue,
			severity: findings.SeverityWarning,
		},
		{
			name:      "max load below one",
			mutate:    func(ds *dataset.DataSet) { ds.Workers[0].MaxLoadPerPhase = -2 },
			column:    "MaxLoadPerPhase",
			kind:      findings.KindOutOfRange,
			severity:  findings.SeverityError,
			wantFix:   true,
			suggested: 1,
		},
		{
			name:     "max load unusually high",
			mutate:   func(ds *dataset.DataSet) { ds.Workers[0].MaxLoadPerPhase = 21; ds.Workers[0].AvailableSlots = "1-21" },
			column:   "MaxLoadPerPhase",
			kind:     findings.KindUnusualValue,
			severity: findings.SeverityWarning,
		},
		{
			name:      "qualification above five",
			mutate:    func(ds *dataset.DataSet) { ds.Workers[1].QualificationLevel = 8 },
			column:    "QualificationLevel",
			kind:      findings.KindOutOfRange,
			severity:  findings.SeverityError,
			wantFix:   true,
			suggested: 5,
		},
		{
			name:      "max concurrent below one",
			mutate:    func(ds *dataset.DataSet) { ds.Tasks[1].MaxConcurrent = 0 },
			column:    "MaxConcurrent",
			kind:      findings.KindOutOfRange,
			severity:  findings.SeverityError,
			wantFix:   true,
			suggested: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := cleanDataset()
			tt.mutate(ds)
			r := New().Validate(ds)

			var match *findings.Finding
			got := r.ByKind(tt.kind)
			for i := range got {
				if got[i].Column == tt.column {
					match = &got[i]
					break
				}
			}
			if match == nil {
				t.Fatalf("no %s finding on %s; errors=%v warnings=%v", tt.kind, tt.column, r.Errors, r.Warnings)
			}
			if match.Severity != tt.severity {
				t.Errorf("Severity = %s, want %s", match.Severity, tt.severity)
			}
			if tt.suggested != nil && match.SuggestedValue != tt.suggested {
				t.Errorf("SuggestedValue = %v, want %v", match.SuggestedValue, tt.suggested)
			}

			var hasFix bool
			for _, fx := range r.Fixes {
				if fx.Column == tt.column && fx.Kind == tt.kind {
					hasFix = true
				}
			}
			if hasFix != tt.wantFix {
				t.Errorf("fix present = %v, want %v", hasFix, tt.wantFix)
			}
		})
	}
}

func TestMalformedLists(t *testing.T) {
	ds := cleanDataset()
	ds.Workers[0].AvailableSlots = "1, x, 3"
	ds.Workers[1].AvailableSlots = "2-4"
	r := New().Validate(ds)

	malformed := r.ByKind(findings.KindMalformedArray)
	if len(malformed) != 1 || malformed[0].Value != "x" || malformed[0].RecordID != "W1" {
		t.Errorf("malformed_array errors = %+v", malformed)
	}

	fixes := map[string]any{}
	for _, fx := range r.Fixes {
		if fx.Kind == findings.KindMalformedArray {
			fixes[fx.RecordID] = fx.Value
		}
	}
	if fixes["W1"] != "[1,3]" {
		t.Errorf("W1 fix = %v, want [1,3]", fixes["W1"])
	}
	if fixes["W2"] != "[2,3,4]" {
		t.Errorf("W2 fix = %v, want [2,3,4]", fixes["W2"])
	}
}

func TestInvalidJSON(t *testing.T) {
	ds := cleanDataset()
	ds.Clients[0].AttributesJSON = "{tier: gold"
	r := New().Validate(ds)

	if got := r.ByKind(findings.KindInvalidJSON); len(got) != 1 {
		t.Errorf("invalid_json = %+v", got)
	}

	ds.Clients[0].AttributesJSON = ""
	if r := New().Validate(ds); r.HasKind(findings.KindInvalidJSON) {
		t.Error("empty AttributesJSON must not be flagged")
	}
}

func TestUnknownReference(t *testing.T) {
	ds := cleanDataset()
	ds.Clients[0].RequestedTaskIDs = "T1, T9, T2, TX"
	r := New().Validate(ds)

	got := r.ByKind(findings.KindUnknownReference)
	if len(got) != 2 {
		t.Fatalf("unknown_reference = %d, want 2", len(got))
	}
	for _, f := range got {
		if f.SuggestedValue != "T1,T2" {
			t.Errorf("SuggestedValue = %v, want T1,T2", f.SuggestedValue)
		}
	}
	if got[0].Value != "T9" || got[1].Value != "TX" {
		t.Errorf("unknown values = %v, %v", got[0].Value, got[1].Value)
	}
}

func TestMaxConcurrencyInfeasible(t *testing.T) {
	ds := cleanDataset()
	ds.Tasks[0].MaxConcurrent = 3
	r := New().Validate(ds)

	got := r.ByKind(findings.KindMaxConcurrencyInfeasible)
	if len(got) != 1 || got[0].RecordID != "T1" || got[0].SuggestedValue != 2 {
		t.Fatalf("max_concurrency_infeasible = %+v", got)
	}

	// Both skills exist, but no single worker holds design and sql.
	ds.Tasks[1].RequiredSkills = "design,sql"
	ds.Tasks[0].MaxConcurrent = 2
	r = New().Validate(ds)
	got = r.ByKind(findings.KindMaxConcurrencyInfeasible)
	if len(got) != 1 || got[0].SuggestedValue != 0 {
		t.Fatalf("max_concurrency_infeasible = %+v", got)
	}
	for _, fx := range r.Fixes {
		if fx.Kind == findings.KindMaxConcurrencyInfeasible {
			t.Errorf("unexpected fix %+v", fx)
		}
	}
}

func TestPhaseSlotSaturation(t *testing.T) {
	ds := cleanDataset()
	ds.Tasks[0].Duration = 5
	r := New().Validate(ds)

	got := r.ByKind(findings.KindPhaseSlotSaturation)
	if len(got) != 2 {
		t.Fatalf("phase_slot_saturation = %+v, want phases 1 and 2", got)
	}
	for i, want := range []int{1, 2} {
		if got[i].Value != want {
			t.Errorf("finding %d Value = %v, want %d", i, got[i].Value, want)
		}
		if got[i].Entity != dataset.EntityGeneral || got[i].Row != nil || got[i].Column != "" {
			t.Errorf("finding %d should be global: %+v", i, got[i])
		}
	}
}

func TestFloatingTasksLoadEveryPhase(t *testing.T) {
	ds := cleanDataset()
	ds.Tasks = append(ds.Tasks, dataset.Task{
		TaskID: "T3", TaskName: "Any", Category: "ops", Duration: 2, RequiredSkills: "go", MaxConcurrent: 1,
	})
	r := New().Validate(ds)

	// capacity 1:2 2:4 3:4 4:2, demand 1:4 2:4 3:3 4:3
	got := r.ByKind(findings.KindPhaseSlotSaturation)
	if len(got) != 2 || got[0].Value != 1 || got[1].Value != 4 {
		t.Errorf("phase_slot_saturation = %+v, want phases 1 and 4", got)
	}
}

func TestPhaseRange(t *testing.T) {
	ds := cleanDataset()
	ds.Workers[0].AvailableSlots = "0,1,2,3"
	ds.Tasks[1].PreferredPhases = "3,25"
	r := New().Validate(ds)

	got := r.ByKind(findings.KindPhaseRange)
	if len(got) != 2 {
		t.Fatalf("phase_range = %+v, want 2", got)
	}
	for _, f := range got {
		if f.Severity != findings.SeverityWarning {
			t.Errorf("phase_range severity = %s", f.Severity)
		}
	}
	if got[0].Value != 0 || got[1].Value != 25 {
		t.Errorf("phase_range values = %v, %v", got[0].Value, got[1].Value)
	}
}

func TestAdvisories(t *testing.T) {
	ds := cleanDataset()
	ds.Tasks[1].PreferredPhases = "soon"
	ds.Workers[1].Skills = " , "
	ds.Clients[0].RequestedTaskIDs = ""
	r := New().Validate(ds)

	for _, k := range []findings.Kind{findings.KindNoPreferredPhases, findings.KindNoSkills, findings.KindNoRequestedTasks} {
		got := r.ByKind(k)
		if len(got) != 1 || got[0].Severity != findings.SeverityWarning {
			t.Errorf("%s = %+v", k, got)
		}
	}
}

func TestCustomLimits(t *testing.T) {
	limits := DefaultLimits()
	limits.PriorityMax = 10
	v := New(WithLimits(limits))

	ds := cleanDataset()
	ds.Clients[0].PriorityLevel = 7
	if r := v.Validate(ds); r.HasKind(findings.KindOutOfRange) {
		t.Error("PriorityLevel 7 should be valid with PriorityMax 10")
	}
	if v.Limits().PriorityMax != 10 {
		t.Errorf("Limits() = %+v", v.Limits())
	}
}

func TestConcurrentValidation(t *testing.T) {
	v := New()
	var wg sync.WaitGroup
	results := make([]*findings.Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds := cleanDataset()
			ds.Clients[0].PriorityLevel = i
			results[i] = v.Validate(ds)
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		wantErr := i < 1 || i > 5
		if r.HasKind(findings.KindOutOfRange) != wantErr {
			t.Errorf("priority %d: out_of_range present = %v, want %v", i, !wantErr, wantErr)
		}
	}
}
