package findings

import (
	"strings"
	"testing"

	"mercator-hq/tessera/pkg/dataset"
)

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		kind Kind
		want Category
	}{
		{KindMissingRequired, CategoryCritical},
		{KindDuplicateID, CategoryCritical},
		{KindUnknownReference, CategoryCritical},
		{KindMalformedArray, CategoryDataIntegrity},
		{KindInvalidJSON, CategoryDataIntegrity},
		{KindOutOfRange, CategoryDataIntegrity},
		{KindSkillCoverage, CategoryBusinessLogic},
		{KindWorkerOverload, CategoryBusinessLogic},
		{KindMaxConcurrencyInfeasible, CategoryBusinessLogic},
		{KindUnusualValue, CategoryWarnings},
		{KindNoSkills, CategoryWarnings},
		{KindNoRequestedTasks, CategoryWarnings},
		{KindPhaseRange, CategoryWarnings},
		{KindPhaseSlotSaturation, CategoryOther},
		{KindMissingOptional, CategoryOther},
		{Kind("made_up"), CategoryOther},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := CategoryOf(tt.kind); got != tt.want {
				t.Errorf("CategoryOf(%s) = %s, want %s", tt.kind, got, tt.want)
			}
		})
	}
}

func TestIsCritical(t *testing.T) {
	critical := []Kind{KindMissingRequired, KindDuplicateID, KindUnknownReference, KindSkillCoverage}
	for _, k := range critical {
		if !IsCritical(k) {
			t.Errorf("IsCritical(%s) = false, want true", k)
		}
	}
	for _, k := range []Kind{KindOutOfRange, KindWorkerOverload, KindPhaseSlotSaturation} {
		if IsCritical(k) {
			t.Errorf("IsCritical(%s) = true, want false", k)
		}
	}
}

func TestCollectorResult(t *testing.T) {
	c := NewCollector()
	c.Error(Finding{Kind: KindDuplicateID, Message: "dup", Entity: dataset.EntityTasks, Row: Row(0)})
	c.Error(Finding{Kind: KindOutOfRange, Message: "range"})
	c.Error(Finding{Kind: KindSkillCoverage, Message: "skill"})
	c.Warning(Finding{Kind: KindNoSkills, Message: "no skills"})
	c.Fix(Fix{Kind: KindOutOfRange, Column: "PriorityLevel", Value: 5})

	r := c.Result(dataset.EntityCounts{Tasks: 2})

	if r.IsValid {
		t.Error("IsValid = true with errors present")
	}
	if r.Summary.TotalErrors != 3 || r.Summary.TotalWarnings != 1 {
		t.Errorf("Summary = %+v", r.Summary)
	}
	if r.Summary.CriticalErrors != 2 {
		t.Errorf("CriticalErrors = %d, want 2", r.Summary.CriticalErrors)
	}
	if r.Summary.EntityCounts.Tasks != 2 {
		t.Errorf("EntityCounts = %+v", r.Summary.EntityCounts)
	}
	for _, f := range r.Errors {
		if f.Severity != SeverityError {
			t.Errorf("error finding has severity %s", f.Severity)
		}
	}
	if r.Warnings[0].Severity != SeverityWarning {
		t.Errorf("warning finding has severity %s", r.Warnings[0].Severity)
	}
	if len(r.Fixes) != 1 {
		t.Errorf("Fixes = %d, want 1", len(r.Fixes))
	}
}

func TestWarningsDoNotBlockValidity(t *testing.T) {
	c := NewCollector()
	c.Warning(Finding{Kind: KindPhaseRange})
	if r := c.Result(dataset.EntityCounts{}); !r.IsValid {
		t.Error("IsValid = false with only warnings")
	}
}

func TestCategorize(t *testing.T) {
	c := NewCollector()
	c.Error(Finding{Kind: KindDuplicateID})
	c.Error(Finding{Kind: KindInvalidJSON})
	c.Warning(Finding{Kind: KindNoSkills})
	c.Warning(Finding{Kind: KindMissingOptional})
	groups := Categorize(c.Result(dataset.EntityCounts{}))

	want := map[Category]int{
		CategoryCritical:      1,
		CategoryDataIntegrity: 1,
		CategoryWarnings:      1,
		CategoryOther:         1,
	}
	for cat, n := range want {
		if len(groups[cat]) != n {
			t.Errorf("Categorize()[%s] = %d findings, want %d", cat, len(groups[cat]), n)
		}
	}
	if _, ok := groups[CategoryBusinessLogic]; ok {
		t.Error("empty category should be omitted")
	}
}

func TestPartition(t *testing.T) {
	fs := []Finding{
		{Kind: KindSkillCoverage, Severity: SeverityError},
		{Kind: KindOutOfRange, Severity: SeverityError},
		{Kind: KindDuplicateID, Severity: SeverityWarning},
	}
	critical, cosmetic := Partition(fs)
	if len(critical) != 1 || critical[0].Kind != KindSkillCoverage {
		t.Errorf("critical = %+v", critical)
	}
	if len(cosmetic) != 2 {
		t.Errorf("cosmetic = %+v", cosmetic)
	}
}

func TestFindingString(t *testing.T) {
	f := Finding{
		Kind:       KindOutOfRange,
		Message:    "PriorityLevel 7 is out of range",
		Entity:     dataset.EntityClients,
		Row:        Row(0),
		Column:     "PriorityLevel",
		Suggestion: "Set PriorityLevel to 5",
	}
	s := f.String()
	for _, part := range []string{"[out_of_range]", "clients row 0", "column PriorityLevel", "suggestion: Set PriorityLevel to 5"} {
		if !strings.Contains(s, part) {
			t.Errorf("String() = %q, missing %q", s, part)
		}
	}
}

func TestSuggestName(t *testing.T) {
	got := SuggestName("ClientNme", []string{"ClientID", "ClientName", "GroupTag"})
	if got != "Did you mean 'ClientName'?" {
		t.Errorf("SuggestName() = %q", got)
	}
	if got := SuggestName("x", nil); got != "" {
		t.Errorf("SuggestName(nil) = %q, want empty", got)
	}
	got = SuggestName("completely-unrelated-name", []string{"a", "b"})
	if got != "Valid values: a, b" {
		t.Errorf("SuggestName(far) = %q", got)
	}
}

func TestSuggestClamp(t *testing.T) {
	tests := []struct {
		value int
		want  int
	}{
		{-3, 1}, {0, 1}, {1, 1}, {3, 3}, {5, 5}, {6, 5}, {100, 5},
	}
	for _, tt := range tests {
		got, msg := SuggestClamp("PriorityLevel", tt.value, 1, 5)
		if got != tt.want {
			t.Errorf("SuggestClamp(%d) = %d, want %d", tt.value, got, tt.want)
		}
		if !strings.Contains(msg, "PriorityLevel") {
			t.Errorf("SuggestClamp message = %q", msg)
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
