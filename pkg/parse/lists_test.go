package parse

import (
	"reflect"
	"testing"
)

func TestParseCommaList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: []string{}},
		{name: "single", raw: "Go", want: []string{"Go"}},
		{name: "trimmed", raw: " Go , Rust ,SQL", want: []string{"Go", "Rust", "SQL"}},
		{name: "empty tokens filtered", raw: "a,,b, ,", want: []string{"a", "b"}},
		{name: "order preserved", raw: "T3,T1,T2", want: []string{"T3", "T1", "T2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCommaList(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseCommaList(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFoldSet(t *testing.T) {
	set := FoldSet("Go, go, RUST")
	if len(set) != 2 {
		t.Fatalf("FoldSet() size = %d, want 2", len(set))
	}
	for _, k := range []string{"go", "rust"} {
		if _, ok := set[k]; !ok {
			t.Errorf("FoldSet() missing %q", k)
		}
	}
}
