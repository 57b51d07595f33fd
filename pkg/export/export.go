// Package export builds the rules.json document handed to a downstream
// allocator: the active rules, the prioritization weights and the state of
// the data they were validated against.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/findings"
	"mercator-hq/tessera/pkg/rules"
)

// DefaultVersion is the document version written when none is configured.
const DefaultVersion = "1.0"

// DefaultWeights returns the standard prioritization weights.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"priorityLevel":   0.30,
		"taskFulfillment": 0.25,
		"fairness":        0.15,
		"workloadBalance": 0.15,
		"phasePreference": 0.15,
	}
}

// Document is the rules.json export.
type Document struct {
	Version  string             `json:"version"`
	Rules    []rules.Rule       `json:"rules"`
	Weights  map[string]float64 `json:"prioritization"`
	Metadata Metadata           `json:"metadata"`
}

// Metadata describes the data a Document was generated against.
type Metadata struct {
	GeneratedAt          time.Time            `json:"generated_at"`
	EntityCounts         dataset.EntityCounts `json:"entity_counts"`
	ValidationPassed     bool                 `json:"validation_passed"`
	RuleValidationPassed bool                 `json:"rule_validation_passed"`
	TotalRules           int                  `json:"total_rules"`
	ActiveRules          int                  `json:"active_rules"`
	Conflicts            int                  `json:"conflicts"`
}

// Input collects everything a Document is built from. DataResult and
// RuleResult may be nil when the corresponding validation was not run; the
// matching passed flag is then false.
type Input struct {
	Version    string
	Rules      []rules.Rule
	Weights    map[string]float64
	Counts     dataset.EntityCounts
	DataResult *findings.Result
	RuleResult *rules.Result
	Now        time.Time
}

// Build assembles a Document. Only active rules are exported. Weights are
// scaled to sum to 1; a nil or all-zero weight map falls back to
// DefaultWeights.
func Build(in Input) *Document {
	version := in.Version
	if version == "" {
		version = DefaultVersion
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	active := rules.Active(in.Rules)
	doc := &Document{
		Version: version,
		Rules:   active,
		Weights: NormalizeWeights(in.Weights),
		Metadata: Metadata{
			GeneratedAt:  now.UTC(),
			EntityCounts: in.Counts,
			TotalRules:   len(in.Rules),
			ActiveRules:  len(active),
		},
	}
	if in.DataResult != nil {
		doc.Metadata.ValidationPassed = in.DataResult.IsValid
	}
	if in.RuleResult != nil {
		doc.Metadata.RuleValidationPassed = in.RuleResult.IsValid
		doc.Metadata.Conflicts = len(in.RuleResult.Conflicts)
	}
	return doc
}

// ValidateWeights rejects negative, NaN or infinite weights.
func ValidateWeights(w map[string]float64) error {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := w[name]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("weight %q must be a finite non-negative number, got %v", name, v)
		}
	}
	return nil
}

// NormalizeWeights returns a copy of w scaled so its values sum to 1.
// Invalid weights are dropped. When nothing positive remains,
// DefaultWeights is returned.
func NormalizeWeights(w map[string]float64) map[string]float64 {
	total := 0.0
	for _, v := range w {
		if v > 0 && !math.IsInf(v, 0) {
			total += v
		}
	}
	if total == 0 {
		return DefaultWeights()
	}

	out := make(map[string]float64, len(w))
	for name, v := range w {
		if v > 0 && !math.IsInf(v, 0) {
			out[name] = v / total
		}
	}
	return out
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export document: %w", err)
	}
	return nil
}

// Read decodes a Document written by Write.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode export document: %w", err)
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("export document has no version")
	}
	return &doc, nil
}
