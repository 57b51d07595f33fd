// Package rules defines the business rules a downstream allocator honors and
// checks them for consistency.
//
// A Rule carries common metadata (id, name, priority, active flag) and a
// type-specific Spec. Spec is a closed set: CoRun, SlotRestriction,
// LoadLimit, PhaseWindow, PatternMatch and PrecedenceOverride. Both the codec
// and the Validator switch over it exhaustively.
//
// # Documents
//
// Rules are read from YAML or JSON, either as a list or under a "rules" key:
//
//	rules:
//	  - id: r1
//	    type: coRun
//	    taskIds: [T1, T2]
//	  - id: r2
//	    type: phaseWindow
//	    taskId: T1
//	    allowedPhases: [1, 2]
//
// Rules without isActive are active. An unknown type is a decode error.
//
// # Validation
//
// Validator.Validate checks every active rule against a dataset, then looks
// for pairs of active rules that contradict each other:
//
//	v := rules.NewValidator()
//	result := v.Validate(ruleList, ds)
//	for _, c := range result.Conflicts {
//		fmt.Printf("%s <-> %s: %s\n", c.Rule1, c.Rule2, c.Type)
//	}
//
// Conflicts never affect Result.IsValid.
package rules
