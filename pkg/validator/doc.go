// Package validator checks a clients/workers/tasks dataset for structural and
// cross-entity problems.
//
// A Validator runs a fixed sequence of checks over a dataset and returns a
// findings.Result holding errors, warnings and directly applicable fixes:
//
//   - required identifiers and duplicate identifiers
//   - numeric ranges (PriorityLevel, QualificationLevel, Duration,
//     MaxLoadPerPhase, MaxConcurrent)
//   - malformed phase lists and invalid AttributesJSON
//   - unknown task references and uncovered skills
//   - worker overload, infeasible concurrency and phase saturation
//   - out-of-range phases and advisory warnings
//
// Validate never modifies its input. Use dataset.Normalize to canonicalize
// PreferredPhases before validating, or apply the returned fixes with the
// fixes package.
//
// Basic usage:
//
//	v := validator.New()
//	result := v.Validate(ds)
//	if !result.IsValid {
//		for _, f := range result.Errors {
//			fmt.Println(f)
//		}
//	}
package validator
