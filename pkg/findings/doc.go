// Package findings defines the structured output of validation: findings,
// fixes, results and their presentation categories.
//
// A Finding carries a Kind tag (e.g. "duplicate_id"), a Severity and an
// optional record address. Errors block Result.IsValid; warnings never do.
// A Fix is emitted only when a deterministic correction exists.
//
// # Categories
//
// CategoryOf maps each kind to one of the presentation buckets:
//
//	CRITICAL        missing_required, duplicate_id, unknown_reference
//	DATA_INTEGRITY  malformed_array, invalid_json, out_of_range
//	BUSINESS_LOGIC  skill_coverage, worker_overload, max_concurrency_infeasible
//	WARNINGS        unusual_value, no_skills, no_requested_tasks, phase_range
//	OTHER           everything else
//
// Summary.CriticalErrors counts errors whose kind is in a separate allowlist
// (missing_required, duplicate_id, unknown_reference, skill_coverage); see
// IsCritical.
package findings
