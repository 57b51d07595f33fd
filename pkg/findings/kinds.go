package findings

// Kind tags the defect a finding reports.
type Kind string

// Dataset finding kinds.
const (
	KindMissingRequired          Kind = "missing_required"
	KindMissingOptional          Kind = "missing_optional"
	KindDuplicateID              Kind = "duplicate_id"
	KindOutOfRange               Kind = "out_of_range"
	KindUnusualValue             Kind = "unusual_value"
	KindMalformedArray           Kind = "malformed_array"
	KindInvalidJSON              Kind = "invalid_json"
	KindUnknownReference         Kind = "unknown_reference"
	KindSkillCoverage            Kind = "skill_coverage"
	KindWorkerOverload           Kind = "worker_overload"
	KindMaxConcurrencyInfeasible Kind = "max_concurrency_infeasible"
	KindPhaseSlotSaturation      Kind = "phase_slot_saturation"
	KindPhaseRange               Kind = "phase_range"
	KindNoPreferredPhases        Kind = "no_preferred_phases"
	KindNoSkills                 Kind = "no_skills"
	KindNoRequestedTasks         Kind = "no_requested_tasks"
)

// Rule finding kinds.
const (
	KindMissingRuleID            Kind = "missing_rule_id"
	KindDuplicateRuleID          Kind = "duplicate_rule_id"
	KindMissingRuleSpec          Kind = "missing_rule_spec"
	KindInvalidCoRunTasks        Kind = "invalid_corun_tasks"
	KindMissingCoRunTasks        Kind = "missing_corun_tasks"
	KindCoRunPhaseConflict       Kind = "corun_phase_conflict"
	KindMissingRestrictionTarget Kind = "missing_restriction_target"
	KindInvalidMinSlots          Kind = "invalid_min_slots"
	KindMissingClientGroup       Kind = "missing_client_group"
	KindMissingWorkerGroup       Kind = "missing_worker_group"
	KindPhaseOutOfBounds         Kind = "phase_out_of_bounds"
	KindInsufficientCommonSlots  Kind = "insufficient_common_slots"
	KindMissingLoadTarget        Kind = "missing_load_target"
	KindInvalidMaxSlots          Kind = "invalid_max_slots"
	KindExcessiveLoadLimit       Kind = "excessive_load_limit"
	KindMissingTask              Kind = "missing_task"
	KindNoAllowedPhases          Kind = "no_allowed_phases"
	KindPhasePreferenceConflict  Kind = "phase_preference_conflict"
	KindConflictingPhases        Kind = "conflicting_phases"
	KindInvalidPattern           Kind = "invalid_pattern"
	KindInvalidEntity            Kind = "invalid_entity"
	KindInvalidField             Kind = "invalid_field"
	KindNoPatternMatches         Kind = "no_pattern_matches"
	KindMissingGlobalRule        Kind = "missing_global_rule"
	KindMissingConditions        Kind = "missing_specific_conditions"
	KindMissingOverrideAction    Kind = "missing_override_action"
	KindUnknownGlobalRule        Kind = "unknown_global_rule"
)

// Category is the presentation bucket a finding kind belongs to.
type Category string

const (
	CategoryCritical      Category = "CRITICAL"
	CategoryDataIntegrity Category = "DATA_INTEGRITY"
	CategoryBusinessLogic Category = "BUSINESS_LOGIC"
	CategoryWarnings      Category = "WARNINGS"
	CategoryOther         Category = "OTHER"
)

// Categories lists the presentation buckets in display order.
var Categories = []Category{
	CategoryCritical,
	CategoryDataIntegrity,
	CategoryBusinessLogic,
	CategoryWarnings,
	CategoryOther,
}

var categoryByKind = map[Kind]Category{
	KindMissingRequired:  CategoryCritical,
	KindDuplicateID:      CategoryCritical,
	KindUnknownReference: CategoryCritical,

	KindMalformedArray: CategoryDataIntegrity,
	KindInvalidJSON:    CategoryDataIntegrity,
	KindOutOfRange:     CategoryDataIntegrity,

	KindSkillCoverage:            CategoryBusinessLogic,
	KindWorkerOverload:           CategoryBusinessLogic,
	KindMaxConcurrencyInfeasible: CategoryBusinessLogic,

	KindUnusualValue:     CategoryWarnings,
	KindNoSkills:         CategoryWarnings,
	KindNoRequestedTasks: CategoryWarnings,
	KindPhaseRange:       CategoryWarnings,
}

// criticalKinds is the allowlist counted by Summary.CriticalErrors. It differs
// from CategoryCritical: skill_coverage is counted here but presented under
// CategoryBusinessLogic.
var criticalKinds = map[Kind]bool{
	KindMissingRequired:  true,
	KindDuplicateID:      true,
	KindUnknownReference: true,
	KindSkillCoverage:    true,
}

// CategoryOf returns the presentation category for a finding kind.
func CategoryOf(k Kind) Category {
	if c, ok := categoryByKind[k]; ok {
		return c
	}
	return CategoryOther
}

// IsCritical reports whether an error of kind k counts as critical.
func IsCritical(k Kind) bool {
	return criticalKinds[k]
}
