package logging

import "context"

type contextKey string

const (
	// RunIDKey is the context key for validation run IDs.
	RunIDKey contextKey = "run_id"

	// SourceKey is the context key for the dataset being validated.
	SourceKey contextKey = "source"

	// RulesSourceKey is the context key for the rule file being validated.
	RulesSourceKey contextKey = "rules_source"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if v, ok := ctx.Value(RunIDKey).(string); ok {
		return v
	}
	return ""
}

// WithSource adds the dataset source to the context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

// GetSource retrieves the dataset source from the context.
func GetSource(ctx context.Context) string {
	if v, ok := ctx.Value(SourceKey).(string); ok {
		return v
	}
	return ""
}

// WithRulesSource adds the rule file to the context.
func WithRulesSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, RulesSourceKey, source)
}

// GetRulesSource retrieves the rule file from the context.
func GetRulesSource(ctx context.Context) string {
	if v, ok := ctx.Value(RulesSourceKey).(string); ok {
		return v
	}
	return ""
}

// extractContextFields returns the run fields in ctx as slog key/value
// pairs.
func extractContextFields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}

	var fields []any
	if v := GetRunID(ctx); v != "" {
		fields = append(fields, string(RunIDKey), v)
	}
	if v := GetSource(ctx); v != "" {
		fields = append(fields, string(SourceKey), v)
	}
	if v := GetRulesSource(ctx); v != "" {
		fields = append(fields, string(RulesSourceKey), v)
	}
	return fields
}
