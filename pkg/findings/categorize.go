package findings

// Categorize groups the errors and warnings of a result by presentation
// category. Within a category errors precede warnings and validation order is
// preserved. Categories with no findings are omitted.
func Categorize(r *Result) map[Category][]Finding {
	out := make(map[Category][]Finding)
	for _, f := range r.Errors {
		c := CategoryOf(f.Kind)
		out[c] = append(out[c], f)
	}
	for _, f := range r.Warnings {
		c := CategoryOf(f.Kind)
		out[c] = append(out[c], f)
	}
	return out
}

// Partition splits findings into critical errors, which must be resolved
// before the data can be allocated, and everything else.
func Partition(fs []Finding) (critical, cosmetic []Finding) {
	for _, f := range fs {
		if f.Severity == SeverityError && IsCritical(f.Kind) {
			critical = append(critical, f)
		} else {
			cosmetic = append(cosmetic, f)
		}
	}
	return critical, cosmetic
}
