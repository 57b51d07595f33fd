package parse

import "strings"

// ParseCommaList splits a comma-separated list of skills or IDs into trimmed,
// non-empty strings in input order. Empty tokens are dropped silently.
func ParseCommaList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	tokens := strings.Split(raw, ",")
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// FoldSet returns the lower-cased distinct members of a comma list.
// Skill comparisons are case-insensitive throughout.
func FoldSet(raw string) map[string]struct{} {
	items := ParseCommaList(raw)
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = struct{}{}
	}
	return set
}
