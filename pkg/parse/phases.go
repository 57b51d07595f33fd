package parse

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenError describes a list token that could not be parsed as an integer.
// The token is dropped from the parsed output; parsing continues with the
// remaining tokens.
type TokenError struct {
	// Token is the offending token, trimmed of surrounding whitespace.
	Token string

	// Position is the 0-based index of the token in the comma-split input.
	Position int
}

// Error implements the error interface.
func (e TokenError) Error() string {
	return fmt.Sprintf("malformed phase token %q at position %d", e.Token, e.Position)
}

// ParsePhaseList parses a phase list into an ordered sequence of integers.
//
// Accepted forms:
//
//	""        -> []
//	"[1,2,3]" -> [1 2 3]
//	"1,2,3"   -> [1 2 3]
//	"2-5"     -> [2 3 4 5]
//
// The range form applies only when the input contains '-' but no ',' and both
// endpoints are integers with start <= end spanning at most MaxRangeSpan
// phases. Otherwise the input is split on
// commas. Tokens that are not integers are reported and skipped. Empty tokens
// (e.g. a trailing comma) are skipped without being reported.
func ParsePhaseList(raw string) ([]int, []TokenError) {
	s := stripBrackets(strings.TrimSpace(raw))
	if s == "" {
		return []int{}, nil
	}

	if strings.Contains(s, "-") && !strings.Contains(s, ",") {
		if phases, ok := parseRange(s); ok {
			return phases, nil
		}
	}

	tokens := strings.Split(s, ",")
	phases := make([]int, 0, len(tokens))
	var errs []TokenError
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			errs = append(errs, TokenError{Token: tok, Position: i})
			continue
		}
		phases = append(phases, n)
	}
	return phases, errs
}

// MaxRangeSpan bounds the number of phases a single "a-b" range may expand to.
// Wider ranges are treated as malformed tokens.
const MaxRangeSpan = 1000

// parseRange expands "a-b" into [a..b]. It reports false when the input is
// not a well-formed ascending range of at most MaxRangeSpan phases so callers
// can fall back to comma splitting.
func parseRange(s string) ([]int, bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return nil, false
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, false
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, false
	}
	if start > end {
		return nil, false
	}
	span := end - start
	if span < 0 || span >= MaxRangeSpan {
		return nil, false
	}

	phases := make([]int, 0, span+1)
	for p := start; p <= end; p++ {
		phases = append(phases, p)
	}
	return phases, true
}

// FormatPhaseList serializes phases in canonical "n,n,n" form.
func FormatPhaseList(phases []int) string {
	parts := make([]string, len(phases))
	for i, p := range phases {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

// FormatBracketed serializes phases in canonical bracketed "[n,n,n]" form.
func FormatBracketed(phases []int) string {
	return "[" + FormatPhaseList(phases) + "]"
}

// NormalizeRaw strips whitespace and brackets from a raw list so it can be
// compared against a canonical serialization.
func NormalizeRaw(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case ' ', '\t', '\n', '\r', '[', ']':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// PhaseSet returns the distinct phases of a parsed list.
func PhaseSet(phases []int) map[int]struct{} {
	set := make(map[int]struct{}, len(phases))
	for _, p := range phases {
		set[p] = struct{}{}
	}
	return set
}

func stripBrackets(s string) string {
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	return strings.TrimSpace(s)
}
