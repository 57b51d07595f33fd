package findings

import (
	"fmt"
	"strings"
)

// SuggestName suggests the closest valid name for an unknown one using
// Levenshtein distance. It returns "" when validNames is empty.
func SuggestName(unknown string, validNames []string) string {
	if len(validNames) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string
	for _, name := range validNames {
		dist := levenshteinDistance(strings.ToLower(unknown), strings.ToLower(name))
		if dist < minDistance {
			minDistance = dist
			bestMatch = name
		}
	}

	// Only suggest if the distance is reasonable
	if minDistance < 5 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	if len(validNames) > 5 {
		return fmt.Sprintf("Valid values include: %s, ...", strings.Join(validNames[:5], ", "))
	}
	return fmt.Sprintf("Valid values: %s", strings.Join(validNames, ", "))
}

// SuggestClamp describes clamping a value into [lo, hi].
func SuggestClamp(column string, value, lo, hi int) (int, string) {
	clamped := value
	if value < lo {
		clamped = lo
	} else if value > hi {
		clamped = hi
	}
	return clamped, fmt.Sprintf("Set %s to %d", column, clamped)
}

// levenshteinDistance computes the Levenshtein distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}
