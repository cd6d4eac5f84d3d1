// AngelaMos | 2026
// matcher.go

package reply

import (
	"strings"
)

// matchAny reports whether any term is a case-insensitive substring of text.
// Empty terms never match.
func matchAny(text string, terms []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if term != "" && strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// matchAll returns every term that occurs in text, in the order given.
func matchAll(text string, terms []string) []string {
	lowered := strings.ToLower(text)
	found := make([]string, 0, len(terms))
	for _, term := range terms {
		if term != "" && strings.Contains(lowered, strings.ToLower(term)) {
			found = append(found, term)
		}
	}
	return found
}
