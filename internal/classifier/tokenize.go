package classifier

import (
	"strings"
	"unicode"
)

// Tokenize lowercases code and splits it into maximal runs of letters, digits
// and underscores. Tokens shorter than minLen runes are dropped.
func Tokenize(code string, minLen int) []string {
	isToken := func(r rune) bool {
		return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	fields := strings.FieldsFunc(strings.ToLower(code), func(r rune) bool { return !isToken(r) })
	if minLen <= 1 {
		return fields
	}
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minLen {
			out = append(out, f)
		}
	}
	return out
}
