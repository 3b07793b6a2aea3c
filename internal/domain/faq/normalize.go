package faq

import (
	"strings"
	"unicode"
)

// canonicalQuestion folds a question into its trending key: lower case,
// letters and digits only, words joined by single spaces.
func canonicalQuestion(q string) string {
	words := strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, " ")
}
