package vectorize

import (
	"strings"
	"unicode"
)

// words lower-cases text and splits it into runs of letters and digits.
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Tokenize returns the terms of text: every word followed by every
// adjacent word pair joined with a single space.
func Tokenize(text string) []string {
	unigrams := words(text)
	if len(unigrams) == 0 {
		return nil
	}

	terms := make([]string, 0, 2*len(unigrams)-1)
	terms = append(terms, unigrams...)
	for i := 1; i < len(unigrams); i++ {
		terms = append(terms, unigrams[i-1]+" "+unigrams[i])
	}
	return terms
}
