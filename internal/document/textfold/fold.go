// Package textfold normalizes OCR and user text for comparisons that must
// ignore case and diacritics.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripMarks removes combining marks after canonical decomposition, so
// "PRÉNOMS" becomes "PRENOMS".
func StripMarks(s string) string {
	// Transformers carry state; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Upper strips marks and uppercases.
func Upper(s string) string {
	return strings.ToUpper(StripMarks(s))
}

// Name folds a personal name for equality: marks stripped, uppercased,
// hyphens and apostrophes read as spaces, whitespace collapsed. MRZ renders
// every separator as filler, so "Jean-Pierre" and "JEAN PIERRE" must agree.
func Name(s string) string {
	s = Upper(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '-', '\'', '’', '<', '.':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
