package verification

import (
	"fmt"
	"strings"

	"docverify/internal/document/textfold"
)

// MatchMode selects how extracted names are compared with claimed names.
type MatchMode string

const (
	// MatchStrict compares folded names for equality.
	MatchStrict MatchMode = "strict"
	// MatchFuzzy also accepts containment and small OCR edit distances.
	MatchFuzzy MatchMode = "fuzzy"
)

// ParseMatchMode accepts "strict" and "fuzzy"; empty means strict.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchStrict:
		return MatchStrict, nil
	case MatchFuzzy:
		return MatchFuzzy, nil
	}
	return "", fmt.Errorf("unknown name match mode %q", s)
}

const (
	maxEditDistance = 2
	minFuzzyLen     = 4
)

type nameMatcher func(extracted, claimed string) bool

func matcherFor(mode MatchMode) nameMatcher {
	if mode == MatchFuzzy {
		return fuzzyMatch
	}
	return strictMatch
}

func strictMatch(extracted, claimed string) bool {
	e, c := textfold.Name(extracted), textfold.Name(claimed)
	return e != "" && e == c
}

// fuzzyMatch tolerates what OCR does to names: extra given names on the
// document, separators read as letters, and a couple of misread characters
// per word.
func fuzzyMatch(extracted, claimed string) bool {
	e, c := textfold.Name(extracted), textfold.Name(claimed)
	if e == "" || c == "" {
		return false
	}
	if e == c || strings.Contains(e, c) || strings.Contains(c, e) {
		return true
	}
	ec, cc := strings.ReplaceAll(e, " ", ""), strings.ReplaceAll(c, " ", "")
	if near(ec, cc) {
		return true
	}
	for _, ew := range strings.Fields(e) {
		for _, cw := range strings.Fields(c) {
			if ew == cw || near(ew, cw) {
				return true
			}
		}
	}
	return false
}

func near(a, b string) bool {
	return len([]rune(a)) >= minFuzzyLen && len([]rune(b)) >= minFuzzyLen &&
		levenshtein(a, b) <= maxEditDistance
}

func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}
