package visual

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"docverify/internal/document/textfold"
)

// Older cards print each label on its own line with the value below it. OCR
// often garbles the label but keeps a recognizable keyword.
var (
	surnameKeywords = []string{"NOM", "SURNAM"}
	givenKeywords   = []string{"PRENOM", "GIVEN"}
	birthKeywords   = []string{"NAISSANCE", "AISSANCE", "BIRTH"}
	expiryKeywords  = []string{"EXPIR", "EXPI"}

	lineDate = regexp.MustCompile(`\d{2}\s*[./\-]\s*\d{2}\s*[./\-]\s*\d{4}`)
)

const (
	// Keywords this short must start a word.
	shortKeyword = 4
	// How many lines after a label line may hold its value, label included
	// for dates.
	valueWindow = 3
)

func containsKeyword(line, keyword string) bool {
	folded := textfold.Upper(line)
	for from := 0; ; {
		idx := strings.Index(folded[from:], keyword)
		if idx < 0 {
			return false
		}
		idx += from
		if len(keyword) > shortKeyword || idx == 0 {
			return true
		}
		if prev, _ := utf8.DecodeLastRuneInString(folded[:idx]); !unicode.IsLetter(prev) {
			return true
		}
		from = idx + 1
	}
}

func keywordIn(line string, keywords []string) bool {
	for _, kw := range keywords {
		if containsKeyword(line, kw) {
			return true
		}
	}
	return false
}

// nameBelowKeyword finds the first line carrying one of keywords and
// returns the first acceptable name on the next two lines. A label line
// with nothing usable below it does not end the search.
func nameBelowKeyword(lines []string, keywords []string) string {
	for i := 0; i < len(lines)-1; i++ {
		if !keywordIn(lines[i], keywords) {
			continue
		}
		for j := i + 1; j < min(i+valueWindow, len(lines)); j++ {
			if strings.TrimSpace(lines[j]) == "" {
				continue
			}
			if cleaned := nameLine(lines[j]); acceptableValue(cleaned) {
				return cleaned
			}
		}
	}
	return ""
}

// dateNearKeyword returns the first date on a keyword line or the two lines
// after it.
func dateNearKeyword(lines []string, keywords []string) string {
	for i := range lines {
		if !keywordIn(lines[i], keywords) {
			continue
		}
		for j := i; j < min(i+valueWindow, len(lines)); j++ {
			if m := lineDate.FindString(lines[j]); m != "" {
				return m
			}
		}
	}
	return ""
}
