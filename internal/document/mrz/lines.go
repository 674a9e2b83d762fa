package mrz

import (
	"regexp"
	"strings"
)

var (
	lineSplit   = regexp.MustCompile(`\r?\n`)
	mrzLine     = regexp.MustCompile(`^[A-Z0-9<]{28,44}$`)
	fillerGlyph = strings.NewReplacer(" ", "", "«", "<", "»", "<", "(", "<", ")", "<", "{", "<", "[", "<")
)

// ExtractLines returns the lines of text that look like MRZ lines once OCR
// artifacts are normalized: spaces dropped, bracket-like glyphs read as filler,
// uppercased, 28 to 44 characters of [A-Z0-9<].
func ExtractLines(text string) []string {
	var out []string
	for _, raw := range lineSplit.Split(text, -1) {
		cleaned := strings.ToUpper(fillerGlyph.Replace(strings.TrimSpace(raw)))
		if mrzLine.MatchString(cleaned) {
			out = append(out, cleaned)
		}
	}
	return out
}

// padOrTrim fits s to width, padding with filler.
func padOrTrim(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat("<", width-len(s))
}
