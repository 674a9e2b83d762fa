package visual

import (
	"regexp"
	"strings"
)

var (
	// Words that show a capture swallowed part of a bilingual label or a
	// card header instead of a name.
	labelFragments = []string{
		"SURNAME", "GIVEN", "NAMES", "BIRTH", "NAISSANCE", "DATE",
		"EXPIR", "IDENTITY", "CAMEROUN", "CAMEROON", "NATIONAL", "REPUBLIC",
	}

	// A line holding two or more of these is a label line, not a value.
	labelKeywords = []string{
		"NOM", "SURNAME", "PRENOM", "GIVEN", "NAME", "DATE", "NAISSANCE", "BIRTH",
		"SEXE", "SEX", "TAILLE", "HEIGHT", "LIEU", "PLACE", "PROFESSION", "OCCUPATION",
	}

	// Two-letter words that belong to names rather than OCR noise.
	nameParticles = map[string]bool{
		"DE": true, "DI": true, "DU": true, "DA": true, "EL": true,
		"AL": true, "LE": true, "LA": true, "EP": true,
	}

	notNameChars = regexp.MustCompile(`[^A-ZÀ-Üa-zà-ü \-]`)
)

const minRealWord = 3

func isPlausibleName(s string) bool {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if len(upper) < 2 {
		return false
	}
	for _, f := range labelFragments {
		if strings.Contains(upper, f) {
			return false
		}
	}
	return true
}

func looksLikeLabel(s string) bool {
	hits := 0
	for _, kw := range labelKeywords {
		if strings.Contains(s, kw) {
			hits++
		}
	}
	return hits >= 2
}

// cleanName drops OCR noise around a captured name. Words of three letters
// or more and known particles are kept; the first short non-particle word
// after a real word ends the name ("ETONGO SR LEE" is "ETONGO"). It returns
// "" when nothing survives.
func cleanName(raw string) string {
	var kept []string
	sawReal := false
	for _, w := range strings.Fields(strings.ToUpper(raw)) {
		full := len([]rune(w)) >= minRealWord
		if full || nameParticles[w] {
			kept = append(kept, w)
			if full {
				sawReal = true
			}
			continue
		}
		if sawReal {
			break
		}
	}
	return strings.Join(kept, " ")
}

// nameLine reduces an OCR line to the characters a name can hold.
func nameLine(line string) string {
	return strings.ToUpper(strings.TrimSpace(notNameChars.ReplaceAllString(strings.TrimSpace(line), "")))
}

// acceptableValue reports whether a cleaned line can stand as a name value.
func acceptableValue(cleaned string) bool {
	return len(cleaned) >= 2 && isPlausibleName(cleaned) && !looksLikeLabel(cleaned)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
