package visual

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Inline label patterns: label and value on the same line. [ \t] rather
// than \s between label and value keeps a match from running into the next
// line, and the value classes use a literal space for the same reason.
var (
	surnameLabel = regexp.MustCompile(`(?i)(?:NOM[ \t]*(?:[/|I][ \t]*SURNAME)?|SURNAME)[ \t]*:?[ \t]+([A-ZÀ-Ü][A-ZÀ-Ü \-]{1,})`)
	givenLabel   = regexp.MustCompile(`(?i)(?:PR[EÉ]NOMS?[ \t]*(?:[/|I][ \t]*GIVEN[ \t]*NAMES?)?|GIVEN[ \t]*NAMES?)[ \t]*:?[ \t]+([A-ZÀ-Ü][A-ZÀ-Ü \-]{1,})`)
	birthLabel   = regexp.MustCompile(`(?i)(?:DATE[ \t]*DE[ \t]*NAISSANCE|DATE[ \t]*OF[ \t]*BIRTH|N[EÉ][E(]?[)]?[ \t]*LE)[ \t]*[:/]?[ \t]*(\d{2}\s*[./\-\s]\s*\d{2}\s*[./\-\s]\s*\d{4})`)
	sexLabel     = regexp.MustCompile(`(?i)SEXE?[ \t]*[:/]?[ \t]*([MF])\b`)
	expiryLabel  = regexp.MustCompile(`(?i)(?:DATE[ \t]*D['’‘` + "`" + `]?EXPIRATION|DATE[ \t]*OF[ \t]*EXPIRY|EXPIRE[ \t]*LE)[ \t]*[:/]?[ \t]*(\d{2}\s*[./\-\s]\s*\d{2}\s*[./\-\s]\s*\d{4})`)
	nicLabel     = regexp.MustCompile(`(?i)(?:IDENTIFIANT[ \t]*UNIQUE|UNIQUE[ \t]*IDENTIFIER|N[°o]?[ \t]*CNI)[ \t]*[:/]?[ \t]*([A-Z0-9]{5,})`)
)

// matcher finds the first capture of a label pattern.
type matcher func(text string) string

func first(re *regexp.Regexp) matcher {
	return func(text string) string {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return ""
		}
		return strings.TrimSpace(m[1])
	}
}

// firstStandalone is first for patterns whose label must not be the tail of
// a longer word, so NOM is never read out of PRÉNOMS.
func firstStandalone(re *regexp.Regexp) matcher {
	return func(text string) string {
		for pos := 0; pos < len(text); {
			loc := re.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return ""
			}
			start := pos + loc[0]
			if prev, _ := utf8.DecodeLastRuneInString(text[:start]); start > 0 && unicode.IsLetter(prev) {
				_, size := utf8.DecodeRuneInString(text[start:])
				pos = start + size
				continue
			}
			return strings.TrimSpace(text[pos+loc[2] : pos+loc[3]])
		}
		return ""
	}
}

// lookup tries each text in order and returns the first capture.
func lookup(m matcher, texts ...string) string {
	for _, t := range texts {
		if t == "" {
			continue
		}
		if v := m(t); v != "" {
			return v
		}
	}
	return ""
}

var (
	findSurname = firstStandalone(surnameLabel)
	findGiven   = first(givenLabel)
	findBirth   = first(birthLabel)
	findSex     = first(sexLabel)
	findExpiry  = first(expiryLabel)
	findNIC     = first(nicLabel)
)
