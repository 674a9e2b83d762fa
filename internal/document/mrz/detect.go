package mrz

import (
	"slices"
	"strings"

	"docverify/internal/document/domain"
)

var (
	idPrefixes        = []string{"IDCMR", "IDFRA", "I<CMR", "I<FRA"}
	residencePrefixes = []string{"IRFRA"}
	// Issuing countries the parser accepts on passports and OCR-damaged ID prefixes.
	supportedCountries = []string{"CMR", "FRA"}
)

// detection is the outcome of format detection: a layout and its raw lines
// fitted to the layout width.
type detection struct {
	layout Layout
	lines  []string
}

// Detect reports the MRZ format present in lines, trying TD1 before TD3 and
// TD3 before TD2. ok is false when no window of lines fits a known layout.
func Detect(lines []string) (domain.Format, bool) {
	d, ok := detect(lines)
	if !ok {
		return "", false
	}
	return d.layout.Format, true
}

func detect(lines []string) (detection, bool) {
	if d, ok := findTD1(lines); ok {
		return d, true
	}
	if d, ok := findTD3(lines); ok {
		return d, true
	}
	return findTD2(lines)
}

func findTD1(lines []string) (detection, bool) {
	for i := 0; i+3 <= len(lines); i++ {
		l1 := padOrTrim(lines[i], td1.Width)
		switch {
		case hasPrefix(l1, idPrefixes), hasPrefix(l1, residencePrefixes):
		case looksLikeIDCardLine(l1):
			// The filler after I was misread (IKCMR, ICCMR).
			l1 = l1[:1] + "<" + l1[2:]
		default:
			continue
		}
		return detection{layout: td1, lines: []string{
			l1,
			padOrTrim(lines[i+1], td1.Width),
			padOrTrim(lines[i+2], td1.Width),
		}}, true
	}
	return detection{}, false
}

func findTD3(lines []string) (detection, bool) {
	for i := 0; i+2 <= len(lines); i++ {
		l1, l2 := lines[i], lines[i+1]
		if isPassportLine(l1) && len(l1) >= 42 && len(l2) >= 42 {
			return detection{layout: td3, lines: []string{
				padOrTrim(l1, td3.Width),
				padOrTrim(l2, td3.Width),
			}}, true
		}
	}
	return detection{}, false
}

func findTD2(lines []string) (detection, bool) {
	for i := 0; i+2 <= len(lines); i++ {
		l1, l2 := lines[i], lines[i+1]
		if (hasPrefix(l1, idPrefixes) || hasPrefix(l1, residencePrefixes)) && len(l1) >= 34 && len(l2) >= 34 {
			return detection{layout: td2, lines: []string{
				padOrTrim(l1, td2.Width),
				padOrTrim(l2, td2.Width),
			}}, true
		}
	}
	return detection{}, false
}

// guessFormat names the layout the lines most resemble when none fits.
func guessFormat(lines []string) domain.Format {
	for _, l := range lines {
		if len(l) >= 42 {
			return domain.FormatTD3
		}
	}
	if len(lines) == 2 && len(lines[0]) >= 34 {
		return domain.FormatTD2
	}
	return domain.FormatTD1
}

func hasPrefix(line string, prefixes []string) bool {
	return slices.ContainsFunc(prefixes, func(p string) bool {
		return strings.HasPrefix(line, p)
	})
}

// looksLikeIDCardLine accepts I + any misread filler + a supported country.
// IR is a residence permit and only matches through its own prefix.
func looksLikeIDCardLine(line string) bool {
	if len(line) < 5 || line[0] != 'I' || line[1] == 'R' {
		return false
	}
	return slices.Contains(supportedCountries, strings.ReplaceAll(line[2:5], "<", ""))
}

// isPassportLine accepts P + any subtype character + a supported country.
func isPassportLine(line string) bool {
	if len(line) < 5 || line[0] != 'P' {
		return false
	}
	return slices.Contains(supportedCountries, strings.ReplaceAll(line[2:5], "<", ""))
}
