// Package mrz detects and parses ICAO 9303 machine-readable zones (TD1, TD2,
// TD3) from OCR text, correcting OCR confusions before fields are sliced.
package mrz

import (
	"strings"
	"time"

	"docverify/internal/document/domain"
	"docverify/internal/document/sanitize"
)

// Parser parses MRZ text. The zero value is not usable; use New.
type Parser struct {
	sanitizer *sanitize.Sanitizer
}

// New returns a parser using s, or the default sanitizer when s is nil.
func New(s *sanitize.Sanitizer) *Parser {
	if s == nil {
		s = sanitize.Default
	}
	return &Parser{sanitizer: s}
}

var defaultParser = New(nil)

// Parse is Parser.Parse with the default sanitizer.
func Parse(text string, now time.Time) *domain.ExtractedIdentity {
	return defaultParser.Parse(text, now)
}

// Parse finds MRZ lines in text and builds a record. It never fails: text
// without a recognizable MRZ yields an invalid record tagged with the closest
// format. now anchors two-digit birth years.
func (p *Parser) Parse(text string, now time.Time) *domain.ExtractedIdentity {
	lines := ExtractLines(text)
	d, ok := detect(lines)
	if !ok {
		rec := domain.NewExtractedIdentity(guessFormat(lines), domain.DocumentCNI, "")
		rec.RawSource = strings.Join(lines, "\n")
		return rec
	}

	sanitized := make([]string, len(d.lines))
	for i, line := range d.lines {
		sanitized[i] = p.sanitizer.SanitizeSpans(line, spans(d.layout.Lines[i]))
	}
	fs := fields{layout: d.layout, lines: sanitized}
	today := domain.DateOf(now)

	docCode := fs.get(fieldDocCode)
	country := fs.text(fieldCountry)
	rec := domain.NewExtractedIdentity(d.layout.Format, documentType(d.layout.Format, docCode), country)
	rec.RawSource = strings.Join(sanitized, "\n")

	rec.DocumentNumber = nonEmpty(fs.text(fieldDocNumber))
	if d.layout.Format == domain.FormatTD1 && docCode == "I<" && country == "CMR" {
		// Newer Cameroon cards print the national ID number in the optional
		// data; the line 1 number is an internal serial.
		if nic := fs.text(fieldOptional1); nic != "" {
			rec.DocumentNumber = &nic
		}
	}

	rec.DateOfBirth = birthDate(fs.get(fieldBirthDate), today)
	rec.DateOfExpiry = expiryDate(fs.get(fieldExpiryDate))
	if sex, ok := domain.ParseSex(fs.get(fieldSex)); ok {
		rec.Sex = &sex
	}
	rec.Surname, rec.GivenNames = parseNames(fs.get(fieldNames))

	rec.Validate()
	return rec
}

func documentType(format domain.Format, docCode string) domain.DocumentType {
	switch {
	case format == domain.FormatTD3:
		return domain.DocumentPassport
	case strings.HasPrefix(docCode, "IR"):
		return domain.DocumentResidencePermit
	default:
		return domain.DocumentCNI
	}
}

// parseNames splits SURNAME<<GIVEN<NAMES. Without a double filler after a
// non-empty surname the whole field is the surname.
func parseNames(field string) (surname, given *string) {
	idx := strings.Index(field, "<<")
	if idx <= 0 {
		return nonEmpty(words(field)), nil
	}
	return nonEmpty(words(field[:idx])), nonEmpty(words(field[idx+2:]))
}

func words(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "<", " ")), " ")
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
