package mrz

import (
	"strings"

	"docverify/internal/document/domain"
	"docverify/internal/document/sanitize"
)

// Field names shared by the layouts.
const (
	fieldDocCode        = "document_code"
	fieldCountry        = "issuing_country"
	fieldDocNumber      = "document_number"
	fieldDocCheck       = "document_number_check"
	fieldOptional1      = "optional_data_1"
	fieldBirthDate      = "birth_date"
	fieldBirthCheck     = "birth_date_check"
	fieldSex            = "sex"
	fieldExpiryDate     = "expiry_date"
	fieldExpiryCheck    = "expiry_date_check"
	fieldNationality    = "nationality"
	fieldOptional2      = "optional_data_2"
	fieldPersonalNumber = "personal_number"
	fieldPersonalCheck  = "personal_number_check"
	fieldCompositeCheck = "composite_check"
	fieldNames          = "names"
)

// FieldSpec locates one fixed-width field on an MRZ line and says which
// characters are legal there.
type FieldSpec struct {
	Name    string
	Start   int
	Len     int
	Context sanitize.FieldContext
	// Trailing marks name fields whose padding is restored after substitution.
	Trailing bool
}

// Slice returns the field's characters from line, clipped to its length.
func (f FieldSpec) Slice(line string) string {
	if f.Start >= len(line) {
		return ""
	}
	return line[f.Start:min(f.Start+f.Len, len(line))]
}

// Layout describes one ICAO 9303 document format.
type Layout struct {
	Format domain.Format
	Width  int
	Lines  [][]FieldSpec
}

var (
	td1 = Layout{
		Format: domain.FormatTD1,
		Width:  30,
		Lines: [][]FieldSpec{
			{
				{Name: fieldDocCode, Start: 0, Len: 2},
				{Name: fieldCountry, Start: 2, Len: 3},
				{Name: fieldDocNumber, Start: 5, Len: 9},
				{Name: fieldDocCheck, Start: 14, Len: 1},
				{Name: fieldOptional1, Start: 15, Len: 15},
			},
			{
				{Name: fieldBirthDate, Start: 0, Len: 6, Context: sanitize.ContextNumeric},
				{Name: fieldBirthCheck, Start: 6, Len: 1, Context: sanitize.ContextNumeric},
				{Name: fieldSex, Start: 7, Len: 1, Context: sanitize.ContextName},
				{Name: fieldExpiryDate, Start: 8, Len: 6, Context: sanitize.ContextNumeric},
				{Name: fieldExpiryCheck, Start: 14, Len: 1, Context: sanitize.ContextNumeric},
				{Name: fieldNationality, Start: 15, Len: 3, Context: sanitize.ContextName},
				{Name: fieldOptional2, Start: 18, Len: 11},
				{Name: fieldCompositeCheck, Start: 29, Len: 1, Context: sanitize.ContextNumeric},
			},
			{
				{Name: fieldNames, Start: 0, Len: 30, Context: sanitize.ContextName, Trailing: true},
			},
		},
	}

	td2 = Layout{
		Format: domain.FormatTD2,
		Width:  36,
		Lines: [][]FieldSpec{
			{
				{Name: fieldDocCode, Start: 0, Len: 2},
				{Name: fieldCountry, Start: 2, Len: 3},
				{Name: fieldNames, Start: 5, Len: 31, Context: sanitize.ContextName, Trailing: true},
			},
			{
				{Name: fieldDocNumber, Start: 0, Len: 12},
				{Name: fieldDocCheck, Start: 12, Len: 1, Context: sanitize.ContextNumeric},
				{Name: fieldNationality, Start: 13, Len: 3, Context: sanitize.ContextName},
				{Name: fieldBirthDate, Start: 16, Len: 6, Context: sanitize.ContextNumeric},
				{Name: fieldBirthCheck, Start: 22, Len: 1, Context: sanitize.ContextNumeric},
				{Name: fieldSex, Start: 23, Len: 1, Context: sanitize.ContextName},
				{Name: fieldExpiryDate, Start: 24, Len: 6, Context: sanitize.ContextNumeric},
				{Name: fieldExpiryCheck, Start: 30, Len: 1, Context: sanitize.ContextNumeric},
				{Name: fieldOptional2, Start: 31, Len: 4},
				{Name: fieldCompositeCheck, Start: 35, Len: 1, Context: sanitize.ContextNumeric},
			},
		},
	}

	td3 = Layout{
		Format: domain.FormatTD3,
		Width:  44,
		Lines: [][]FieldSpec{
			{
				{Name: fieldDocCode, Start: 0, Len: 2},
				{Name: fieldCountry, Start: 2, Len: 3},
				{Name: fieldNames, Start: 5, Len: 39, Context: sanitize.ContextName, Trailing: true},
			},
			{
				{Name: fieldDocNumber, Start: 0, Len: 9},
				{Name: fieldDocCheck, Start: 9, Len: 1, Context: sanitize.ContextNumeric},
				{Name: fieldNationality, Start: 10, Len: 3, Context: sanitize.ContextName},
				{Name: fieldBirthDate, Start: 13, Len: 6, Context: sanitize.ContextNumeric},
				{Name: fieldBirthCheck, Start: 19, Len: 1, Context: sanitize.ContextNumeric},
				{Name: fieldSex, Start: 20, Len: 1, Context: sanitize.ContextName},
				{Name: fieldExpiryDate, Start: 21, Len: 6, Context: sanitize.ContextNumeric},
				{Name: fieldExpiryCheck, Start: 27, Len: 1, Context: sanitize.ContextNumeric},
				{Name: fieldPersonalNumber, Start: 28, Len: 14},
				{Name: fieldPersonalCheck, Start: 42, Len: 1, Context: sanitize.ContextNumeric},
				{Name: fieldCompositeCheck, Start: 43, Len: 1, Context: sanitize.ContextNumeric},
			},
		},
	}
)

// spans converts a line's field specs into sanitizer spans.
func spans(fields []FieldSpec) []sanitize.Span {
	out := make([]sanitize.Span, 0, len(fields))
	for _, f := range fields {
		if f.Context != sanitize.ContextMixed {
			out = append(out, sanitize.Span{Start: f.Start, Len: f.Len, Context: f.Context})
		}
		if f.Trailing {
			out = append(out, sanitize.Span{Start: f.Start, Len: f.Len, Context: sanitize.ContextTrailing})
		}
	}
	return out
}

// fields gives named access to the fields of sanitized lines.
type fields struct {
	layout Layout
	lines  []string
}

func (fs fields) get(name string) string {
	for i, specs := range fs.layout.Lines {
		for _, f := range specs {
			if f.Name == name {
				return f.Slice(fs.lines[i])
			}
		}
	}
	return ""
}

// text returns the field with filler removed and surrounding space trimmed.
func (fs fields) text(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(fs.get(name), "<", ""))
}
