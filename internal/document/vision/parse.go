// Package vision turns the JSON answer of a multimodal model into an
// identity record, and calls such a model when local extraction fell short.
package vision

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"docverify/internal/document/dates"
	"docverify/internal/document/domain"
)

// The model only ever sees Cameroon national identity cards.
const (
	DocumentType   = domain.DocumentCNI
	IssuingCountry = "CMR"
)

// Answer keys, shared with the prompt and the response schema.
const (
	keySurname        = "nom"
	keyGivenNames     = "prenom"
	keyDateOfBirth    = "dateNaissance"
	keySex            = "sexe"
	keyDateOfExpiry   = "dateExpiration"
	keyDocumentNumber = "documentNumber"
)

var (
	openingFence = regexp.MustCompile("(?i)^```[a-z]*\\s*")
	closingFence = regexp.MustCompile("\\s*```$")
)

// ParseJSON reads a model answer, optionally wrapped in a markdown code
// fence. It never fails: malformed input yields an invalid record. Blank
// strings count as absent and sex is kept only when it is M or F.
func ParseJSON(raw string) *domain.ExtractedIdentity {
	rec := domain.NewExtractedIdentity(domain.FormatAIVision, DocumentType, IssuingCountry)
	rec.RawSource = raw

	answer, ok := decode(stripFences(raw))
	if !ok {
		return rec
	}

	rec.Surname = upper(answer[keySurname])
	rec.GivenNames = upper(answer[keyGivenNames])
	rec.DocumentNumber = upper(answer[keyDocumentNumber])
	rec.DateOfBirth = parseDate(answer[keyDateOfBirth])
	rec.DateOfExpiry = parseDate(answer[keyDateOfExpiry])
	if s, ok := domain.ParseSex(answer[keySex]); ok {
		rec.Sex = domain.Ptr(s)
	}
	rec.Validate()
	return rec
}

// parseDate accepts the day-first dates the prompt asks for and the ISO
// dates models sometimes answer with anyway.
func parseDate(s string) *domain.Date {
	if d, ok := dates.ParseDMY(s); ok {
		return &d
	}
	if d, err := domain.ParseDate(strings.TrimSpace(s)); err == nil {
		return &d
	}
	return nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = openingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(closingFence.ReplaceAllString(s, ""))
}

// decode flattens a JSON object into strings. Nulls are dropped; numbers
// keep their literal text.
func decode(s string) (map[string]string, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		switch v := v.(type) {
		case string:
			out[k] = v
		case json.Number:
			out[k] = v.String()
		}
	}
	return out, true
}

func upper(s string) *string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	return &s
}
