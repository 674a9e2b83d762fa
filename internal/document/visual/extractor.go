// Package visual reads identity fields from the printed text of a Cameroon
// national identity card when no usable MRZ is available. Extraction runs
// as ordered passes; each pass only fills fields the earlier ones left empty.
package visual

import (
	"strings"
	"time"

	"docverify/internal/document/dates"
	"docverify/internal/document/domain"
)

// IssuingCountry is the only country whose printed layout is understood.
const IssuingCountry = "CMR"

type state struct {
	recto, verso, both string
	lines              []string
	now                time.Time
	rec                *domain.ExtractedIdentity
}

type pass struct {
	name string
	run  func(*state)
}

var passes = []pass{
	{"inline-labels", inlineLabels},
	{"keyword-lines", keywordLines},
	{"date-heuristic", dateHeuristic},
	{"positional-given-names", positionalGivenNames},
}

// Extract builds a VISUAL record from the OCR text of both faces. It never
// fails; the record is valid once a surname and a birth date were read.
func Extract(recto, verso string, now time.Time) *domain.ExtractedIdentity {
	both := recto + "\n" + verso
	st := &state{
		recto: recto,
		verso: verso,
		both:  both,
		lines: strings.Split(both, "\n"),
		now:   now,
		rec:   domain.NewExtractedIdentity(domain.FormatVisual, domain.DocumentCNI, IssuingCountry),
	}
	st.rec.RawSource = both
	for _, p := range passes {
		p.run(st)
	}
	st.rec.Validate()
	return st.rec
}

func inlineLabels(st *state) {
	rec := st.rec
	if v := lookup(findSurname, st.recto, st.both); isPlausibleName(v) {
		rec.Surname = optional(cleanName(v))
	}
	if v := lookup(findGiven, st.recto, st.both); isPlausibleName(v) {
		rec.GivenNames = optional(cleanName(v))
	}
	if d, ok := dates.ParseDMY(lookup(findBirth, st.recto, st.both)); ok {
		rec.DateOfBirth = domain.Ptr(d)
	}
	if s, ok := domain.ParseSex(lookup(findSex, st.recto, st.both)); ok {
		rec.Sex = domain.Ptr(s)
	}
	if d, ok := dates.ParseDMY(lookup(findExpiry, st.verso, st.both)); ok {
		rec.DateOfExpiry = domain.Ptr(d)
	}
	if v := lookup(findNIC, st.verso, st.both); v != "" {
		rec.DocumentNumber = domain.Ptr(strings.ToUpper(v))
	}
}

func keywordLines(st *state) {
	rec := st.rec
	if rec.Surname == nil {
		rec.Surname = optional(cleanName(nameBelowKeyword(st.lines, surnameKeywords)))
	}
	if rec.GivenNames == nil {
		rec.GivenNames = optional(cleanName(nameBelowKeyword(st.lines, givenKeywords)))
	}
	if rec.DateOfBirth == nil {
		if d, ok := dates.ParseDMY(dateNearKeyword(st.lines, birthKeywords)); ok {
			rec.DateOfBirth = domain.Ptr(d)
		}
	}
	if rec.DateOfExpiry == nil {
		if d, ok := dates.ParseDMY(dateNearKeyword(st.lines, expiryKeywords)); ok {
			rec.DateOfExpiry = domain.Ptr(d)
		}
	}
}

func dateHeuristic(st *state) {
	rec := st.rec
	if rec.DateOfBirth != nil && rec.DateOfExpiry != nil {
		return
	}
	dob, expiry := dates.Scan(st.both, st.now)
	if rec.DateOfBirth == nil {
		rec.DateOfBirth = dob
	}
	if rec.DateOfExpiry == nil {
		rec.DateOfExpiry = expiry
	}
}

// positionalGivenNames relies on the fixed order surname, given names, birth
// date on older cards: the first name-like line between the surname value
// and the next date is taken as the given names.
func positionalGivenNames(st *state) {
	rec := st.rec
	if rec.GivenNames != nil || rec.Surname == nil {
		return
	}
	surname := strings.ToUpper(*rec.Surname)
	afterSurname := false
	for _, line := range st.lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if afterSurname && lineDate.MatchString(trimmed) {
			return
		}
		if !afterSurname {
			afterSurname = strings.Contains(strings.ToUpper(trimmed), surname)
			continue
		}
		cleaned := nameLine(trimmed)
		if !acceptableValue(cleaned) || cleaned == surname {
			continue
		}
		if name := cleanName(cleaned); name != "" {
			rec.GivenNames = &name
			return
		}
	}
}
