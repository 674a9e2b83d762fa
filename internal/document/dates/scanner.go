// Package dates finds day-first calendar dates in free OCR text and guesses
// which of them are a birth date and an expiry date.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"docverify/internal/document/domain"
)

const (
	minYear = 1900
	maxYear = 2100

	// A birth date must be at least this many years old. Issue dates of
	// recently renewed cards fall inside the window and are ignored.
	minAgeYears = 5
)

var (
	// DD sep MM sep YYYY where OCR turned the separator into any punctuation
	// or whitespace.
	dayFirst = regexp.MustCompile(`(\d{2})\s*[./\-,;:\s]\s*(\d{2})\s*[./\-,;:\s]\s*(\d{4})`)

	dmySeparators = regexp.MustCompile(`[./\-\s]+`)
)

// FindDates returns every valid day-first date in text, in order of appearance.
func FindDates(text string) []domain.Date {
	var out []domain.Date
	for _, m := range dayFirst.FindAllStringSubmatch(text, -1) {
		if d, ok := fromParts(m[1], m[2], m[3]); ok {
			out = append(out, d)
		}
	}
	return out
}

// ParseDMY parses "DD.MM.YYYY", "DD/MM/YYYY", "DD-MM-YYYY" and space-separated
// variants, as emitted by OCR and the vision model.
func ParseDMY(s string) (domain.Date, bool) {
	parts := strings.Split(dmySeparators.ReplaceAllString(strings.TrimSpace(s), "."), ".")
	if len(parts) != 3 {
		return domain.Date{}, false
	}
	return fromParts(parts[0], parts[1], parts[2])
}

func fromParts(dd, mm, yyyy string) (domain.Date, bool) {
	day, err1 := strconv.Atoi(dd)
	month, err2 := strconv.Atoi(mm)
	year, err3 := strconv.Atoi(yyyy)
	if err1 != nil || err2 != nil || err3 != nil {
		return domain.Date{}, false
	}
	if year < minYear || year > maxYear || month < 1 || month > 12 || day < 1 || day > 31 {
		return domain.Date{}, false
	}
	return domain.NewDate(year, time.Month(month), day)
}

// Assign picks a birth date and an expiry date from found. The birth date is
// the earliest date at least minAgeYears before now; the expiry is the latest
// date after now. Either is nil when no date qualifies.
func Assign(found []domain.Date, now time.Time) (dob, expiry *domain.Date) {
	today := domain.DateOf(now)
	adultCutoff := today.AddYears(-minAgeYears)
	for _, d := range found {
		switch {
		case d.Before(adultCutoff):
			if dob == nil || d.Before(*dob) {
				dob = domain.Ptr(d)
			}
		case d.After(today):
			if expiry == nil || d.After(*expiry) {
				expiry = domain.Ptr(d)
			}
		}
	}
	return dob, expiry
}

// Scan is FindDates followed by Assign.
func Scan(text string, now time.Time) (dob, expiry *domain.Date) {
	return Assign(FindDates(text), now)
}
