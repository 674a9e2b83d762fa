package mrz

import (
	"strconv"
	"strings"
	"time"

	"docverify/internal/document/domain"
)

// birthDate resolves a YYMMDD birth date. The century is the most recent one
// that does not put the birth after today.
func birthDate(yymmdd string, today domain.Date) *domain.Date {
	yy, mm, dd, ok := splitYYMMDD(yymmdd)
	if !ok {
		return nil
	}
	d, ok := domain.NewDate(2000+yy, time.Month(mm), dd)
	if ok && !d.After(today) {
		return &d
	}
	d, ok = domain.NewDate(1900+yy, time.Month(mm), dd)
	if !ok {
		return nil
	}
	return &d
}

// expiryDate resolves a YYMMDD expiry date, always in the 2000s.
func expiryDate(yymmdd string) *domain.Date {
	yy, mm, dd, ok := splitYYMMDD(yymmdd)
	if !ok {
		return nil
	}
	d, ok := domain.NewDate(2000+yy, time.Month(mm), dd)
	if !ok {
		return nil
	}
	return &d
}

func splitYYMMDD(s string) (yy, mm, dd int, ok bool) {
	if len(s) != 6 || strings.Contains(s, "<") {
		return 0, 0, 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, 0, 0, false
	}
	return n / 10000, n / 100 % 100, n % 100, true
}
