package verification

import (
	"strings"
	"time"

	"docverify/internal/document/domain"
)

// Engine compares extracted records with claimed profiles. It is pure: no
// I/O and no shared state, so one Engine serves concurrent requests.
type Engine struct {
	match nameMatcher
}

// NewEngine returns an engine using mode for name comparison.
func NewEngine(mode MatchMode) *Engine {
	return &Engine{match: matcherFor(mode)}
}

// IsIncomplete reports a valid record that still lacks given names, the
// document number or the expiry date. An invalid record is never
// incomplete: there is nothing to complete.
func IsIncomplete(rec *domain.ExtractedIdentity) bool {
	return rec != nil && rec.Incomplete()
}

// NeedsMoreEvidence reports whether another extraction channel could still
// improve rec.
func NeedsMoreEvidence(rec *domain.ExtractedIdentity) bool {
	return rec == nil || !rec.Valid() || IsIncomplete(rec)
}

// Verify decides the status of rec against claimed as of today.
// Rule priority:
//  1. Expired document (any readable expiry before today)
//  2. Unreadable record
//  3. Surname, then given names, then birth date mismatch
func (e *Engine) Verify(rec *domain.ExtractedIdentity, claimed ClaimedProfile, today time.Time) Result {
	if rec == nil {
		rec = domain.NewExtractedIdentity(domain.FormatVisual, domain.DocumentCNI, "")
	}
	res := Result{
		Identity:     rec,
		DocumentType: rec.DocumentType,
	}

	res.SurnameMatch = rec.Surname != nil && e.match(*rec.Surname, claimed.Surname)
	if strings.TrimSpace(claimed.GivenNames) == "" {
		res.GivenNameMatch = true
	} else {
		res.GivenNameMatch = rec.GivenNames != nil && e.match(*rec.GivenNames, claimed.GivenNames)
	}
	res.DOBMatch = rec.DateOfBirth != nil && !claimed.DateOfBirth.IsZero() && *rec.DateOfBirth == claimed.DateOfBirth
	res.DocumentExpired = rec.DateOfExpiry != nil && rec.DateOfExpiry.Before(domain.DateOf(today))

	switch {
	case res.DocumentExpired:
		res.Status, res.Reason = StatusExpired, ReasonExpired
	case !rec.Valid():
		res.Status, res.Reason = StatusRejected, ReasonUnreadable
	case !res.SurnameMatch:
		res.Status, res.Reason = StatusRejected, ReasonSurnameMismatch
	case !res.GivenNameMatch:
		res.Status, res.Reason = StatusRejected, ReasonGivenNameMismatch
	case !res.DOBMatch:
		res.Status, res.Reason = StatusRejected, ReasonDOBMismatch
	default:
		res.Status, res.Reason = StatusVerified, ReasonVerified
	}
	res.Verified = res.Status == StatusVerified
	res.Message = res.Reason.Message()
	return res
}

// ResolveDocumentType applies the declared type to the detected one: a
// residence permit declared by the user but read as a national card is
// reported as a residence permit. Cards and permits share the TD1 layout.
func ResolveDocumentType(declared string, detected domain.DocumentType) domain.DocumentType {
	if strings.HasPrefix(strings.ToUpper(declared), string(domain.DocumentResidencePermit)) && detected == domain.DocumentCNI {
		return domain.DocumentResidencePermit
	}
	return detected
}
