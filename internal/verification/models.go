package verification

import (
	"time"

	"github.com/google/uuid"

	"docverify/internal/document/domain"
)

// Status is the verification verdict.
type Status string

const (
	StatusVerified Status = "VERIFIED"
	StatusRejected Status = "REJECTED"
	StatusExpired  Status = "EXPIRED"
)

// Reason names the rule that decided the status.
type Reason string

const (
	ReasonVerified          Reason = "verified"
	ReasonUnreadable        Reason = "unreadable"
	ReasonExpired           Reason = "expired"
	ReasonSurnameMismatch   Reason = "surname_mismatch"
	ReasonGivenNameMismatch Reason = "given_name_mismatch"
	ReasonDOBMismatch       Reason = "dob_mismatch"
)

// Messages shown to the document holder.
var messages = map[Reason]string{
	ReasonVerified:          "Identite verifiee avec succes.",
	ReasonUnreadable:        "Impossible de lire la zone MRZ du document. Assurez-vous que la photo est nette et bien eclairee.",
	ReasonExpired:           "Le document est expire. Veuillez utiliser un document valide.",
	ReasonSurnameMismatch:   "Les informations extraites ne correspondent pas a votre profil.",
	ReasonGivenNameMismatch: "Les informations extraites ne correspondent pas a votre profil.",
	ReasonDOBMismatch:       "Les informations extraites ne correspondent pas a votre profil.",
}

// Message is the user-facing text for a reason.
func (r Reason) Message() string { return messages[r] }

// ClaimedProfile is the identity the user declared. Empty given names are
// not checked.
type ClaimedProfile struct {
	Surname     string
	GivenNames  string
	DateOfBirth domain.Date
}

// Result is the outcome of comparing an extracted record with a profile.
type Result struct {
	Verified        bool
	Status          Status
	Reason          Reason
	Message         string
	SurnameMatch    bool
	GivenNameMatch  bool
	DOBMatch        bool
	DocumentExpired bool
	// DocumentType is the detected type after the declared-type override.
	DocumentType domain.DocumentType
	Identity     *domain.ExtractedIdentity
}

// Record is a stored verification attempt.
type Record struct {
	ID           uuid.UUID                 `json:"id"`
	UserID       uuid.UUID                 `json:"user_id"`
	DeclaredType string                    `json:"declared_type,omitempty"`
	Status       Status                    `json:"status"`
	Reason       Reason                    `json:"reason"`
	Message      string                    `json:"message"`
	Verified     bool                      `json:"verified"`
	Matches      Matches                   `json:"matches"`
	Expired      bool                      `json:"document_expired"`
	DocumentType domain.DocumentType       `json:"document_type"`
	Identity     *domain.ExtractedIdentity `json:"identity"`
	Sources      []string                  `json:"sources"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// Matches groups the per-field comparisons.
type Matches struct {
	Surname     bool `json:"surname"`
	GivenNames  bool `json:"given_names"`
	DateOfBirth bool `json:"date_of_birth"`
}
