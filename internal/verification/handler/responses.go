package handler

import (
	"time"

	"github.com/google/uuid"

	"docverify/internal/document/domain"
	"docverify/internal/extraction"
	"docverify/internal/verification"
)

// VerificationResponse is the HTTP response for verification endpoints.
type VerificationResponse struct {
	ID              uuid.UUID                 `json:"id"`
	Status          string                    `json:"status"`
	Reason          string                    `json:"reason"`
	Message         string                    `json:"message"`
	Verified        bool                      `json:"verified"`
	SurnameMatch    bool                      `json:"surname_match"`
	GivenNameMatch  bool                      `json:"given_name_match"`
	DOBMatch        bool                      `json:"dob_match"`
	DocumentExpired bool                      `json:"document_expired"`
	DocumentType    string                    `json:"document_type"`
	Identity        *domain.ExtractedIdentity `json:"extracted_identity"`
	Sources         []string                  `json:"sources"`
	CreatedAt       time.Time                 `json:"created_at"`
}

// FromRecord converts a stored verification to an HTTP response.
func FromRecord(rec *verification.Record) *VerificationResponse {
	sources := rec.Sources
	if sources == nil {
		sources = []string{}
	}
	return &VerificationResponse{
		ID:              rec.ID,
		Status:          string(rec.Status),
		Reason:          string(rec.Reason),
		Message:         rec.Message,
		Verified:        rec.Verified,
		SurnameMatch:    rec.Matches.Surname,
		GivenNameMatch:  rec.Matches.GivenNames,
		DOBMatch:        rec.Matches.DateOfBirth,
		DocumentExpired: rec.Expired,
		DocumentType:    string(rec.DocumentType),
		Identity:        rec.Identity,
		Sources:         sources,
		CreatedAt:       rec.CreatedAt,
	}
}

// ExtractionResponse is the HTTP response for POST /extractions.
type ExtractionResponse struct {
	Identity *domain.ExtractedIdentity `json:"extracted_identity"`
	Attempts []extraction.Attempt      `json:"attempts"`
}

// FromResult converts a chain result to an HTTP response.
func FromResult(res *extraction.Result) *ExtractionResponse {
	attempts := res.Attempts
	if attempts == nil {
		attempts = []extraction.Attempt{}
	}
	return &ExtractionResponse{
		Identity: res.Identity,
		Attempts: attempts,
	}
}
