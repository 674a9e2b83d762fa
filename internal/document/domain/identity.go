// Package domain holds the structured identity record shared by every
// extraction channel and the verification engine.
package domain

import (
	"encoding/json"
	"strings"
)

// Format tags which channel produced a record.
type Format string

const (
	FormatTD1      Format = "TD1"
	FormatTD2      Format = "TD2"
	FormatTD3      Format = "TD3"
	FormatVisual   Format = "VISUAL"
	FormatAIVision Format = "AI_VISION"
)

// DocumentType is the kind of identity document.
type DocumentType string

const (
	DocumentCNI             DocumentType = "CNI"
	DocumentPassport        DocumentType = "PASSPORT"
	DocumentResidencePermit DocumentType = "RESIDENCE_PERMIT"
)

// Sex as printed on the document.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// ParseSex accepts M or F in any case. Anything else is absent.
func ParseSex(s string) (Sex, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M":
		return SexMale, true
	case "F":
		return SexFemale, true
	}
	return "", false
}

// ExtractedIdentity is the structured record every channel produces.
// Optional fields are nil when the channel could not read them. The format
// is fixed at construction; validity is (re)computed through Validate.
type ExtractedIdentity struct {
	Surname        *string
	GivenNames     *string
	DateOfBirth    *Date
	DateOfExpiry   *Date
	DocumentNumber *string
	Sex            *Sex
	RawSource      string
	DocumentType   DocumentType
	IssuingCountry string

	format Format
	valid  bool
}

// NewExtractedIdentity starts an empty, invalid record for a channel.
func NewExtractedIdentity(format Format, docType DocumentType, country string) *ExtractedIdentity {
	return &ExtractedIdentity{format: format, DocumentType: docType, IssuingCountry: country}
}

func (e *ExtractedIdentity) Format() Format {
	return e.format
}

func (e *ExtractedIdentity) Valid() bool {
	return e.valid
}

// Validate sets valid from the presence of surname and date of birth, the two
// fields every consumer requires, and returns it.
func (e *ExtractedIdentity) Validate() bool {
	e.valid = e.Surname != nil && e.DateOfBirth != nil
	return e.valid
}

// Incomplete reports a valid record that still lacks given names, the
// document number or the expiry date. An invalid record is never incomplete.
func (e *ExtractedIdentity) Incomplete() bool {
	if !e.valid {
		return false
	}
	return e.GivenNames == nil || e.DocumentNumber == nil || e.DateOfExpiry == nil
}

// PopulatedFields counts the optional fields that carry a value.
func (e *ExtractedIdentity) PopulatedFields() int {
	n := 0
	for _, set := range []bool{
		e.Surname != nil, e.GivenNames != nil, e.DateOfBirth != nil,
		e.DateOfExpiry != nil, e.DocumentNumber != nil, e.Sex != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

type identityJSON struct {
	Surname        *string      `json:"surname"`
	GivenNames     *string      `json:"given_names"`
	DateOfBirth    *Date        `json:"date_of_birth"`
	DateOfExpiry   *Date        `json:"date_of_expiry"`
	DocumentNumber *string      `json:"document_number"`
	Sex            *Sex         `json:"sex"`
	Format         Format       `json:"format"`
	Valid          bool         `json:"valid"`
	RawSource      string       `json:"raw_source,omitempty"`
	DocumentType   DocumentType `json:"document_type"`
	IssuingCountry string       `json:"issuing_country"`
}

func (e ExtractedIdentity) MarshalJSON() ([]byte, error) {
	return json.Marshal(identityJSON{
		Surname:        e.Surname,
		GivenNames:     e.GivenNames,
		DateOfBirth:    e.DateOfBirth,
		DateOfExpiry:   e.DateOfExpiry,
		DocumentNumber: e.DocumentNumber,
		Sex:            e.Sex,
		Format:         e.format,
		Valid:          e.valid,
		RawSource:      e.RawSource,
		DocumentType:   e.DocumentType,
		IssuingCountry: e.IssuingCountry,
	})
}

func (e *ExtractedIdentity) UnmarshalJSON(b []byte) error {
	var v identityJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*e = ExtractedIdentity{
		Surname:        v.Surname,
		GivenNames:     v.GivenNames,
		DateOfBirth:    v.DateOfBirth,
		DateOfExpiry:   v.DateOfExpiry,
		DocumentNumber: v.DocumentNumber,
		Sex:            v.Sex,
		RawSource:      v.RawSource,
		DocumentType:   v.DocumentType,
		IssuingCountry: v.IssuingCountry,
		format:         v.Format,
		valid:          v.Valid,
	}
	return nil
}

// Ptr returns a pointer to v, for populating optional fields.
func Ptr[T any](v T) *T {
	return &v
}
