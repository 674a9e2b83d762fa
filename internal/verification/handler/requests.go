package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"docverify/internal/document/domain"
	"docverify/internal/document/vision"
	"docverify/internal/extraction"
	"docverify/internal/verification"
	dErrors "docverify/pkg/domain-errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DocumentRequest carries everything capture and OCR produced for one
// document. Images are base64 encoded.
type DocumentRequest struct {
	DocumentType string        `json:"document_type" validate:"max=64"`
	MRZ          string        `json:"mrz" validate:"max=512"`
	RectoText    string        `json:"recto_text" validate:"max=65536"`
	VersoText    string        `json:"verso_text" validate:"max=65536"`
	VisionJSON   string        `json:"vision_json" validate:"max=65536"`
	RectoImage   *ImageRequest `json:"recto_image" validate:"omitempty"`
	VersoImage   *ImageRequest `json:"verso_image" validate:"omitempty"`

	input extraction.Input
}

// ImageRequest is one base64 encoded photo of a document face.
type ImageRequest struct {
	Data      string `json:"data" validate:"required,base64"`
	MediaType string `json:"media_type" validate:"omitempty,oneof=image/jpeg image/png image/webp image/gif"`
}

// ExtractRequest is the HTTP request body for POST /extractions.
type ExtractRequest struct {
	DocumentRequest
}

// Validate implements httputil.Validatable.
func (r *ExtractRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return r.prepare()
}

// Input returns the parsed extraction input.
func (r *ExtractRequest) Input() extraction.Input {
	return r.input
}

// VerifyRequest is the HTTP request body for POST /verifications.
type VerifyRequest struct {
	DocumentRequest
	ClaimedProfile ClaimedProfileRequest `json:"claimed_profile"`

	claimed verification.ClaimedProfile
}

// ClaimedProfileRequest is the identity the user declares.
type ClaimedProfileRequest struct {
	Surname     string `json:"surname" validate:"required,max=128"`
	GivenNames  string `json:"given_names" validate:"max=256"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
}

// Validate implements httputil.Validatable.
func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.ClaimedProfile.Surname = strings.TrimSpace(r.ClaimedProfile.Surname)
	r.ClaimedProfile.GivenNames = strings.TrimSpace(r.ClaimedProfile.GivenNames)
	r.ClaimedProfile.DateOfBirth = strings.TrimSpace(r.ClaimedProfile.DateOfBirth)
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	if err := r.prepare(); err != nil {
		return err
	}

	dob, err := domain.ParseDate(r.ClaimedProfile.DateOfBirth)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "claimed_profile.date_of_birth must be a calendar date (YYYY-MM-DD)")
	}
	r.claimed = verification.ClaimedProfile{
		Surname:     r.ClaimedProfile.Surname,
		GivenNames:  r.ClaimedProfile.GivenNames,
		DateOfBirth: dob,
	}
	return nil
}

// Input returns the parsed extraction input.
func (r *VerifyRequest) Input() extraction.Input {
	return r.input
}

// Claimed returns the parsed claimed profile.
func (r *VerifyRequest) Claimed() verification.ClaimedProfile {
	return r.claimed
}

// prepare decodes the images and checks that there is something to read.
func (d *DocumentRequest) prepare() error {
	d.DocumentType = strings.ToUpper(strings.TrimSpace(d.DocumentType))
	in := extraction.Input{
		DocumentType: d.DocumentType,
		MRZ:          d.MRZ,
		RectoText:    d.RectoText,
		VersoText:    d.VersoText,
		VisionJSON:   d.VisionJSON,
	}

	var err error
	if in.RectoImage, err = d.RectoImage.decode("recto_image"); err != nil {
		return err
	}
	if in.VersoImage, err = d.VersoImage.decode("verso_image"); err != nil {
		return err
	}

	if strings.TrimSpace(in.MRZ+in.RectoText+in.VersoText+in.VisionJSON) == "" &&
		in.RectoImage == nil && in.VersoImage == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one of mrz, recto_text, verso_text, vision_json or an image is required")
	}
	d.input = in
	return nil
}

func (i *ImageRequest) decode(field string) (*vision.Image, error) {
	if i == nil {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(i.Data)
	if err != nil || len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, field+".data must be base64 encoded image bytes")
	}
	return &vision.Image{Data: data, MediaType: i.MediaType}, nil
}

// validationError reports the first failing field by its JSON path.
func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request")
	}
	fe := errs[0]
	field := fieldPath(fe.Namespace())

	var msg string
	switch fe.Tag() {
	case "required":
		msg = field + " is required"
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "base64":
		msg = field + " must be base64 encoded"
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "datetime":
		msg = field + " must be a date (YYYY-MM-DD)"
	default:
		msg = field + " is invalid"
	}
	return dErrors.New(dErrors.CodeValidation, msg)
}

// fieldPath drops the root struct and embedded struct names from a validator
// namespace: "VerifyRequest.claimed_profile.surname" -> "claimed_profile.surname".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	out := parts[:0]
	for i, p := range parts {
		if i == 0 || p == "DocumentRequest" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}
