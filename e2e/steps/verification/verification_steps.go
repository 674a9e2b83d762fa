package verification

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	Save(key, value string)
	Saved(key string) string
}

// RegisterSteps registers document verification step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &verificationSteps{tc: tc}

	ctx.Step(`^a "([^"]*)" document with MRZ:$`, steps.documentWithMRZ)
	ctx.Step(`^a "([^"]*)" document with recto text:$`, steps.documentWithRectoText)
	ctx.Step(`^I claim to be "([^"]*)" "([^"]*)" born on "([^"]*)"$`, steps.claimProfile)
	ctx.Step(`^I submit the document for verification$`, steps.submitVerification)
	ctx.Step(`^I submit the document for extraction$`, steps.submitExtraction)
	ctx.Step(`^I fetch the saved verification$`, steps.fetchSavedVerification)
}

type verificationSteps struct {
	tc       TestContext
	document map[string]interface{}
	claimed  map[string]string
}

func (s *verificationSteps) documentWithMRZ(ctx context.Context, docType string, mrz *godog.DocString) error {
	s.document = map[string]interface{}{"document_type": docType, "mrz": mrz.Content}
	return nil
}

func (s *verificationSteps) documentWithRectoText(ctx context.Context, docType string, text *godog.DocString) error {
	s.document = map[string]interface{}{"document_type": docType, "recto_text": text.Content}
	return nil
}

func (s *verificationSteps) claimProfile(ctx context.Context, surname, given, dob string) error {
	s.claimed = map[string]string{"surname": surname, "given_names": given, "date_of_birth": dob}
	return nil
}

func (s *verificationSteps) submitVerification(ctx context.Context) error {
	if s.document == nil {
		return fmt.Errorf("no document prepared")
	}
	body := map[string]interface{}{"claimed_profile": s.claimed}
	for k, v := range s.document {
		body[k] = v
	}
	if err := s.tc.POST("/verifications", body); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == 201 {
		id, err := s.tc.GetResponseField("id")
		if err != nil {
			return err
		}
		s.tc.Save("verification_id", fmt.Sprint(id))
	}
	return nil
}

func (s *verificationSteps) submitExtraction(ctx context.Context) error {
	if s.document == nil {
		return fmt.Errorf("no document prepared")
	}
	return s.tc.POST("/extractions", s.document)
}

func (s *verificationSteps) fetchSavedVerification(ctx context.Context) error {
	id := s.tc.Saved("verification_id")
	if id == "" {
		return fmt.Errorf("no verification saved in this scenario")
	}
	return s.tc.GET("/verifications/"+id, nil)
}
