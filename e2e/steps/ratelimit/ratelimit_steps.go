package ratelimit

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers attempt limit step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I submit (\d+) unreadable documents for verification$`, steps.submitUnreadable)
	ctx.Step(`^every response status should have been (\d+)$`, steps.everyStatusShouldBe)
	ctx.Step(`^the error should be "([^"]*)"$`, steps.errorShouldBe)
}

type ratelimitSteps struct {
	tc       TestContext
	statuses []int
}

func (s *ratelimitSteps) submitUnreadable(ctx context.Context, n int) error {
	s.statuses = s.statuses[:0]
	body := map[string]interface{}{
		"recto_text": "nothing useful here",
		"claimed_profile": map[string]string{
			"surname":       "MIMBE",
			"date_of_birth": "1986-10-19",
		},
	}
	for range n {
		if err := s.tc.POST("/verifications", body); err != nil {
			return err
		}
		s.statuses = append(s.statuses, s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *ratelimitSteps) everyStatusShouldBe(ctx context.Context, status int) error {
	for i, got := range s.statuses {
		if got != status {
			return fmt.Errorf("attempt %d returned %d, want %d", i+1, got, status)
		}
	}
	return nil
}

func (s *ratelimitSteps) errorShouldBe(ctx context.Context, code string) error {
	got, err := s.tc.GetResponseField("error")
	if err != nil {
		return err
	}
	if got != code {
		return fmt.Errorf("expected error %q, got %v: %s", code, got, s.tc.GetLastResponseBody())
	}
	return nil
}
