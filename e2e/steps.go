package e2e

import (
	"github.com/cucumber/godog"

	"docverify/e2e/steps/auth"
	"docverify/e2e/steps/common"
	"docverify/e2e/steps/ratelimit"
	"docverify/e2e/steps/verification"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (background, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register token steps
	auth.RegisterSteps(ctx, tc)

	// Register document verification steps
	verification.RegisterSteps(ctx, tc)

	// Register attempt limit steps
	ratelimit.RegisterSteps(ctx, tc)
}
