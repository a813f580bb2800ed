package e2e

import (
	"github.com/cucumber/godog"

	"usermgmt/e2e/steps/common"
	"usermgmt/e2e/steps/persons"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and response assertions
	common.RegisterSteps(ctx, tc)

	// Person CRUD steps
	persons.RegisterSteps(ctx, tc)
}
