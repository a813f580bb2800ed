package persons

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Request(method, path string, body any) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetResponseField(field string) (any, error)
	Save(name, value string)
}

// RegisterSteps registers person-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &personSteps{tc: tc}

	ctx.Step(`^I create a person named "([^"]*)" born "([^"]*)" earning ([0-9.]+)$`, steps.createPerson)
	ctx.Step(`^I save the person id as "([^"]*)"$`, steps.savePersonID)
	ctx.Step(`^I list persons$`, steps.listPersons)

	ctx.Step(`^the list should contain (\d+) persons?$`, steps.listShouldContain)
	ctx.Step(`^the list should contain "([^"]*)" with salary ([0-9.]+)$`, steps.listShouldContainNamed)
}

type personSteps struct {
	tc TestContext
}

func (s *personSteps) createPerson(ctx context.Context, name, birthDate string, salary float64) error {
	body := map[string]any{
		"name":      name,
		"birthDate": birthDate,
		"salary":    salary,
	}
	if err := s.tc.Request(http.MethodPost, "/persons", body); err != nil {
		return err
	}
	if got := s.tc.GetLastResponseStatus(); got != http.StatusCreated {
		return fmt.Errorf("create %s: expected 201, got %d: %s", name, got, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *personSteps) savePersonID(ctx context.Context, name string) error {
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	str, ok := id.(string)
	if !ok || str == "" {
		return fmt.Errorf("id is not a non-empty string: %v", id)
	}
	s.tc.Save(name, str)
	return nil
}

func (s *personSteps) listPersons(ctx context.Context) error {
	return s.tc.Request(http.MethodGet, "/persons", nil)
}

func (s *personSteps) decodeList() ([]map[string]any, error) {
	var persons []map[string]any
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &persons); err != nil {
		return nil, fmt.Errorf("response is not a person list: %w", err)
	}
	return persons, nil
}

func (s *personSteps) listShouldContain(ctx context.Context, n int) error {
	persons, err := s.decodeList()
	if err != nil {
		return err
	}
	if len(persons) != n {
		return fmt.Errorf("expected %d persons, got %d", n, len(persons))
	}
	return nil
}

func (s *personSteps) listShouldContainNamed(ctx context.Context, name string, salary float64) error {
	persons, err := s.decodeList()
	if err != nil {
		return err
	}
	for _, p := range persons {
		if p["name"] == name {
			if got, _ := p["salary"].(float64); got != salary {
				return fmt.Errorf("%s: expected salary %v, got %v", name, salary, p["salary"])
			}
			return nil
		}
	}
	return fmt.Errorf("no person named %q in list", name)
}
