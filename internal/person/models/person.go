package models

import (
	"errors"
	"strings"

	"usermgmt/pkg/domain"
	dErrors "usermgmt/pkg/domain-errors"
)

// Person is a stored record. ID is minted by the store and never changes.
type Person struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	BirthDate domain.Date  `json:"birthDate"`
	Salary    domain.Money `json:"salary"`
}

// Draft carries the mutable fields of a Person, for create and full update.
type Draft struct {
	Name      string       `json:"name"`
	BirthDate domain.Date  `json:"birthDate"`
	Salary    domain.Money `json:"salary"`
}

// Apply replaces the mutable fields of p with the draft's values.
func (d Draft) Apply(p *Person) {
	p.Name = d.Name
	p.BirthDate = d.BirthDate
	p.Salary = d.Salary
}

// Draft returns the mutable fields of p.
func (p Person) Draft() Draft {
	return Draft{Name: p.Name, BirthDate: p.BirthDate, Salary: p.Salary}
}

// Validate enforces the field rules the desktop form applied before sending:
// a non-blank name, a birth date, and a non-negative salary.
func (d Draft) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if d.BirthDate.IsZero() {
		errs = append(errs, errors.New("birthDate is required"))
	}
	if d.Salary.IsNegative() {
		errs = append(errs, errors.New("salary must not be negative"))
	}
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return dErrors.Wrap(errors.Join(errs...), dErrors.CodeValidation, "Invalid person: "+strings.Join(msgs, "; ")+".")
}
