package handler

import (
	"fmt"

	"usermgmt/internal/person/models"
	"usermgmt/pkg/domain"
)

// PersonResponse is the wire form of a stored person.
type PersonResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	BirthDate domain.Date  `json:"birthDate"`
	Salary    domain.Money `json:"salary"`
}

func FromPerson(p models.Person) PersonResponse {
	return PersonResponse{
		ID:        p.ID,
		Name:      p.Name,
		BirthDate: p.BirthDate,
		Salary:    p.Salary,
	}
}

// FromPersons never returns nil so an empty store encodes as [].
func FromPersons(persons []models.Person) []PersonResponse {
	out := make([]PersonResponse, 0, len(persons))
	for _, p := range persons {
		out = append(out, FromPerson(p))
	}
	return out
}

func deletedMessage(id string) string {
	return fmt.Sprintf("Person with Id %s deleted.", id)
}
