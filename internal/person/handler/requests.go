package handler

import (
	"usermgmt/internal/person/models"
	"usermgmt/pkg/domain"
)

// PersonRequest is the body of POST /persons and PUT /persons/{id}. An id
// field in the body is ignored: ids are minted by the server and taken from
// the path on update.
type PersonRequest struct {
	Name      string       `json:"name"`
	BirthDate domain.Date  `json:"birthDate"`
	Salary    domain.Money `json:"salary"`
}

// ToDraft converts the request into the domain draft.
func (r PersonRequest) ToDraft() models.Draft {
	return models.Draft{
		Name:      r.Name,
		BirthDate: r.BirthDate,
		Salary:    r.Salary,
	}
}
