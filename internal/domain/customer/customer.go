package customer

import (
	"customer-service/internal/pkg/apperrors"
	"fmt"
	"unicode/utf8"
)

const (
	NameMinLength = 3
	NameMaxLength = 255
)

var (
	msgNameSize = fmt.Sprintf("size must be between %d and %d", NameMinLength, NameMaxLength)
	msgIDMin    = "must be greater than or equal to 1"
)

// Customer is the single persisted resource. A zero ID marks an entity that
// has not been stored yet.
type Customer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func NewCustomer(name string) *Customer {
	return &Customer{Name: name}
}

func (c *Customer) IsNew() bool {
	return c.ID == 0
}

// Validate checks the field constraints of an entity that is about to be
// written.
func (c *Customer) Validate() apperrors.Violations {
	var v apperrors.Violations
	if c.ID < 0 {
		CheckID(c.ID, &v)
	}
	CheckName(c.Name, &v)
	return v
}

func CheckName(name string, v *apperrors.Violations) {
	n := utf8.RuneCountInString(name)
	if n < NameMinLength || n > NameMaxLength {
		v.Add("name", msgNameSize)
	}
}

func CheckID(id int64, v *apperrors.Violations) {
	if id < 1 {
		v.Add("id", msgIDMin)
	}
}
