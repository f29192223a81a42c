package services

import (
	"fmt"

	"github.com/dmitrijs2005/yamaphone/internal/client/client"
	validation "github.com/go-ozzo/ozzo-validation"
)

// validated wraps an ozzo validation error into client.ErrValidation.
func validated(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s", client.ErrValidation, err.Error())
}

func validID(id int64) error {
	return validated(validation.Validate(id, validation.Required, validation.Min(int64(1))))
}
