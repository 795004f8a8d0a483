package http

import (
	"errors"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/pkg/validator"
)

// validateStruct valida un DTO y traduce la primera violación a domain.ErrInvalidInput.
func validateStruct(in interface{}) error {
	err := validator.ValidateStruct(in)
	if err == nil {
		return nil
	}
	var verr *validator.Error
	if !errors.As(err, &verr) || len(verr.Violations) == 0 {
		return domain.Invalid("corpo", "", err.Error())
	}
	v := verr.Violations[0]
	return domain.Invalid(v.Field, "", v.Message())
}
