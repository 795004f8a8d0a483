package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation describe un campo que no pasó la validación (nombre JSON del campo).
type Violation struct {
	Field string
	Tag   string
	Param string
}

// Message describe la violación en texto para el cliente.
func (v Violation) Message() string { return describe(v) }

// Error agrupa las violaciones de un struct.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, describe(v)))
	}
	return strings.Join(parts, "; ")
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			name = strings.SplitN(f.Tag.Get("query"), ",", 2)[0]
		}
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateStruct valida según las etiquetas `validate`. Devuelve *Error o nil.
func ValidateStruct(data interface{}) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{}
	for _, fe := range verrs {
		out.Violations = append(out.Violations, Violation{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// IsEmail valida una dirección de correo con la misma regla que la etiqueta `email`.
func IsEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

func describe(v Violation) string {
	switch v.Tag {
	case "required":
		return "obrigatório"
	case "email":
		return "e-mail inválido"
	case "max":
		return "máximo " + v.Param + " caracteres"
	case "min":
		return "mínimo " + v.Param
	case "oneof":
		return "valor deve ser um de: " + v.Param
	default:
		return "inválido (" + v.Tag + ")"
	}
}
