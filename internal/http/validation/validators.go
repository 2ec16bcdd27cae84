// Package validation validates submitted forms and maps failures to per-field messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// validate returns the shared validator. Field names come from the `form` tag so
// messages are keyed the way the HTML form names its inputs.
func validate() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		instance = v
	})
	return instance
}

// FieldValidator accumulates per-field error messages.
type FieldValidator struct {
	errors map[string]string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Struct validates s using its `validate` tags. The first failure of each field is kept.
// A non-validation error (e.g. s is not a struct) is returned as is.
func (fv *FieldValidator) Struct(s any) error {
	err := validate().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if _, seen := fv.errors[fe.Field()]; seen {
			continue
		}
		fv.errors[fe.Field()] = message(fe)
	}
	return nil
}

// Add records msg for field unless the field already failed.
func (fv *FieldValidator) Add(field, msg string) *FieldValidator {
	if _, seen := fv.errors[field]; !seen {
		fv.errors[field] = msg
	}
	return fv
}

// Valid reports whether no field failed.
func (fv *FieldValidator) Valid() bool { return len(fv.errors) == 0 }

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Ce champ est obligatoire."
	case "email":
		return "Adresse e-mail invalide."
	case "max":
		return fmt.Sprintf("Ce champ ne peut pas dépasser %s caractères.", fe.Param())
	case "min":
		return fmt.Sprintf("Ce champ doit contenir au moins %s caractères.", fe.Param())
	default:
		return "Valeur invalide."
	}
}
