package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validator *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate checks struct tags and returns a *ValidationError for rule
// violations.
func (v *Validator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return &ValidationError{Fields: formatValidationErrors(verrs)}
}

func formatValidationErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			out[field] = field + " is required"
		case "email":
			out[field] = field + " must be a valid email address"
		case "min", "gte":
			out[field] = field + " must be greater than or equal to " + e.Param()
		case "max", "lte":
			out[field] = field + " must be less than or equal to " + e.Param()
		case "gt":
			out[field] = field + " must be greater than " + e.Param()
		case "oneof":
			out[field] = field + " must be one of " + e.Param()
		default:
			out[field] = field + " is invalid"
		}
	}
	return out
}
