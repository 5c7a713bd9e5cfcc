package apperr

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// FromValidator converts validator output into a Validation error.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ValidationFields("validation failed", ValidationFieldsOf(ve))
	}
	if _, ok := As(err); ok {
		return err
	}
	return Validation(err.Error())
}

// ValidationFieldsOf flattens validator errors into field → rules.
func ValidationFieldsOf(ve validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		msg := fe.Tag()
		if p := fe.Param(); p != "" {
			msg += "=" + p
		}
		out[fe.Field()] = append(out[fe.Field()], msg)
	}
	return out
}
