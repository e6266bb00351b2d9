package service

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
)

const validationFailed = "Validation failed"

// fieldErrors turns an ozzo-validation result into a domain validation
// error keyed by JSON field name.
func fieldErrors(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for name, fe := range verrs {
			if fe != nil {
				fields[name] = fe.Error()
			}
		}
		return domain.NewValidationError(validationFailed, fields)
	}
	return domain.Internal(err)
}

// optional maps a blank string to nil
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
