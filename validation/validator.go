package validation

import (
	"fmt"
	"strings"

	"github.com/skillsenselab/vaani/errors"
)

// FieldError is one field's validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates field errors across chained rule checks, so a
// response can report every bad field at once instead of the first.
type Validator struct {
	errors []FieldError
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

func (v *Validator) fail(field, format string, args ...any) *Validator {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
	return v
}

// HasErrors reports whether any rule failed.
func (v *Validator) HasErrors() bool { return len(v.errors) > 0 }

// Errors returns the accumulated field errors.
func (v *Validator) Errors() []FieldError { return v.errors }

// Validate folds the accumulated failures into one AppError, or nil when
// everything passed. Field details ride along for the client.
func (v *Validator) Validate() *errors.AppError {
	if len(v.errors) == 0 {
		return nil
	}

	parts := make([]string, len(v.errors))
	for i, fe := range v.errors {
		parts[i] = fe.Field + ": " + fe.Message
	}

	appErr := errors.Validation(strings.Join(parts, "; "))
	appErr.Details = map[string]any{"fields": v.errors}
	return appErr
}

// Required fails when the string is empty or whitespace.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		return v.fail(field, "is required")
	}
	return v
}

// MaxLength fails when the string exceeds maxLen bytes.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		return v.fail(field, "must be %d characters or less", maxLen)
	}
	return v
}

// Min fails when the number is below minVal.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	if value < minVal {
		return v.fail(field, "must be at least %d", minVal)
	}
	return v
}

// Max fails when the number exceeds maxVal.
func (v *Validator) Max(field string, value, maxVal int) *Validator {
	if value > maxVal {
		return v.fail(field, "must be %d or less", maxVal)
	}
	return v
}

// OneOf fails when a non-empty value is not in the allowed set. Empty
// values pass, so optional fields compose with Required.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	return v.fail(field, "must be one of: %s", strings.Join(allowed, ", "))
}

// Custom fails with the given message when the condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		return v.fail(field, "%s", message)
	}
	return v
}
