package core

import "errors"

// Shared failure kinds. Services wrap them with context and handlers map
// them to status codes with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// ValidationError carries per-field messages for a 422 response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fieldsAndMessages ...string) *ValidationError {
	fields := make(map[string]string, len(fieldsAndMessages)/2)
	for i := 0; i+1 < len(fieldsAndMessages); i += 2 {
		fields[fieldsAndMessages[i]] = fieldsAndMessages[i+1]
	}
	return &ValidationError{Fields: fields}
}
