package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the pipeline. Wrap them with AppError or
// fmt.Errorf("...: %w", err) and compare with errors.Is.
var (
	ErrUnknownMode      = errors.New("unknown reduction mode")
	ErrInvalidTolerance = errors.New("longitude tolerance must be positive")
	ErrSchemaMismatch   = errors.New("header does not match column schema")
	ErrMalformedRow     = errors.New("malformed row")
	ErrNoData           = errors.New("no data")
)

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects field failures reported by config validation
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Error implements the error interface
func (e *ValidationErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + e.Errors[0].Error()
	default:
		return fmt.Sprintf("validation failed: %s (and %d more)", e.Errors[0].Error(), len(e.Errors)-1)
	}
}

// NewValidationErrors wraps field failures into a VALIDATION AppError
func NewValidationErrors(errs []ValidationError) *AppError {
	return NewAppError(ErrTypeValidation, "configuration validation failed", &ValidationErrors{Errors: errs})
}

// IsType reports whether err is, or wraps, an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
