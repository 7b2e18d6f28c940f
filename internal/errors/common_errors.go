package errors

import (
	"fmt"
	"strings"
)

// ErrorType classifies failures of a comparison run
type ErrorType string

const (
	// ErrTypeParsing marks an input whose header or rows cannot be read
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeStorage marks an I/O failure on an input or output file
	ErrTypeStorage ErrorType = "STORAGE"
	// ErrTypeValidation marks a value outside its allowed range
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeNotFound marks a missing input directory or file
	ErrTypeNotFound ErrorType = "NOT_FOUND"
	// ErrTypeConfig marks an unusable configuration
	ErrTypeConfig ErrorType = "CONFIG"
)

// AppError is a classified failure. File and Line locate it in an input
// export when known; Line counts from 1 and includes the header row.
type AppError struct {
	Type    ErrorType
	Message string
	File    string
	Line    int
	Cause   error
	Context map[string]interface{}
}

// Error renders "[TYPE] message (file:line): cause"
func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)
	if loc := e.Location(); loc != "" {
		fmt.Fprintf(&b, " (%s)", loc)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap exposes the cause to errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Location returns "file:line", "file" or "" depending on what is known
func (e *AppError) Location() string {
	switch {
	case e.File == "":
		return ""
	case e.Line > 0:
		return fmt.Sprintf("%s:%d", e.File, e.Line)
	default:
		return e.File
	}
}

// InFile records the input file the error refers to
func (e *AppError) InFile(path string) *AppError {
	e.File = path
	return e
}

// AtLine records the 1-based line of the input file
func (e *AppError) AtLine(line int) *AppError {
	e.Line = line
	return e
}

// WithContext attaches a diagnostic value such as the offending header
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a classified error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// NewParsingError reports an unreadable header or file
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewRowError reports a skipped row of path. It wraps ErrMalformedRow
// unless cause already carries a more specific reason.
func NewRowError(path string, line int, cause error) *AppError {
	if cause == nil {
		cause = ErrMalformedRow
	}
	return NewParsingError("skipped row", cause).InFile(path).AtLine(line)
}

// NewStorageError reports an I/O failure
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError reports an invalid argument
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError reports a missing input
func NewNotFoundError(resource string, cause error) *AppError {
	return NewAppError(ErrTypeNotFound, resource+" not found", cause)
}

// NewConfigError reports an unusable configuration value
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
