package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{"parsing error type", ErrTypeParsing, "PARSING"},
		{"storage error type", ErrTypeStorage, "STORAGE"},
		{"validation error type", ErrTypeValidation, "VALIDATION"},
		{"not found error type", ErrTypeNotFound, "NOT_FOUND"},
		{"config error type", ErrTypeConfig, "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewAppValidationError("tolerance out of range")
		assert.Equal(t, "[VALIDATION] tolerance out of range", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := fmt.Errorf("open offsets.csv: permission denied")
		err := NewStorageError("read dataset", cause)
		assert.Equal(t, "[STORAGE] read dataset: open offsets.csv: permission denied", err.Error())
	})
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewConfigError("analysis mode", ErrUnknownMode)

	assert.True(t, errors.Is(err, ErrUnknownMode))
	assert.Equal(t, ErrUnknownMode, err.Unwrap())

	wrapped := fmt.Errorf("load config: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeConfig, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewParsingError("bad header", ErrSchemaMismatch).
		WithContext("header", []string{"lon", "lat"}).
		WithContext("columns", 4)

	assert.Equal(t, []string{"lon", "lat"}, err.Context["header"])
	assert.Equal(t, 4, err.Context["columns"])

	bare := &AppError{Type: ErrTypeStorage, Message: "no context map"}
	bare.WithContext("path", "/tmp")
	assert.Equal(t, "/tmp", bare.Context["path"])
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("input directory /data/offsets", nil)
	assert.Equal(t, ErrTypeNotFound, err.Type)
	assert.Equal(t, "[NOT_FOUND] input directory /data/offsets not found", err.Error())
}

func TestAppError_Location(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		location string
		message  string
	}{
		{
			name:     "no file",
			err:      NewParsingError("empty file", ErrSchemaMismatch),
			location: "",
			message:  "[PARSING] empty file: header does not match column schema",
		},
		{
			name:     "file only",
			err:      NewParsingError("empty file", ErrSchemaMismatch).InFile("Parker1993_Arabia.csv"),
			location: "Parker1993_Arabia.csv",
			message:  "[PARSING] empty file (Parker1993_Arabia.csv): header does not match column schema",
		},
		{
			name:     "file and line",
			err:      NewParsingError("no column for latitude", ErrSchemaMismatch).InFile("a.csv").AtLine(1),
			location: "a.csv:1",
			message:  "[PARSING] no column for latitude (a.csv:1): header does not match column schema",
		},
		{
			name:     "line without file",
			err:      NewParsingError("bad", nil).AtLine(7),
			location: "",
			message:  "[PARSING] bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.location, tt.err.Location())
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestNewRowError(t *testing.T) {
	t.Run("defaults to malformed row", func(t *testing.T) {
		err := NewRowError("offsets/3/Parker1993_Arabia.csv", 12, nil)

		assert.Equal(t, ErrTypeParsing, err.Type)
		assert.Equal(t, "offsets/3/Parker1993_Arabia.csv:12", err.Location())
		assert.ErrorIs(t, err, ErrMalformedRow)
		assert.True(t, IsType(err, ErrTypeParsing))
	})

	t.Run("keeps a specific cause", func(t *testing.T) {
		cause := fmt.Errorf("latitude %q: %w", "abc", ErrMalformedRow)
		err := NewRowError("a.csv", 3, cause)

		assert.Equal(t, `[PARSING] skipped row (a.csv:3): latitude "abc": malformed row`, err.Error())
		assert.ErrorIs(t, err, ErrMalformedRow)
	})
}
