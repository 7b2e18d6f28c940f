package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrors_Error(t *testing.T) {
	tests := []struct {
		name     string
		errs     []ValidationError
		expected string
	}{
		{
			name:     "empty",
			expected: "validation failed",
		},
		{
			name:     "single field",
			errs:     []ValidationError{{Field: "Tolerance", Message: "must be greater than 0"}},
			expected: "validation failed: Tolerance: must be greater than 0",
		},
		{
			name: "several fields",
			errs: []ValidationError{
				{Field: "Tolerance", Message: "must be greater than 0"},
				{Field: "RadiusKm", Message: "must be greater than 0"},
			},
			expected: "validation failed: Tolerance: must be greater than 0 (and 1 more)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &ValidationErrors{Errors: tt.errs}
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{{Field: "Mode", Message: "required"}})

	assert.Equal(t, ErrTypeValidation, err.Type)
	assert.True(t, IsType(err, ErrTypeValidation))
	assert.Contains(t, err.Error(), "Mode: required")
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("run: %w", NewConfigError("mode", ErrUnknownMode))

	assert.True(t, IsType(wrapped, ErrTypeConfig))
	assert.False(t, IsType(wrapped, ErrTypeStorage))
	assert.False(t, IsType(ErrNoData, ErrTypeConfig))
	assert.False(t, IsType(nil, ErrTypeConfig))
}
