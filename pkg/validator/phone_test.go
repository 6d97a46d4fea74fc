package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoneValidator(t *testing.T) {
	validator := NewPhoneValidator()
	assert.NotNil(t, validator)
}

func TestValidate_ValidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"0771234567", "0771234567", "Standard format"},
		{"077 123 4567", "0771234567", "With spaces"},
		{"077-123-4567", "0771234567", "With dashes"},
		{"077.123.4567", "0771234567", "With dots"},
		{"(077) 123 4567", "0771234567", "With parentheses"},
		{"+94 77 123 4567", "+94771234567", "International"},
		{"5551234", "5551234", "Seven digits"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidate_InvalidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty string"},
		{"   ", ErrEmptyPhone, "Only spaces"},
		{"123", ErrInvalidLength, "Too short"},
		{"1234567890123456", ErrInvalidLength, "Too long"},
		{"077123456a", ErrInvalidFormat, "Contains letters"},
		{"077 123 456!", ErrInvalidFormat, "Contains special characters"},
		{"07+71234567", ErrInvalidFormat, "Plus in the middle"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.Error(t, err)
			assert.Equal(t, tc.expectedErr, err)
		})
	}
}

func TestSanitize(t *testing.T) {
	validator := NewPhoneValidator()

	tests := []struct {
		input    string
		expected string
		name     string
	}{
		{"0771234567", "0771234567", "Already clean"},
		{"077 - 123 - 4567", "0771234567", "Multiple separators"},
		{"  077-123-4567  ", "0771234567", "Surrounding spaces"},
		{"+94 (77) 123.4567", "+94771234567", "Mixed separators"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, validator.Sanitize(tc.input))
		})
	}
}

func TestIsValid(t *testing.T) {
	validator := NewPhoneValidator()
	assert.True(t, validator.IsValid("0771234567"))
	assert.False(t, validator.IsValid("abc"))
}
