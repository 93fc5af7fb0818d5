package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	validator := NewPhoneValidator()

	tests := []struct {
		input    string
		expected string
		name     string
	}{
		{"5551234567", "+905551234567", "Ten local digits"},
		{"05551234567", "+905551234567", "Trunk zero"},
		{"905551234567", "+905551234567", "Country code without plus"},
		{"+905551234567", "+905551234567", "Already normalized"},
		{"0555 123 45 67", "+905551234567", "With spaces"},
		{"(0555) 123-4567", "+905551234567", "With punctuation"},
		{"+44 20 7946 0958", "+442079460958", "Foreign number"},
		{"4915112345678", "+4915112345678", "Other lengths verbatim"},
		{"", "", "Empty"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, validator.Normalize(tc.input))
		})
	}
}

func TestNormalize_SameDedupKey(t *testing.T) {
	keys := map[string]bool{}
	for _, in := range []string{"5551234567", "05551234567", "905551234567"} {
		keys[Normalize(in)] = true
	}
	assert.Len(t, keys, 1)
	assert.True(t, keys["+905551234567"])
}

func TestValidate(t *testing.T) {
	validator := NewPhoneValidator()

	t.Run("Valid", func(t *testing.T) {
		normalized, err := validator.Validate("0555 123 45 67")
		require.NoError(t, err)
		assert.Equal(t, "+905551234567", normalized)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := validator.Validate("   ")
		assert.ErrorIs(t, err, ErrEmptyPhone)
	})

	t.Run("Too short", func(t *testing.T) {
		_, err := validator.Validate("12345")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("No digits", func(t *testing.T) {
		_, err := validator.Validate("call me")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("Leading zero country", func(t *testing.T) {
		_, err := validator.Validate("+0123456789012")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestRegisterBindings(t *testing.T) {
	require.NoError(t, RegisterBindings())

	type form struct {
		Phone string `binding:"required,intl_phone"`
	}

	assert.NoError(t, binding.Validator.ValidateStruct(form{Phone: "05551234567"}))
	assert.Error(t, binding.Validator.ValidateStruct(form{Phone: "123"}))
}
