package entity

import (
	"testing"

	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	t.Run("Valid amounts", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected int64
		}{
			{"100.00", 10000},
			{"0.01", 1},
			{"0.10", 10},
			{"1", 100},
			{"1.5", 150},
			{"10.", 1000},
			{" 7.25 ", 725},
			{"0", 0},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				minor, err := ParseAmount("amount", tc.input)
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, minor)
			})
		}
	})

	t.Run("Invalid amounts", func(t *testing.T) {
		testCases := []struct {
			input       string
			message     string
			description string
		}{
			{"", "amount is required", "Empty string"},
			{"-1.00", "amount must not be negative", "Negative amount"},
			{"1.234", "amount allows at most 2 decimal places", "Too many decimal places"},
			{"abc", "amount is not a valid number", "Non-numeric"},
			{"1.00.00", "amount is not a valid number", "Multiple decimal points"},
			{"$100", "amount is not a valid number", "Currency symbol"},
		}

		for _, tc := range testCases {
			t.Run(tc.description, func(t *testing.T) {
				_, err := ParseAmount("amount", tc.input)
				assert.ErrorIs(t, err, errs.ErrValidation)
				assert.EqualError(t, err, tc.message)
			})
		}
	})
}

func TestFormatAmount(t *testing.T) {
	testCases := []struct {
		input    int64
		expected string
	}{
		{1015, "10.15"},
		{1000, "10.00"},
		{5, "0.05"},
		{0, "0.00"},
		{-250, "-2.50"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, FormatAmount(tc.input))
	}
}
