package entity

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for prices and payments
const MaxDecimalPlaces = 2

// ParseAmount converts a decimal string such as "12.5" to minor units (1250).
// The split on the decimal point avoids floating point rounding.
// Errors are validation errors naming field.
func ParseAmount(field, amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, errs.NewValidationError(field, fmt.Sprintf("%s is required", field))
	}
	if strings.HasPrefix(amount, "-") {
		return 0, errs.NewValidationError(field, fmt.Sprintf("%s must not be negative", field))
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return 0, errs.NewValidationError(field, fmt.Sprintf("%s is not a valid number", field))
	}

	digits := parts[0]
	fraction := ""
	if len(parts) == 2 {
		fraction = parts[1]
	}
	if len(fraction) > MaxDecimalPlaces {
		return 0, errs.NewValidationError(field,
			fmt.Sprintf("%s allows at most %d decimal places", field, MaxDecimalPlaces))
	}
	fraction += strings.Repeat("0", MaxDecimalPlaces-len(fraction))

	value, err := strconv.ParseInt(digits+fraction, 10, 64)
	if err != nil {
		return 0, errs.NewValidationError(field, fmt.Sprintf("%s is not a valid number", field))
	}
	return value, nil
}

// FormatAmount renders minor units as a decimal string with two places (1015 becomes "10.15")
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
