package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
)

// Validator checks struct tags and reports the first failing field as a *ValidationError.
// Field names come from the `label` tag so messages read like "device identifier is required".
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator
func New() *Validator {
	v := validator.New()
	RegisterLabels(v)
	return &Validator{validate: v}
}

// RegisterLabels names fields by their `label` tag, falling back to the json or form key.
// The HTTP binding engine registers it too, so both layers report the same field names.
func RegisterLabels(v *validator.Validate) {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		for _, key := range []string{"json", "form"} {
			name, _, _ := strings.Cut(field.Tag.Get(key), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return strings.ToLower(field.Name)
	})
}

// Struct validates s. Only the first violation is reported.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %s", errs.ErrValidation, err.Error())
	}
	return translate(fieldErrs[0])
}

// Translate converts a validator failure into a *ValidationError.
// It reports false for errors that did not come from the validator.
func Translate(err error) (error, bool) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return nil, false
	}
	return translate(fieldErrs[0]), true
}

func translate(fe validator.FieldError) error {
	field := fe.Field()
	var message string

	switch fe.Tag() {
	case "required":
		message = fmt.Sprintf("%s is required", field)
	case "gt":
		message = fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		message = fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		message = fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		message = fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		message = fmt.Sprintf("%s must be a valid email address", field)
	case "ip":
		message = fmt.Sprintf("%s must be a valid IP address", field)
	default:
		message = fmt.Sprintf("%s is invalid", field)
	}

	return errs.NewValidationError(field, message)
}

// RequireID rejects empty identifiers on update and lookup paths
func RequireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return errs.NewValidationError(field, fmt.Sprintf("%s is required", field))
	}
	return nil
}
