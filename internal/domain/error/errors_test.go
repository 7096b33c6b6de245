package error

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"Validation", NewValidationError("name", "name is required"), CodeValidation},
		{"LockerUnavailable", ErrLockerUnavailable, CodeLockerUnavailable},
		{"ReleaseNoOp", ErrReleaseNoOp, CodeReleaseNoOp},
		{"Conflict", ErrConflict, CodeConflict},
		{"InvalidTransition", ErrInvalidTransition, CodeInvalidTransition},
		{"LockerInUse", ErrLockerInUse, CodeLockerInUse},
		{"Duplicate", ErrDuplicate, CodeDuplicate},
		{"LockerNotFound", ErrLockerNotFound, CodeNotFound},
		{"TransactionNotFound", ErrTransactionNotFound, CodeNotFound},
		{"UnknownError", errors.New("unknown error"), CodeInternalServer},
		{"WrappedError", fmt.Errorf("wrapped: %w", ErrConflict), CodeConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code := ErrorCode(tc.err)
			if code != tc.expected {
				t.Errorf("ErrorCode(%v) = %d, want %d", tc.err, code, tc.expected)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("amount", "payment amount must be greater than 0")

	if err.Error() != "payment amount must be greater than 0" {
		t.Errorf("ValidationError.Error() = %s", err.Error())
	}
	if !IsValidationError(err) {
		t.Errorf("IsValidationError(err) = false, want true")
	}
	if !IsValidationError(fmt.Errorf("create payment: %w", err)) {
		t.Errorf("wrapped validation error should still match")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "amount" {
		t.Errorf("errors.As did not recover the field, got %+v", ve)
	}
}

func TestLockerError(t *testing.T) {
	err := NewLockerError("locker-1", "book", 0, 4, ErrLockerUnavailable)

	expected := "book on locker locker-1 (available 0 of 4): locker is not available for booking"
	if err.Error() != expected {
		t.Errorf("LockerError.Error() = %s, want %s", err.Error(), expected)
	}
	if !IsLockerUnavailableError(err) {
		t.Errorf("errors.Is(err, ErrLockerUnavailable) = false, want true")
	}

	fields := LogFields(err)
	if fields["locker_id"] != "locker-1" || fields["error_code"] != CodeLockerUnavailable {
		t.Errorf("unexpected log fields: %v", fields)
	}
}

func TestTransitionError(t *testing.T) {
	err := NewTransitionError("tx-1", "expired", "paid", ErrInvalidTransition)

	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("errors.Is(err, ErrInvalidTransition) = false, want true")
	}
	if ErrorCode(err) != CodeInvalidTransition {
		t.Errorf("ErrorCode = %d, want %d", ErrorCode(err), CodeInvalidTransition)
	}
}

func TestIsNotFoundError(t *testing.T) {
	for _, err := range []error{
		ErrNotFound, ErrLockerNotFound, ErrTransactionNotFound, ErrPaymentNotFound,
		ErrDeviceNotFound, ErrUserNotFound, ErrLockerLogNotFound,
	} {
		if !IsNotFoundError(err) {
			t.Errorf("IsNotFoundError(%v) = false, want true", err)
		}
	}
	if IsNotFoundError(ErrConflict) {
		t.Errorf("IsNotFoundError(ErrConflict) = true, want false")
	}
}

func TestLogFieldsFallback(t *testing.T) {
	fields := LogFields(errors.New("boom"))
	if fields["error"] != "boom" || fields["error_code"] != CodeInternalServer {
		t.Errorf("unexpected fallback fields: %v", fields)
	}
}
