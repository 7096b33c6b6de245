package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeValidation        = 4000
	CodeLockerUnavailable = 4091
	CodeReleaseNoOp       = 4092
	CodeConflict          = 4093
	CodeInvalidTransition = 4094
	CodeLockerInUse       = 4095
	CodeDuplicate         = 4096
	CodeNotFound          = 4040

	// 5xxx - Server errors
	CodeInternalServer = 5000
)

// Base error types
var (
	// ErrValidation is the sentinel every ValidationError matches
	ErrValidation = errors.New("validation failed")

	// ErrLockerUnavailable is returned when a booking targets a locker with no free unit
	ErrLockerUnavailable = errors.New("locker is not available for booking")

	// ErrReleaseNoOp is returned when a release would exceed capacity or the hold was already released
	ErrReleaseNoOp = errors.New("locker release is a no-op")

	// ErrConflict is returned when a conditional write lost against a concurrent writer
	ErrConflict = errors.New("concurrent update conflict")

	// ErrInvalidTransition is returned when a transaction cannot move to the requested state
	ErrInvalidTransition = errors.New("invalid transaction state transition")

	// ErrLockerInUse is returned when deleting a locker that still has unreleased holds
	ErrLockerInUse = errors.New("locker still has active bookings")

	// ErrDuplicate is returned when a unique field collides with an existing record
	ErrDuplicate = errors.New("record already exists")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrLockerNotFound is returned when the requested locker doesn't exist
	ErrLockerNotFound = fmt.Errorf("locker: %w", ErrNotFound)

	// ErrTransactionNotFound is returned when the requested transaction doesn't exist
	ErrTransactionNotFound = fmt.Errorf("transaction: %w", ErrNotFound)

	// ErrPaymentNotFound is returned when the requested payment doesn't exist
	ErrPaymentNotFound = fmt.Errorf("payment: %w", ErrNotFound)

	// ErrDeviceNotFound is returned when the requested ESP32 device doesn't exist
	ErrDeviceNotFound = fmt.Errorf("esp32 device: %w", ErrNotFound)

	// ErrUserNotFound is returned when the requested user doesn't exist
	ErrUserNotFound = fmt.Errorf("user: %w", ErrNotFound)

	// ErrLockerLogNotFound is returned when the requested locker log doesn't exist
	ErrLockerLogNotFound = fmt.Errorf("locker log: %w", ErrNotFound)

	// ErrDatabaseConnection is returned when there's a problem talking to the store
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrLockerUnavailable):
		return CodeLockerUnavailable
	case errors.Is(err, ErrReleaseNoOp):
		return CodeReleaseNoOp
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, ErrLockerInUse):
		return CodeLockerInUse
	case errors.Is(err, ErrDuplicate):
		return CodeDuplicate
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternalServer
	}
}

// ValidationError names the offending field and carries a human-readable message
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface; the message is what callers surface
func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes every ValidationError match ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// LogFields returns a map of fields for structured logging
func (e *ValidationError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "validation_error",
		"field":      e.Field,
		"message":    e.Message,
		"error_code": CodeValidation,
	}
}

// NewValidationError creates a field-specific validation error
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// LockerError describes a failed availability operation against one locker
type LockerError struct {
	LockerID  string
	Operation string
	Available int
	Capacity  int
	Err       error
}

// Error implements the error interface for LockerError
func (e *LockerError) Error() string {
	return fmt.Sprintf("%s on locker %s (available %d of %d): %v",
		e.Operation, e.LockerID, e.Available, e.Capacity, e.Err)
}

// Unwrap returns the underlying error
func (e *LockerError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *LockerError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "locker_error",
		"locker_id":  e.LockerID,
		"operation":  e.Operation,
		"available":  e.Available,
		"capacity":   e.Capacity,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
}

// NewLockerError creates a detailed locker error
func NewLockerError(lockerID, operation string, available, capacity int, err error) error {
	return &LockerError{
		LockerID:  lockerID,
		Operation: operation,
		Available: available,
		Capacity:  capacity,
		Err:       err,
	}
}

// TransitionError describes a rejected transaction state change
type TransitionError struct {
	TransactionID string
	From          string
	To            string
	Err           error
}

// Error implements the error interface for TransitionError
func (e *TransitionError) Error() string {
	return fmt.Sprintf("transaction %s cannot move from %s to %s: %v",
		e.TransactionID, e.From, e.To, e.Err)
}

// Unwrap returns the underlying error
func (e *TransitionError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *TransitionError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "transition_error",
		"transaction_id": e.TransactionID,
		"from":           e.From,
		"to":             e.To,
		"error":          e.Err.Error(),
		"error_code":     ErrorCode(e.Err),
	}
}

// NewTransitionError creates a detailed transition error
func NewTransitionError(transactionID, from, to string, err error) error {
	return &TransitionError{
		TransactionID: transactionID,
		From:          from,
		To:            to,
		Err:           err,
	}
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsLockerUnavailableError checks if the error reports a full locker
func IsLockerUnavailableError(err error) bool {
	return errors.Is(err, ErrLockerUnavailable)
}

// IsReleaseNoOpError checks if the error reports a skipped release
func IsReleaseNoOpError(err error) bool {
	return errors.Is(err, ErrReleaseNoOp)
}

// IsConflictError checks if the error is a concurrent write conflict
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// LogFields extracts structured fields from rich errors, falling back to the message
func LogFields(err error) map[string]any {
	var fielder interface{ LogFields() map[string]any }
	if errors.As(err, &fielder) {
		return fielder.LogFields()
	}
	return map[string]any{
		"error":      err.Error(),
		"error_code": ErrorCode(err),
	}
}
