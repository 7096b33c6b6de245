package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// AvailabilityResult is the post-update counter state of a locker
type AvailabilityResult struct {
	LockerID  string              `json:"lockerId"`
	Capacity  int                 `json:"capacity"`
	Available int                 `json:"available"`
	Status    entity.LockerStatus `json:"status"`
	Version   int64               `json:"version"`
}

// BookingResult is returned by BookLocker
type BookingResult = AvailabilityResult

// ReleaseResult is returned by ReleaseLocker
type ReleaseResult = AvailabilityResult

// ConsistencyReport compares a locker counter with the holds and audit entries that reference it
type ConsistencyReport struct {
	LockerID  string    `json:"lockerId"`
	Capacity  int       `json:"capacity"`
	Available int       `json:"available"`
	// CounterHolds is capacity minus available
	CounterHolds int `json:"counterHolds"`
	// UnreleasedHolds counts transactions whose released marker is unset
	UnreleasedHolds int `json:"unreleasedHolds"`
	// LogDelta is booked minus retrieved minus cancelled entries; purges make it drift legitimately
	LogDelta      int       `json:"logDelta"`
	Consistent    bool      `json:"consistent"`
	LogConsistent bool      `json:"logConsistent"`
	Reconciled    bool      `json:"reconciled"`
	CheckedAt     time.Time `json:"checkedAt"`
}

// LogContext carries the references recorded on the audit entry of a locker change
type LogContext struct {
	TransactionID string
	UserID        string
}

// LogOption decorates the audit entry of a locker change
type LogOption func(*LogContext)

// WithTransaction records the transaction that caused the change
func WithTransaction(id string) LogOption {
	return func(c *LogContext) { c.TransactionID = id }
}

// WithUser records the user on whose behalf the change was made
func WithUser(id string) LogOption {
	return func(c *LogContext) { c.UserID = id }
}

// BuildLogContext applies options in order
func BuildLogContext(opts ...LogOption) LogContext {
	var c LogContext
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// AvailabilityManager owns the capacity transitions of lockers.
// Both mutating calls join the unit of work carried by ctx when there is one.
type AvailabilityManager interface {
	// BookLocker takes one unit.
	//
	// Possible errors:
	// - ErrLockerUnavailable: If no unit is free; nothing is written
	// - ErrLockerNotFound: If the locker doesn't exist
	// - ErrConflict: If conditional writes kept losing after the retry budget
	BookLocker(ctx context.Context, lockerID string, opts ...LogOption) (*BookingResult, error)

	// ReleaseLocker returns one unit; reason is retrieved or cancelled.
	//
	// Possible errors:
	// - ErrReleaseNoOp: If the locker is already at full capacity
	// - ErrValidation: If reason is not a release action
	// - ErrLockerNotFound: If the locker doesn't exist
	// - ErrConflict: If conditional writes kept losing after the retry budget
	ReleaseLocker(ctx context.Context, lockerID string, reason entity.LockerAction, opts ...LogOption) (*ReleaseResult, error)

	// CheckConsistency reports drift between the counter, unreleased holds and the audit trail
	CheckConsistency(ctx context.Context, lockerID string) (*ConsistencyReport, error)

	// Reconcile rewrites the counter from the unreleased hold count when they disagree
	Reconcile(ctx context.Context, lockerID string) (*ConsistencyReport, error)
}
