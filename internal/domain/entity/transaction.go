package entity

import (
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
)

// PaymentStatus is the payment side of a transaction's lifecycle
type PaymentStatus string

// PaymentStatus constants
const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
	PaymentExpired PaymentStatus = "expired"
)

// Lifecycle state names used in transition errors and API responses
const (
	StatePending    = "pending"
	StatePaid       = "paid"
	StateFailed     = "failed"
	StateExpired    = "expired"
	StateCheckedOut = "checked_out"
	StateDeleted    = "deleted"
	StateAccessed   = "accessed"
)

// IsValid reports whether the status is one of the known payment states
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentExpired:
		return true
	}
	return false
}

// Transaction is a locker rental. It holds one capacity unit of its locker until released.
type Transaction struct {
	ID            string
	LockerID      string
	UserID        string
	PaymentStatus PaymentStatus
	PaymentMethod string
	Duration      int   // Rental length in hours
	TotalPrice    int64 // Minor units
	AccessCode    string
	CheckedOut    bool
	Released      bool // Set exactly once, in the same unit as the locker release
	ExpiresAt     time.Time
	CheckedOutAt  *time.Time
	ReleasedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
}

// BookingRequest carries the caller input for a new transaction
type BookingRequest struct {
	LockerID      string `validate:"required" label:"locker id"`
	UserID        string `validate:"required" label:"user id"`
	Duration      int    `validate:"gte=0" label:"duration"`
	PaymentMethod string
}

// State returns the lifecycle state name
func (t *Transaction) State() string {
	switch {
	case t.CheckedOut:
		return StateCheckedOut
	case t.PaymentStatus == PaymentFailed:
		return StateFailed
	case t.PaymentStatus == PaymentExpired:
		return StateExpired
	case t.PaymentStatus == PaymentPaid:
		return StatePaid
	default:
		return StatePending
	}
}

// IsTerminal reports whether no further transition except delete is possible
func (t *Transaction) IsTerminal() bool {
	return t.CheckedOut || t.PaymentStatus == PaymentFailed || t.PaymentStatus == PaymentExpired
}

// HoldsUnit reports whether the transaction still occupies a capacity unit
func (t *Transaction) HoldsUnit() bool {
	return !t.Released
}

// IsOverdue reports whether a pending payment passed its deadline
func (t *Transaction) IsOverdue(now time.Time) bool {
	return t.PaymentStatus == PaymentPending && !t.CheckedOut && !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// RentalEndsAt returns when access stops being granted, counted from booking time.
// It is zero for bookings without a duration.
func (t *Transaction) RentalEndsAt() time.Time {
	if t.Duration <= 0 {
		return time.Time{}
	}
	return t.CreatedAt.Add(time.Duration(t.Duration) * time.Hour)
}

// CheckAccess reports whether the access code may open the locker at now.
// Only a paid transaction that still holds its unit within the rental window qualifies.
func (t *Transaction) CheckAccess(now time.Time) error {
	if t.CheckedOut || t.Released {
		return errs.NewTransitionError(t.ID, t.State(), StateAccessed, errs.ErrInvalidTransition)
	}
	if t.PaymentStatus != PaymentPaid {
		return errs.NewTransitionError(t.ID, t.State(), StateAccessed,
			fmt.Errorf("%w: payment is %s", errs.ErrInvalidTransition, t.PaymentStatus))
	}
	if end := t.RentalEndsAt(); !end.IsZero() && now.After(end) {
		return errs.NewTransitionError(t.ID, t.State(), StateAccessed,
			fmt.Errorf("%w: rental ended at %s", errs.ErrInvalidTransition, end.Format(time.RFC3339)))
	}
	return nil
}

// Clone returns a copy safe to mutate
func (t *Transaction) Clone() *Transaction {
	c := *t
	if t.CheckedOutAt != nil {
		at := *t.CheckedOutAt
		c.CheckedOutAt = &at
	}
	if t.ReleasedAt != nil {
		at := *t.ReleasedAt
		c.ReleasedAt = &at
	}
	return &c
}

// MarkPaid moves a pending transaction to paid
func (t *Transaction) MarkPaid(now time.Time) error {
	if t.PaymentStatus != PaymentPending || t.CheckedOut {
		return errs.NewTransitionError(t.ID, t.State(), StatePaid, errs.ErrInvalidTransition)
	}
	t.PaymentStatus = PaymentPaid
	t.UpdatedAt = now
	return nil
}

// MarkPaymentEnded moves a non-terminal transaction to failed or expired and sets the released marker.
// The caller is responsible for releasing the locker unit in the same unit of work.
func (t *Transaction) MarkPaymentEnded(status PaymentStatus, now time.Time) error {
	if status != PaymentFailed && status != PaymentExpired {
		return errs.NewTransitionError(t.ID, t.State(), string(status), errs.ErrInvalidTransition)
	}
	if t.Released {
		return errs.NewTransitionError(t.ID, t.State(), string(status), errs.ErrReleaseNoOp)
	}
	if t.IsTerminal() {
		return errs.NewTransitionError(t.ID, t.State(), string(status), errs.ErrInvalidTransition)
	}
	t.PaymentStatus = status
	t.markReleased(now)
	return nil
}

// MarkCheckedOut records the retrieval and sets the released marker
func (t *Transaction) MarkCheckedOut(now time.Time) error {
	if t.CheckedOut || t.Released {
		return errs.NewTransitionError(t.ID, t.State(), StateCheckedOut, errs.ErrReleaseNoOp)
	}
	t.CheckedOut = true
	t.CheckedOutAt = &now
	t.markReleased(now)
	return nil
}

// MarkDeleted sets the released marker ahead of record removal.
// It returns false when the unit was already released and no locker call is needed.
func (t *Transaction) MarkDeleted(now time.Time) bool {
	if t.Released {
		return false
	}
	t.markReleased(now)
	return true
}

func (t *Transaction) markReleased(now time.Time) {
	t.Released = true
	t.ReleasedAt = &now
	t.UpdatedAt = now
}
