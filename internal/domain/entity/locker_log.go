package entity

import "time"

// LockerAction is the audit action recorded for a locker counter change
type LockerAction string

// LockerAction constants
const (
	ActionBooked    LockerAction = "booked"
	ActionRetrieved LockerAction = "retrieved"
	ActionCancelled LockerAction = "cancelled"
)

// IsRelease reports whether the action returns a unit to the locker
func (a LockerAction) IsRelease() bool {
	return a == ActionRetrieved || a == ActionCancelled
}

// IsValid reports whether the action is known
func (a LockerAction) IsValid() bool {
	return a == ActionBooked || a.IsRelease()
}

// LockerLog is an append-only audit entry for one committed locker change
type LockerLog struct {
	ID       string
	LockerID string       `validate:"required" label:"locker id"`
	Action   LockerAction `validate:"required,oneof=booked retrieved cancelled" label:"action"`
	// TransactionID is empty when the change was not tied to a transaction
	TransactionID      string
	UserID             string
	Timestamp          time.Time
	ResultingAvailable int          `validate:"gte=0" label:"resulting available"`
	ResultingStatus    LockerStatus `validate:"omitempty,oneof=available occupied" label:"resulting status"`
	Note               string       // Set only by administrative corrections
}

// ActionCounts tallies log entries per action for a locker
type ActionCounts map[LockerAction]int

// Delta returns booked minus released entries, the hold count implied by the log
func (c ActionCounts) Delta() int {
	return c[ActionBooked] - c[ActionRetrieved] - c[ActionCancelled]
}
