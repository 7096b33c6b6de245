package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
)

// LockerStatus is the occupancy flag derived from the available counter
type LockerStatus string

// LockerStatus constants
const (
	LockerStatusAvailable LockerStatus = "available"
	LockerStatusOccupied  LockerStatus = "occupied"
)

// LockerSize is a descriptive size class shown to customers
type LockerSize string

// LockerSize constants
const (
	LockerSizeSmall  LockerSize = "small"
	LockerSizeMedium LockerSize = "medium"
	LockerSizeLarge  LockerSize = "large"
)

// Locker is a physical storage unit with a fixed capacity and a live available count
type Locker struct {
	ID   string
	Code string     // Short human code printed on the unit
	Name string     `validate:"required" label:"name"`
	Size LockerSize `validate:"omitempty,oneof=small medium large" label:"size"`
	// BasePrice is the hourly price in minor units
	BasePrice int64 `validate:"gte=0" label:"base price"`
	Location  string
	DeviceID  string // ESP32 device bound to this locker, may be empty
	// Capacity is immutable after creation
	Capacity int `validate:"gt=0" label:"capacity"`
	// Available satisfies 0 <= Available <= Capacity
	Available int
	Status    LockerStatus // Occupied iff Available == 0
	Version   int64        // Bumped by every counter write
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LockerState is the mutable counter pair written by a conditional update
type LockerState struct {
	Available int
	Status    LockerStatus
}

// StatusFor derives the status flag from an available count
func StatusFor(available int) LockerStatus {
	if available == 0 {
		return LockerStatusOccupied
	}
	return LockerStatusAvailable
}

// NewLocker creates a locker with every unit free
func NewLocker(id, code, name string, capacity int, timeProvider coreport.TimeProvider) (*Locker, error) {
	if id == "" {
		return nil, errs.NewValidationError("id", "id is required")
	}
	if name == "" {
		return nil, errs.NewValidationError("name", "name is required")
	}
	if capacity <= 0 {
		return nil, errs.NewValidationError("capacity", "capacity must be greater than 0")
	}

	now := timeProvider.Now()
	return &Locker{
		ID:        id,
		Code:      code,
		Name:      name,
		Size:      LockerSizeMedium,
		Capacity:  capacity,
		Available: capacity,
		Status:    LockerStatusAvailable,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// State returns the current counter pair
func (l *Locker) State() LockerState {
	return LockerState{Available: l.Available, Status: l.Status}
}

// Holds returns the number of units currently booked
func (l *Locker) Holds() int {
	return l.Capacity - l.Available
}

// BookedState computes the state after taking one unit.
// Fails with ErrLockerUnavailable when no unit is free.
func (l *Locker) BookedState() (LockerState, error) {
	if l.Available <= 0 || l.Status != LockerStatusAvailable {
		return LockerState{}, errs.NewLockerError(l.ID, "book", l.Available, l.Capacity, errs.ErrLockerUnavailable)
	}
	next := l.Available - 1
	return LockerState{Available: next, Status: StatusFor(next)}, nil
}

// ReleasedState computes the state after returning one unit.
// Fails with ErrReleaseNoOp when the locker is already at full capacity.
func (l *Locker) ReleasedState() (LockerState, error) {
	if l.Available >= l.Capacity {
		return LockerState{}, errs.NewLockerError(l.ID, "release", l.Available, l.Capacity, errs.ErrReleaseNoOp)
	}
	next := l.Available + 1
	return LockerState{Available: next, Status: LockerStatusAvailable}, nil
}

// StateFromHolds computes the counter pair implied by a hold count, clamped to the capacity bounds
func (l *Locker) StateFromHolds(holds int) LockerState {
	available := l.Capacity - holds
	if available < 0 {
		available = 0
	}
	if available > l.Capacity {
		available = l.Capacity
	}
	return LockerState{Available: available, Status: StatusFor(available)}
}

// Valid reports whether the state respects the bounds and the status rule for a capacity
func (s LockerState) Valid(capacity int) bool {
	if s.Available < 0 || s.Available > capacity {
		return false
	}
	return s.Status == StatusFor(s.Available)
}

// Apply writes a committed state onto the locker
func (l *Locker) Apply(state LockerState, version int64, at time.Time) {
	l.Available = state.Available
	l.Status = state.Status
	l.Version = version
	l.UpdatedAt = at
}

// Snapshot builds the change notification payload for this locker
func (l *Locker) Snapshot(action LockerAction, at time.Time) LockerSnapshot {
	return LockerSnapshot{
		LockerID:  l.ID,
		Capacity:  l.Capacity,
		Available: l.Available,
		Status:    l.Status,
		Version:   l.Version,
		Action:    action,
		At:        at,
	}
}

// LockerSnapshot is published to external consumers after a committed change
type LockerSnapshot struct {
	LockerID  string       `json:"lockerId"`
	Capacity  int          `json:"capacity"`
	Available int          `json:"available"`
	Status    LockerStatus `json:"status"`
	Version   int64        `json:"version"`
	Action    LockerAction `json:"action,omitempty"`
	At        time.Time    `json:"at"`
}
