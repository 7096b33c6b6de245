package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
)

func TestNewLocker(t *testing.T) {
	clock := stubClock{now: fixedTime}

	t.Run("Valid locker starts empty", func(t *testing.T) {
		l, err := NewLocker("L1", "A-01", "Main hall", 4, clock)

		require.NoError(t, err)
		assert.Equal(t, 4, l.Capacity)
		assert.Equal(t, 4, l.Available)
		assert.Equal(t, LockerStatusAvailable, l.Status)
		assert.Equal(t, int64(1), l.Version)
		assert.Equal(t, fixedTime, l.CreatedAt)
		assert.Equal(t, 0, l.Holds())
	})

	tests := []struct {
		name     string
		id       string
		lockerNm string
		capacity int
		message  string
	}{
		{"Missing id", "", "Main", 1, "id is required"},
		{"Missing name", "L1", "", 1, "name is required"},
		{"Zero capacity", "L1", "Main", 0, "capacity must be greater than 0"},
		{"Negative capacity", "L1", "Main", -2, "capacity must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLocker(tt.id, "", tt.lockerNm, tt.capacity, clock)
			require.Error(t, err)
			assert.True(t, errs.IsValidationError(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestLockerBookedState(t *testing.T) {
	t.Run("Taking the last unit marks the locker occupied", func(t *testing.T) {
		l := &Locker{ID: "L1", Capacity: 3, Available: 1, Status: LockerStatusAvailable}

		next, err := l.BookedState()
		require.NoError(t, err)
		assert.Equal(t, LockerState{Available: 0, Status: LockerStatusOccupied}, next)
		assert.True(t, next.Valid(l.Capacity))
	})

	t.Run("Free units keep the locker available", func(t *testing.T) {
		l := &Locker{ID: "L1", Capacity: 3, Available: 3, Status: LockerStatusAvailable}

		next, err := l.BookedState()
		require.NoError(t, err)
		assert.Equal(t, 2, next.Available)
		assert.Equal(t, LockerStatusAvailable, next.Status)
	})

	t.Run("Full locker is unavailable", func(t *testing.T) {
		l := &Locker{ID: "L1", Capacity: 3, Available: 0, Status: LockerStatusOccupied}

		_, err := l.BookedState()
		require.Error(t, err)
		assert.True(t, errs.IsLockerUnavailableError(err))

		var lockerErr *errs.LockerError
		require.True(t, errors.As(err, &lockerErr))
		assert.Equal(t, "L1", lockerErr.LockerID)
		assert.Equal(t, 0, lockerErr.Available)
	})
}

func TestLockerReleasedState(t *testing.T) {
	t.Run("Releasing from occupied returns to available", func(t *testing.T) {
		l := &Locker{ID: "L1", Capacity: 2, Available: 0, Status: LockerStatusOccupied}

		next, err := l.ReleasedState()
		require.NoError(t, err)
		assert.Equal(t, LockerState{Available: 1, Status: LockerStatusAvailable}, next)
	})

	t.Run("Release at full capacity is a no-op error", func(t *testing.T) {
		l := &Locker{ID: "L1", Capacity: 2, Available: 2, Status: LockerStatusAvailable}

		_, err := l.ReleasedState()
		require.Error(t, err)
		assert.True(t, errs.IsReleaseNoOpError(err))
	})
}

func TestLockerStateFromHolds(t *testing.T) {
	l := &Locker{ID: "L1", Capacity: 3}

	assert.Equal(t, LockerState{Available: 3, Status: LockerStatusAvailable}, l.StateFromHolds(0))
	assert.Equal(t, LockerState{Available: 1, Status: LockerStatusAvailable}, l.StateFromHolds(2))
	assert.Equal(t, LockerState{Available: 0, Status: LockerStatusOccupied}, l.StateFromHolds(3))
	assert.Equal(t, LockerState{Available: 0, Status: LockerStatusOccupied}, l.StateFromHolds(7))
	assert.Equal(t, LockerState{Available: 3, Status: LockerStatusAvailable}, l.StateFromHolds(-1))
}

func TestLockerStateValid(t *testing.T) {
	assert.True(t, LockerState{Available: 0, Status: LockerStatusOccupied}.Valid(2))
	assert.True(t, LockerState{Available: 2, Status: LockerStatusAvailable}.Valid(2))
	assert.False(t, LockerState{Available: 0, Status: LockerStatusAvailable}.Valid(2))
	assert.False(t, LockerState{Available: 1, Status: LockerStatusOccupied}.Valid(2))
	assert.False(t, LockerState{Available: 3, Status: LockerStatusAvailable}.Valid(2))
	assert.False(t, LockerState{Available: -1, Status: LockerStatusOccupied}.Valid(2))
}

func TestLockerApplyAndSnapshot(t *testing.T) {
	l := &Locker{ID: "L1", Capacity: 2, Available: 2, Status: LockerStatusAvailable, Version: 4}
	at := fixedTime.Add(30)

	l.Apply(LockerState{Available: 1, Status: LockerStatusAvailable}, 5, at)
	snap := l.Snapshot(ActionBooked, at)

	assert.Equal(t, 1, l.Available)
	assert.Equal(t, int64(5), l.Version)
	assert.Equal(t, at, l.UpdatedAt)
	assert.Equal(t, LockerSnapshot{
		LockerID:  "L1",
		Capacity:  2,
		Available: 1,
		Status:    LockerStatusAvailable,
		Version:   5,
		Action:    ActionBooked,
		At:        at,
	}, snap)
}

func TestActionCountsDelta(t *testing.T) {
	counts := ActionCounts{ActionBooked: 5, ActionRetrieved: 2, ActionCancelled: 1}
	assert.Equal(t, 2, counts.Delta())
	assert.Equal(t, 0, ActionCounts{}.Delta())
	assert.True(t, ActionCancelled.IsRelease())
	assert.False(t, ActionBooked.IsRelease())
	assert.False(t, LockerAction("opened").IsValid())
}
