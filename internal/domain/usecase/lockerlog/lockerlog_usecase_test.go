package lockerlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/idgen"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/memory"
	timeadapter "github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/time"
)

var fixedTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newUseCase(t *testing.T) (*LockerLogUseCase, *memory.Store, *timeadapter.FixedTimeProvider) {
	t.Helper()
	clock := timeadapter.NewFixedTimeProvider(fixedTime)
	store := memory.NewStore(clock, logger.NewNoopLogger())

	l, err := entity.NewLocker("L1", "A-01", "Hall", 2, clock)
	require.NoError(t, err)
	require.NoError(t, store.Lockers().Create(context.Background(), l))

	uc := NewLockerLogUseCase(store.LockerLogs(), store.Lockers(), validation.New(), idgen.NewUUIDGenerator(), clock, logger.NewNoopLogger())
	return uc, store, clock
}

func TestCreateLog(t *testing.T) {
	ctx := context.Background()

	t.Run("Manual entry snapshots the locker without changing it", func(t *testing.T) {
		uc, store, _ := newUseCase(t)

		log, err := uc.CreateLog(ctx, &entity.LockerLog{LockerID: "L1", Action: entity.ActionCancelled, Note: "door jam"})
		require.NoError(t, err)
		assert.NotEmpty(t, log.ID)
		assert.Equal(t, fixedTime, log.Timestamp)
		assert.Equal(t, 2, log.ResultingAvailable)
		assert.Equal(t, entity.LockerStatusAvailable, log.ResultingStatus)

		l, err := store.Lockers().GetByID(ctx, "L1")
		require.NoError(t, err)
		assert.Equal(t, 2, l.Available)
		assert.Equal(t, int64(1), l.Version)
	})

	t.Run("Missing locker id", func(t *testing.T) {
		uc, _, _ := newUseCase(t)

		_, err := uc.CreateLog(ctx, &entity.LockerLog{Action: entity.ActionBooked})
		require.Error(t, err)
		assert.Equal(t, "locker id is required", err.Error())
	})

	t.Run("Unknown action", func(t *testing.T) {
		uc, _, _ := newUseCase(t)

		_, err := uc.CreateLog(ctx, &entity.LockerLog{LockerID: "L1", Action: "opened"})
		require.Error(t, err)
		assert.Equal(t, "action must be one of: booked, retrieved, cancelled", err.Error())
	})

	t.Run("Unknown locker", func(t *testing.T) {
		uc, _, _ := newUseCase(t)

		_, err := uc.CreateLog(ctx, &entity.LockerLog{LockerID: "nope", Action: entity.ActionBooked})
		assert.ErrorIs(t, err, errs.ErrLockerNotFound)
	})
}

func TestCorrectLog(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCase(t)
	log, err := uc.CreateLog(ctx, &entity.LockerLog{LockerID: "L1", Action: entity.ActionBooked, TransactionID: "tx-1"})
	require.NoError(t, err)

	corrected, err := uc.CorrectLog(ctx, &entity.LockerLog{ID: log.ID, Action: entity.ActionRetrieved, Note: "wrong button"})
	require.NoError(t, err)
	assert.Equal(t, entity.ActionRetrieved, corrected.Action)
	assert.Equal(t, "tx-1", corrected.TransactionID)
	assert.Equal(t, "L1", corrected.LockerID)

	stored, err := uc.GetLog(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, "wrong button", stored.Note)

	_, err = uc.CorrectLog(ctx, &entity.LockerLog{ID: "missing", Action: entity.ActionBooked, Note: "typo"})
	assert.ErrorIs(t, err, errs.ErrLockerLogNotFound)

	_, err = uc.CorrectLog(ctx, &entity.LockerLog{ID: log.ID, Action: entity.ActionBooked})
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.EqualError(t, err, "note is required")
}

func TestListAndPurgeLogs(t *testing.T) {
	ctx := context.Background()
	uc, _, clock := newUseCase(t)

	_, err := uc.CreateLog(ctx, &entity.LockerLog{LockerID: "L1", Action: entity.ActionBooked})
	require.NoError(t, err)
	clock.Advance(48 * time.Hour)
	recent, err := uc.CreateLog(ctx, &entity.LockerLog{LockerID: "L1", Action: entity.ActionCancelled})
	require.NoError(t, err)

	booked, err := uc.ListLogs(ctx, persistence.LockerLogFilter{LockerID: "L1", Action: entity.ActionBooked})
	require.NoError(t, err)
	assert.Len(t, booked, 1)

	_, err = uc.ListLogs(ctx, persistence.LockerLogFilter{Action: "opened"})
	assert.True(t, errs.IsValidationError(err))

	removed, err := uc.PurgeLogs(ctx, fixedTime.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	left, err := uc.ListLogs(ctx, persistence.LockerLogFilter{LockerID: "L1"})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, recent.ID, left[0].ID)

	_, err = uc.PurgeLogs(ctx, time.Time{})
	require.Error(t, err)
	assert.Equal(t, "before is required", err.Error())

	require.NoError(t, uc.DeleteLog(ctx, recent.ID))
	_, err = uc.GetLog(ctx, recent.ID)
	assert.ErrorIs(t, err, errs.ErrLockerLogNotFound)
}

func TestActionStats(t *testing.T) {
	ctx := context.Background()
	uc, _, clock := newUseCase(t)

	seed := []struct {
		action entity.LockerAction
		user   string
	}{
		{entity.ActionBooked, "u-1"},
		{entity.ActionBooked, "u-2"},
		{entity.ActionCancelled, "u-2"},
	}
	for _, s := range seed {
		_, err := uc.CreateLog(ctx, &entity.LockerLog{LockerID: "L1", Action: s.action, UserID: s.user})
		require.NoError(t, err)
	}
	clock.Advance(2 * time.Hour)
	_, err := uc.CreateLog(ctx, &entity.LockerLog{LockerID: "L1", Action: entity.ActionRetrieved, UserID: "u-1"})
	require.NoError(t, err)

	t.Run("All entries of a locker", func(t *testing.T) {
		counts, err := uc.ActionStats(ctx, persistence.LockerLogFilter{LockerID: "L1"})
		require.NoError(t, err)
		assert.Equal(t, entity.ActionCounts{entity.ActionBooked: 2, entity.ActionRetrieved: 1, entity.ActionCancelled: 1}, counts)
	})

	t.Run("Time window", func(t *testing.T) {
		until := fixedTime.Add(time.Hour)
		counts, err := uc.ActionStats(ctx, persistence.LockerLogFilter{Until: &until})
		require.NoError(t, err)
		assert.Equal(t, entity.ActionCounts{entity.ActionBooked: 2, entity.ActionRetrieved: 0, entity.ActionCancelled: 1}, counts)
	})

	t.Run("One user", func(t *testing.T) {
		counts, err := uc.ActionStats(ctx, persistence.LockerLogFilter{UserID: "u-1"})
		require.NoError(t, err)
		assert.Equal(t, 1, counts[entity.ActionBooked])
		assert.Equal(t, 1, counts[entity.ActionRetrieved])
		assert.Equal(t, 0, counts[entity.ActionCancelled])

		logs, err := uc.ListLogs(ctx, persistence.LockerLogFilter{UserID: "u-2"})
		require.NoError(t, err)
		assert.Len(t, logs, 2)
	})

	t.Run("Inverted window", func(t *testing.T) {
		since := fixedTime.Add(time.Hour)
		until := fixedTime
		_, err := uc.ActionStats(ctx, persistence.LockerLogFilter{Since: &since, Until: &until})
		require.Error(t, err)
		assert.Equal(t, "until must not be before since", err.Error())
	})
}
