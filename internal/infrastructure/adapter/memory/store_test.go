package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/logger"
	timeProvider "github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/time"
)

var storeNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestStore(t *testing.T, capacity int) *Store {
	t.Helper()
	s := NewStore(timeProvider.NewFixedTimeProvider(storeNow), logger.NewNoopLogger())
	require.NoError(t, s.Lockers().Create(context.Background(), &entity.Locker{
		ID:        "L1",
		Name:      "front desk",
		Size:      entity.LockerSizeMedium,
		Capacity:  capacity,
		Available: capacity,
		Status:    entity.LockerStatusAvailable,
		Version:   1,
		CreatedAt: storeNow,
		UpdatedAt: storeNow,
	}))
	return s
}

func TestLockerRepository_ConditionalUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("bumps the version", func(t *testing.T) {
		s := newTestStore(t, 2)
		updated, err := s.Lockers().ConditionalUpdate(ctx, "L1", 1, entity.LockerState{Available: 1, Status: entity.LockerStatusAvailable})
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated.Version)
		assert.Equal(t, 1, updated.Available)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		s := newTestStore(t, 2)
		_, err := s.Lockers().ConditionalUpdate(ctx, "L1", 7, entity.LockerState{Available: 1, Status: entity.LockerStatusAvailable})
		assert.ErrorIs(t, err, errs.ErrConflict)

		stored, err := s.Lockers().GetByID(ctx, "L1")
		require.NoError(t, err)
		assert.Equal(t, 2, stored.Available)
	})

	t.Run("out of bounds is refused", func(t *testing.T) {
		s := newTestStore(t, 2)
		_, err := s.Lockers().ConditionalUpdate(ctx, "L1", 1, entity.LockerState{Available: 3, Status: entity.LockerStatusAvailable})
		assert.ErrorIs(t, err, errs.ErrInternalServer)
	})

	t.Run("unknown locker", func(t *testing.T) {
		s := newTestStore(t, 2)
		_, err := s.Lockers().ConditionalUpdate(ctx, "nope", 1, entity.LockerState{Available: 1, Status: entity.LockerStatusAvailable})
		assert.ErrorIs(t, err, errs.ErrLockerNotFound)
	})

	t.Run("concurrent decrements never overbook", func(t *testing.T) {
		const capacity = 5
		s := newTestStore(t, capacity)
		repo := s.Lockers()

		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			booked int
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					l, err := repo.GetByID(ctx, "L1")
					if err != nil || l.Available == 0 {
						return
					}
					next := l.Available - 1
					_, err = repo.ConditionalUpdate(ctx, "L1", l.Version, entity.LockerState{Available: next, Status: entity.StatusFor(next)})
					if errors.Is(err, errs.ErrConflict) {
						continue
					}
					if err == nil {
						mu.Lock()
						booked++
						mu.Unlock()
					}
					return
				}
			}()
		}
		wg.Wait()

		stored, err := repo.GetByID(ctx, "L1")
		require.NoError(t, err)
		assert.Equal(t, capacity, booked)
		assert.Equal(t, 0, stored.Available)
		assert.Equal(t, entity.LockerStatusOccupied, stored.Status)
	})
}

func TestLockerRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("stale version keeps the locker", func(t *testing.T) {
		s := newTestStore(t, 2)
		repo := s.Lockers()

		read, err := repo.GetByID(ctx, "L1")
		require.NoError(t, err)
		// a booking lands between the caller's checks and the delete
		_, err = repo.ConditionalUpdate(ctx, "L1", read.Version, entity.LockerState{Available: 1, Status: entity.LockerStatusAvailable})
		require.NoError(t, err)

		err = repo.Delete(ctx, "L1", read.Version)
		assert.ErrorIs(t, err, errs.ErrConflict)

		_, err = repo.GetByID(ctx, "L1")
		assert.NoError(t, err)
	})

	t.Run("current version deletes", func(t *testing.T) {
		s := newTestStore(t, 2)
		require.NoError(t, s.Lockers().Delete(ctx, "L1", 1))
		_, err := s.Lockers().GetByID(ctx, "L1")
		assert.ErrorIs(t, err, errs.ErrLockerNotFound)
	})

	t.Run("unknown locker", func(t *testing.T) {
		s := newTestStore(t, 2)
		assert.ErrorIs(t, s.Lockers().Delete(ctx, "nope", 1), errs.ErrLockerNotFound)
	})
}

func TestUnitOfWork(t *testing.T) {
	ctx := context.Background()

	t.Run("rollback restores the snapshot and drops hooks", func(t *testing.T) {
		s := newTestStore(t, 2)
		uow := NewUnitOfWork(s)

		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)

		_, err = uow.GetLockerRepository(txCtx).ConditionalUpdate(txCtx, "L1", 1, entity.LockerState{Available: 1, Status: entity.LockerStatusAvailable})
		require.NoError(t, err)
		ran := false
		persistence.AfterCommit(txCtx, func(context.Context) { ran = true })

		require.NoError(t, uow.Rollback(txCtx))
		assert.False(t, ran)

		stored, err := s.Lockers().GetByID(ctx, "L1")
		require.NoError(t, err)
		assert.Equal(t, 2, stored.Available)
		assert.Equal(t, int64(1), stored.Version)

		// a finished unit rolls back as a no-op
		assert.NoError(t, uow.Rollback(txCtx))
	})

	t.Run("commit keeps writes then runs hooks", func(t *testing.T) {
		s := newTestStore(t, 2)
		uow := NewUnitOfWork(s)

		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)
		_, err = uow.GetLockerRepository(txCtx).ConditionalUpdate(txCtx, "L1", 1, entity.LockerState{Available: 1, Status: entity.LockerStatusAvailable})
		require.NoError(t, err)

		var seen int
		persistence.AfterCommit(txCtx, func(hookCtx context.Context) {
			// the slot is free again, so a plain read must not block
			l, err := s.Lockers().GetByID(hookCtx, "L1")
			if err == nil {
				seen = l.Available
			}
		})

		require.NoError(t, uow.Commit(txCtx))
		assert.Equal(t, 1, seen)
	})

	t.Run("nested begin is rejected", func(t *testing.T) {
		s := newTestStore(t, 2)
		uow := NewUnitOfWork(s)

		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)
		_, err = uow.Begin(txCtx)
		assert.Error(t, err)
		require.NoError(t, uow.Rollback(txCtx))
	})

	t.Run("commit without a unit fails", func(t *testing.T) {
		uow := NewUnitOfWork(newTestStore(t, 1))
		assert.Error(t, uow.Commit(ctx))
		assert.Error(t, uow.Rollback(ctx))
	})

	t.Run("waiting for the slot honours cancellation", func(t *testing.T) {
		s := newTestStore(t, 2)
		uow := NewUnitOfWork(s)

		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)
		defer func() { _ = uow.Rollback(txCtx) }()

		waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err = s.Lockers().GetByID(waitCtx, "L1")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, page(items, 0, 0))
	assert.Equal(t, []int{2, 3}, page(items, 2, 1))
	assert.Equal(t, []int{5}, page(items, 10, 4))
	assert.Equal(t, []int{}, page(items, 2, 9))
	assert.Equal(t, []int{1}, page(items, 1, -3))
}
