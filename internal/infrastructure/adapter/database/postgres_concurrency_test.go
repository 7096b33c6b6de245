package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/availability"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/lifecycle"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/idgen"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/logger"
	timeProvider "github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/time"
)

func newPostgresLifecycle(repos persistence.Repositories) (*availability.Manager, *lifecycle.Controller) {
	log := logger.NewNoopLogger()
	tp := timeProvider.NewRealTimeProvider()
	ids := idgen.NewUUIDGenerator()

	manager := availability.NewManager(repos.Lockers, repos.Transactions, repos.LockerLogs, repos.LockerLogs, ids, tp, log)
	controller := lifecycle.NewController(repos.UnitOfWork, manager, validation.New(), ids, tp, log)
	return manager, controller
}

func TestPostgres_ConcurrentBookingsOfLastUnit(t *testing.T) {
	tdb, repos := setupPostgres(t)
	ctx := context.Background()
	tdb.CreateTestLocker(t, "L1", 1, 1)
	manager, controller := newPostgresLifecycle(repos)

	const workers = 8
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		booked      int
		unavailable int
		unexpected  []error
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := controller.CreateBooking(ctx, entity.BookingRequest{LockerID: "L1", UserID: fmt.Sprintf("u-%d", i)})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, errs.ErrLockerUnavailable):
				unavailable++
			default:
				unexpected = append(unexpected, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	require.Empty(t, unexpected)
	assert.Equal(t, 1, booked)
	assert.Equal(t, workers-1, unavailable)

	stored, err := repos.Lockers.GetByID(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Available)
	assert.Equal(t, entity.LockerStatusOccupied, stored.Status)

	report, err := manager.CheckConsistency(ctx, "L1")
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, 1, report.UnreleasedHolds)
}

func TestPostgres_ExpiryRacesCheckout(t *testing.T) {
	tdb, repos := setupPostgres(t)
	ctx := context.Background()
	manager, controller := newPostgresLifecycle(repos)

	for round := 0; round < 5; round++ {
		t.Run(fmt.Sprintf("round %d", round), func(t *testing.T) {
			tdb.TruncateAllTables(t)
			tdb.CreateTestLocker(t, "L1", 1, 1)

			tx, err := controller.CreateBooking(ctx, entity.BookingRequest{LockerID: "L1", UserID: "u-1"})
			require.NoError(t, err)

			var (
				wg      sync.WaitGroup
				results [2]error
			)
			start := make(chan struct{})
			moves := []func(context.Context, string) (*entity.Transaction, error){controller.MarkExpired, controller.Checkout}
			for i, move := range moves {
				wg.Add(1)
				go func(i int, move func(context.Context, string) (*entity.Transaction, error)) {
					defer wg.Done()
					<-start
					_, results[i] = move(ctx, tx.ID)
				}(i, move)
			}
			close(start)
			wg.Wait()

			succeeded := 0
			for _, err := range results {
				if err == nil {
					succeeded++
					continue
				}
				assert.True(t, errors.Is(err, errs.ErrReleaseNoOp) || errors.Is(err, errs.ErrInvalidTransition), err.Error())
			}
			assert.Equal(t, 1, succeeded)

			stored, err := repos.Lockers.GetByID(ctx, "L1")
			require.NoError(t, err)
			assert.Equal(t, 1, stored.Available)

			final, err := repos.Transactions.GetByID(ctx, tx.ID)
			require.NoError(t, err)
			assert.True(t, final.Released)

			report, err := manager.CheckConsistency(ctx, "L1")
			require.NoError(t, err)
			assert.True(t, report.Consistent)
			assert.True(t, report.LogConsistent)
			assert.Equal(t, 0, report.LogDelta)
		})
	}
}

func TestPostgres_DeleteLockerLosesToBooking(t *testing.T) {
	tdb, repos := setupPostgres(t)
	ctx := context.Background()
	tdb.CreateTestLocker(t, "L1", 2, 2)
	_, controller := newPostgresLifecycle(repos)

	read, err := repos.Lockers.GetByID(ctx, "L1")
	require.NoError(t, err)

	_, err = controller.CreateBooking(ctx, entity.BookingRequest{LockerID: "L1", UserID: "u-1"})
	require.NoError(t, err)

	err = repos.Lockers.Delete(ctx, "L1", read.Version)
	assert.ErrorIs(t, err, errs.ErrConflict)

	_, err = repos.Lockers.GetByID(ctx, "L1")
	assert.NoError(t, err)
}
