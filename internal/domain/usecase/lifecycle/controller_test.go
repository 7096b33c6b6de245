package lifecycle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/availability"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/idgen"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/memory"
	timeadapter "github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/time"
)

var testNow = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store      *memory.Store
	clock      *timeadapter.FixedTimeProvider
	controller *Controller
}

// flakyUnitOfWork hands out a transaction repository that loses the first n conditional writes
type flakyUnitOfWork struct {
	persistence.UnitOfWork
	transactions *flakyTransactions
}

func (u *flakyUnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return u.transactions
}

type flakyTransactions struct {
	persistence.TransactionRepository
	failures int32
}

func (f *flakyTransactions) ConditionalUpdate(ctx context.Context, tx *entity.Transaction, v int64) error {
	if atomic.AddInt32(&f.failures, -1) >= 0 {
		return errs.ErrConflict
	}
	return f.TransactionRepository.ConditionalUpdate(ctx, tx, v)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil)
}

func newFixtureWith(t *testing.T, wrap func(persistence.UnitOfWork) persistence.UnitOfWork) *fixture {
	t.Helper()
	clock := timeadapter.NewFixedTimeProvider(testNow)
	store := memory.NewStore(clock, logger.NewNoopLogger())
	ids := idgen.NewUUIDGenerator()

	manager := availability.NewManager(
		store.Lockers(),
		store.Transactions(),
		store.LockerLogs(),
		store.LockerLogs(),
		ids,
		clock,
		logger.NewNoopLogger(),
	)

	var uow persistence.UnitOfWork = memory.NewUnitOfWork(store)
	if wrap != nil {
		uow = wrap(uow)
	}

	c := NewController(uow, manager, validation.New(), ids, clock, logger.NewNoopLogger()).
		WithPaymentTimeout(15 * time.Minute).
		WithDevices(store.Devices())

	return &fixture{store: store, clock: clock, controller: c}
}

func (f *fixture) seedLocker(t *testing.T, id string, capacity int) {
	t.Helper()
	l, err := entity.NewLocker(id, id, "Locker "+id, capacity, f.clock)
	require.NoError(t, err)
	l.BasePrice = 500
	require.NoError(t, f.store.Lockers().Create(context.Background(), l))
}

func (f *fixture) locker(t *testing.T, id string) *entity.Locker {
	t.Helper()
	l, err := f.store.Lockers().GetByID(context.Background(), id)
	require.NoError(t, err)
	return l
}

func (f *fixture) actions(t *testing.T, lockerID string) []entity.LockerAction {
	t.Helper()
	logs, err := f.store.LockerLogs().List(context.Background(), persistence.LockerLogFilter{LockerID: lockerID})
	require.NoError(t, err)
	out := make([]entity.LockerAction, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}

func (f *fixture) book(t *testing.T, lockerID string) *entity.Transaction {
	t.Helper()
	tx, err := f.controller.CreateBooking(context.Background(), entity.BookingRequest{
		LockerID: lockerID,
		UserID:   "u-1",
		Duration: 2,
	})
	require.NoError(t, err)
	return tx
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("books a unit and stores a pending transaction", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 2)

		tx := f.book(t, "L1")

		assert.Equal(t, entity.PaymentPending, tx.PaymentStatus)
		assert.False(t, tx.Released)
		assert.Len(t, tx.AccessCode, 6)
		assert.Equal(t, int64(1000), tx.TotalPrice)
		assert.Equal(t, testNow.Add(15*time.Minute), tx.ExpiresAt)

		stored, err := f.controller.Get(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, tx.AccessCode, stored.AccessCode)
		assert.Equal(t, 1, f.locker(t, "L1").Available)
		assert.ElementsMatch(t, []entity.LockerAction{entity.ActionBooked}, f.actions(t, "L1"))
	})

	t.Run("full locker creates nothing", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 1)
		f.book(t, "L1")

		_, err := f.controller.CreateBooking(ctx, entity.BookingRequest{LockerID: "L1", UserID: "u-2"})
		assert.True(t, errs.IsLockerUnavailableError(err))

		all, err := f.controller.List(ctx, persistence.TransactionFilter{LockerID: "L1"})
		require.NoError(t, err)
		assert.Len(t, all, 1)
		assert.Equal(t, entity.LockerStatusOccupied, f.locker(t, "L1").Status)
	})

	t.Run("missing locker id", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.controller.CreateBooking(ctx, entity.BookingRequest{UserID: "u-1"})
		require.Error(t, err)
		assert.True(t, errs.IsValidationError(err))
		assert.Equal(t, "locker id is required", err.Error())
	})

	t.Run("unknown locker", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.controller.CreateBooking(ctx, entity.BookingRequest{LockerID: "nope", UserID: "u-1"})
		assert.ErrorIs(t, err, errs.ErrLockerNotFound)
	})

	t.Run("concurrent bookings never oversell", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 3)

		var wg sync.WaitGroup
		var booked, unavailable int32
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.controller.CreateBooking(ctx, entity.BookingRequest{LockerID: "L1", UserID: "u-1"})
				switch {
				case err == nil:
					atomic.AddInt32(&booked, 1)
				case errs.IsLockerUnavailableError(err):
					atomic.AddInt32(&unavailable, 1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(3), booked)
		assert.Equal(t, int32(7), unavailable)
		assert.Equal(t, 0, f.locker(t, "L1").Available)

		all, err := f.controller.List(ctx, persistence.TransactionFilter{LockerID: "L1"})
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("retrieval releases the unit once", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 1)
		tx := f.book(t, "L1")

		_, err := f.controller.MarkPaid(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, f.locker(t, "L1").Available)

		out, err := f.controller.Checkout(ctx, tx.ID)
		require.NoError(t, err)
		assert.True(t, out.CheckedOut)
		assert.True(t, out.Released)
		assert.Equal(t, entity.StateCheckedOut, out.State())

		l := f.locker(t, "L1")
		assert.Equal(t, 1, l.Available)
		assert.Equal(t, entity.LockerStatusAvailable, l.Status)
		assert.ElementsMatch(t, []entity.LockerAction{entity.ActionBooked, entity.ActionRetrieved}, f.actions(t, "L1"))

		_, err = f.controller.Checkout(ctx, tx.ID)
		assert.True(t, errs.IsReleaseNoOpError(err))
		assert.Equal(t, 1, f.locker(t, "L1").Available)
		assert.Len(t, f.actions(t, "L1"), 2)
	})

	t.Run("by access code marks the device offline", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 2)
		require.NoError(t, f.store.Devices().Create(ctx, &entity.Device{
			ID:               "d-1",
			Name:             "esp32",
			DeviceIdentifier: "esp-001",
			LockerID:         "L1",
			Status:           entity.DeviceOnline,
		}))
		tx := f.book(t, "L1")

		out, err := f.controller.CheckoutByAccessCode(ctx, "  "+strings.ToLower(tx.AccessCode)+" ")
		require.NoError(t, err)
		assert.Equal(t, tx.ID, out.ID)

		device, err := f.store.Devices().GetByID(ctx, "d-1")
		require.NoError(t, err)
		assert.Equal(t, entity.DeviceOffline, device.Status)
	})

	t.Run("empty access code", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.controller.CheckoutByAccessCode(ctx, "   ")
		require.Error(t, err)
		assert.Equal(t, "access code is required", err.Error())
	})

	t.Run("unknown access code", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.controller.CheckoutByAccessCode(ctx, "ZZZZZZ")
		assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
	})
}

func TestAccessByCode(t *testing.T) {
	ctx := context.Background()

	withDevice := func(t *testing.T) *fixture {
		f := newFixture(t)
		f.seedLocker(t, "L1", 2)
		require.NoError(t, f.store.Devices().Create(ctx, &entity.Device{
			ID:               "d-1",
			Name:             "esp32",
			DeviceIdentifier: "esp-001",
			LockerID:         "L1",
			Status:           entity.DeviceOffline,
		}))
		return f
	}
	deviceStatus := func(t *testing.T, f *fixture) entity.DeviceStatus {
		device, err := f.store.Devices().GetByID(ctx, "d-1")
		require.NoError(t, err)
		return device.Status
	}

	t.Run("paid booking opens and marks the device online", func(t *testing.T) {
		f := withDevice(t)
		tx := f.book(t, "L1")
		_, err := f.controller.MarkPaid(ctx, tx.ID)
		require.NoError(t, err)

		out, err := f.controller.AccessByCode(ctx, strings.ToLower(tx.AccessCode))
		require.NoError(t, err)
		assert.Equal(t, tx.ID, out.ID)
		assert.False(t, out.Released)
		assert.Equal(t, entity.DeviceOnline, deviceStatus(t, f))
		assert.Equal(t, 1, f.locker(t, "L1").Available)
	})

	t.Run("pending booking is refused", func(t *testing.T) {
		f := withDevice(t)
		tx := f.book(t, "L1")

		_, err := f.controller.AccessByCode(ctx, tx.AccessCode)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, entity.DeviceOffline, deviceStatus(t, f))
	})

	t.Run("ended rental is refused", func(t *testing.T) {
		f := withDevice(t)
		tx := f.book(t, "L1")
		_, err := f.controller.MarkPaid(ctx, tx.ID)
		require.NoError(t, err)
		f.clock.Advance(3 * time.Hour)

		_, err = f.controller.AccessByCode(ctx, tx.AccessCode)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, entity.DeviceOffline, deviceStatus(t, f))
	})

	t.Run("checked out booking is refused", func(t *testing.T) {
		f := withDevice(t)
		tx := f.book(t, "L1")
		_, err := f.controller.MarkPaid(ctx, tx.ID)
		require.NoError(t, err)
		_, err = f.controller.Checkout(ctx, tx.ID)
		require.NoError(t, err)

		_, err = f.controller.AccessByCode(ctx, tx.AccessCode)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("unknown and empty codes", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.controller.AccessByCode(ctx, "ZZZZZZ")
		assert.ErrorIs(t, err, errs.ErrTransactionNotFound)

		_, err = f.controller.AccessByCode(ctx, " ")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestPaymentOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("failed payment releases as cancelled", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 1)
		tx := f.book(t, "L1")

		out, err := f.controller.MarkFailed(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentFailed, out.PaymentStatus)
		assert.True(t, out.Released)
		assert.Equal(t, 1, f.locker(t, "L1").Available)
		assert.ElementsMatch(t, []entity.LockerAction{entity.ActionBooked, entity.ActionCancelled}, f.actions(t, "L1"))
	})

	t.Run("second failure does not release again", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 2)
		tx := f.book(t, "L1")
		f.book(t, "L1")

		_, err := f.controller.MarkFailed(ctx, tx.ID)
		require.NoError(t, err)

		_, err = f.controller.MarkFailed(ctx, tx.ID)
		assert.True(t, errs.IsReleaseNoOpError(err))
		assert.Equal(t, 1, f.locker(t, "L1").Available)
	})

	t.Run("late paid after expiry is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 1)
		tx := f.book(t, "L1")

		f.clock.Advance(16 * time.Minute)
		expired, err := f.controller.ExpireOverdue(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)

		_, err = f.controller.MarkPaid(ctx, tx.ID)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)

		stored, err := f.controller.Get(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentExpired, stored.PaymentStatus)
		assert.Equal(t, 1, f.locker(t, "L1").Available)
	})

	t.Run("paid transactions are not swept", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 2)
		paid := f.book(t, "L1")
		f.book(t, "L1")
		_, err := f.controller.MarkPaid(ctx, paid.ID)
		require.NoError(t, err)

		f.clock.Advance(time.Hour)
		expired, err := f.controller.ExpireOverdue(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)
		assert.Equal(t, 1, f.locker(t, "L1").Available)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("pending delete releases the unit", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 1)
		tx := f.book(t, "L1")

		require.NoError(t, f.controller.Delete(ctx, tx.ID))

		_, err := f.controller.Get(ctx, tx.ID)
		assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
		assert.Equal(t, 1, f.locker(t, "L1").Available)
		assert.ElementsMatch(t, []entity.LockerAction{entity.ActionBooked, entity.ActionCancelled}, f.actions(t, "L1"))
	})

	t.Run("delete after checkout skips the release", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 2)
		tx := f.book(t, "L1")
		f.book(t, "L1")
		_, err := f.controller.Checkout(ctx, tx.ID)
		require.NoError(t, err)

		require.NoError(t, f.controller.Delete(ctx, tx.ID))
		assert.Equal(t, 1, f.locker(t, "L1").Available)
		assert.Len(t, f.actions(t, "L1"), 3)
	})

	t.Run("missing id", func(t *testing.T) {
		f := newFixture(t)
		assert.True(t, errs.IsValidationError(f.controller.Delete(ctx, "")))
	})
}

func TestTransitionRetriesLostWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("rolled back release is not applied twice", func(t *testing.T) {
		var flaky *flakyTransactions
		f := newFixtureWith(t, func(u persistence.UnitOfWork) persistence.UnitOfWork {
			flaky = &flakyTransactions{TransactionRepository: u.GetTransactionRepository(ctx)}
			return &flakyUnitOfWork{UnitOfWork: u, transactions: flaky}
		})
		f.seedLocker(t, "L1", 2)
		tx := f.book(t, "L1")
		atomic.StoreInt32(&flaky.failures, 1)

		_, err := f.controller.MarkFailed(ctx, tx.ID)
		require.NoError(t, err)

		assert.Equal(t, 2, f.locker(t, "L1").Available)
		assert.ElementsMatch(t, []entity.LockerAction{entity.ActionBooked, entity.ActionCancelled}, f.actions(t, "L1"))
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		var flaky *flakyTransactions
		f := newFixtureWith(t, func(u persistence.UnitOfWork) persistence.UnitOfWork {
			flaky = &flakyTransactions{TransactionRepository: u.GetTransactionRepository(ctx)}
			return &flakyUnitOfWork{UnitOfWork: u, transactions: flaky}
		})
		f.seedLocker(t, "L1", 2)
		tx := f.book(t, "L1")
		atomic.StoreInt32(&flaky.failures, 10)

		_, err := f.controller.Checkout(ctx, tx.ID)
		assert.True(t, errors.Is(err, errs.ErrConflict))
		assert.Equal(t, 1, f.locker(t, "L1").Available)

		stored, err := f.controller.Get(ctx, tx.ID)
		require.NoError(t, err)
		assert.False(t, stored.Released)
	})
}
