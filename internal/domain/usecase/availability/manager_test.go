package availability

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/event"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/idgen"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/memory"
	timeadapter "github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/time"
)

var testNow = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	uow     persistence.UnitOfWork
	clock   *timeadapter.FixedTimeProvider
	manager *Manager
	notify  *recordingNotifier
}

type recordingNotifier struct {
	mu        sync.Mutex
	snapshots []entity.LockerSnapshot
}

func (n *recordingNotifier) LockerChanged(_ context.Context, s entity.LockerSnapshot) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshots = append(n.snapshots, s)
	return nil
}

func (n *recordingNotifier) all() []entity.LockerSnapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]entity.LockerSnapshot(nil), n.snapshots...)
}

// flakyLockers loses the first n conditional writes
type flakyLockers struct {
	persistence.LockerRepository
	failures int32
	calls    int32
}

func (f *flakyLockers) ConditionalUpdate(ctx context.Context, id string, v int64, s entity.LockerState) (*entity.Locker, error) {
	atomic.AddInt32(&f.calls, 1)
	if atomic.AddInt32(&f.failures, -1) >= 0 {
		return nil, errs.ErrConflict
	}
	return f.LockerRepository.ConditionalUpdate(ctx, id, v, s)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := timeadapter.NewFixedTimeProvider(testNow)
	store := memory.NewStore(clock, logger.NewNoopLogger())
	notifier := &recordingNotifier{}

	m := NewManager(
		store.Lockers(),
		store.Transactions(),
		store.LockerLogs(),
		store.LockerLogs(),
		idgen.NewUUIDGenerator(),
		clock,
		logger.NewNoopLogger(),
	).WithNotifier(notifier)

	return &fixture{store: store, uow: memory.NewUnitOfWork(store), clock: clock, manager: m, notify: notifier}
}

func (f *fixture) seedLocker(t *testing.T, id string, capacity, available int) *entity.Locker {
	t.Helper()
	l, err := entity.NewLocker(id, id, "Locker "+id, capacity, f.clock)
	require.NoError(t, err)
	l.Available = available
	l.Status = entity.StatusFor(available)
	require.NoError(t, f.store.Lockers().Create(context.Background(), l))
	return l
}

func (f *fixture) logs(t *testing.T, lockerID string) []*entity.LockerLog {
	t.Helper()
	logs, err := f.store.LockerLogs().List(context.Background(), persistence.LockerLogFilter{LockerID: lockerID})
	require.NoError(t, err)
	return logs
}

func (f *fixture) locker(t *testing.T, id string) *entity.Locker {
	t.Helper()
	l, err := f.store.Lockers().GetByID(context.Background(), id)
	require.NoError(t, err)
	return l
}

func TestBookLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("last slot becomes occupied and is logged", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 3, 1)

		res, err := f.manager.BookLocker(ctx, "L1", usecase.WithTransaction("tx-1"), usecase.WithUser("u-1"))
		require.NoError(t, err)
		assert.Equal(t, 0, res.Available)
		assert.Equal(t, entity.LockerStatusOccupied, res.Status)
		assert.Equal(t, int64(2), res.Version)

		stored := f.locker(t, "L1")
		assert.Equal(t, 0, stored.Available)
		assert.Equal(t, entity.LockerStatusOccupied, stored.Status)

		logs := f.logs(t, "L1")
		require.Len(t, logs, 1)
		assert.Equal(t, entity.ActionBooked, logs[0].Action)
		assert.Equal(t, "tx-1", logs[0].TransactionID)
		assert.Equal(t, "u-1", logs[0].UserID)
		assert.Equal(t, 0, logs[0].ResultingAvailable)
		assert.Equal(t, entity.LockerStatusOccupied, logs[0].ResultingStatus)

		snaps := f.notify.all()
		require.Len(t, snaps, 1)
		assert.Equal(t, entity.ActionBooked, snaps[0].Action)
	})

	t.Run("non-last slot keeps available status", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 3, 3)

		res, err := f.manager.BookLocker(ctx, "L1")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Available)
		assert.Equal(t, entity.LockerStatusAvailable, res.Status)
	})

	t.Run("occupied locker is rejected without mutation or log", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 2, 0)

		res, err := f.manager.BookLocker(ctx, "L1")
		assert.Nil(t, res)
		assert.ErrorIs(t, err, errs.ErrLockerUnavailable)

		stored := f.locker(t, "L1")
		assert.Equal(t, 0, stored.Available)
		assert.Equal(t, int64(1), stored.Version)
		assert.Empty(t, f.logs(t, "L1"))
		assert.Empty(t, f.notify.all())
	})

	t.Run("unknown locker", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.manager.BookLocker(ctx, "missing")
		assert.ErrorIs(t, err, errs.ErrLockerNotFound)
	})

	t.Run("empty id is a validation error", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.manager.BookLocker(ctx, "")
		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.EqualError(t, err, "locker id is required")
	})
}

func TestReleaseLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("retrieval frees an occupied locker", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 1, 0)

		res, err := f.manager.ReleaseLocker(ctx, "L1", entity.ActionRetrieved, usecase.WithTransaction("tx-1"))
		require.NoError(t, err)
		assert.Equal(t, 1, res.Available)
		assert.Equal(t, entity.LockerStatusAvailable, res.Status)

		logs := f.logs(t, "L1")
		require.Len(t, logs, 1)
		assert.Equal(t, entity.ActionRetrieved, logs[0].Action)
	})

	t.Run("full capacity is a no-op error", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 2, 1)

		_, err := f.manager.ReleaseLocker(ctx, "L1", entity.ActionCancelled)
		require.NoError(t, err)

		_, err = f.manager.ReleaseLocker(ctx, "L1", entity.ActionCancelled)
		assert.ErrorIs(t, err, errs.ErrReleaseNoOp)
		assert.Equal(t, 2, f.locker(t, "L1").Available)
		assert.Len(t, f.logs(t, "L1"), 1)
	})

	t.Run("booked is not a release reason", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 2, 1)

		_, err := f.manager.ReleaseLocker(ctx, "L1", entity.ActionBooked)
		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.Equal(t, 1, f.locker(t, "L1").Available)
	})
}

func TestBookLocker_ConcurrentLastSlot(t *testing.T) {
	f := newFixture(t)
	f.seedLocker(t, "L1", 4, 1)

	const callers = 32
	var (
		wg          sync.WaitGroup
		successes   int32
		unavailable int32
		other       int32
	)
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.manager.BookLocker(context.Background(), "L1")
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case errors.Is(err, errs.ErrLockerUnavailable):
				atomic.AddInt32(&unavailable, 1)
			default:
				atomic.AddInt32(&other, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes)
	assert.Equal(t, int32(callers-1), unavailable)
	assert.Zero(t, other)

	stored := f.locker(t, "L1")
	assert.Equal(t, 0, stored.Available)
	assert.Equal(t, entity.LockerStatusOccupied, stored.Status)
	assert.Len(t, f.logs(t, "L1"), 1)
}

func TestBookLocker_ConcurrentCapacity(t *testing.T) {
	f := newFixture(t)
	f.manager.WithRetryConfig(RetryConfig{MaxAttempts: 100})
	f.seedLocker(t, "L1", 5, 5)

	var wg sync.WaitGroup
	var successes int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.manager.BookLocker(context.Background(), "L1"); err == nil {
				atomic.AddInt32(&successes, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), successes)
	stored := f.locker(t, "L1")
	assert.Equal(t, 0, stored.Available)
	assert.True(t, stored.State().Valid(stored.Capacity))
}

func TestBookLocker_ConflictRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("recovers after lost writes with growing backoff", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 2, 2)
		flaky := &flakyLockers{LockerRepository: f.store.Lockers(), failures: 2}
		f.manager.lockers = flaky

		res, err := f.manager.BookLocker(ctx, "L1")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Available)
		assert.Equal(t, int32(3), atomic.LoadInt32(&flaky.calls))

		slept := f.clock.Slept()
		require.Len(t, slept, 2)
		assert.GreaterOrEqual(t, slept[0].Std(), 10*time.Millisecond)
		assert.GreaterOrEqual(t, slept[1].Std(), 20*time.Millisecond)
	})

	t.Run("surfaces conflict once the budget is spent", func(t *testing.T) {
		f := newFixture(t)
		f.seedLocker(t, "L1", 2, 2)
		flaky := &flakyLockers{LockerRepository: f.store.Lockers(), failures: 100}
		f.manager.lockers = flaky
		f.manager.WithRetryConfig(RetryConfig{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond})

		_, err := f.manager.BookLocker(ctx, "L1")
		assert.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, int32(3), atomic.LoadInt32(&flaky.calls))
		assert.Len(t, f.clock.Slept(), 2)
		assert.Equal(t, 2, f.locker(t, "L1").Available)
		assert.Empty(t, f.logs(t, "L1"))
	})
}

func TestManager_UnitOfWorkDefersAudit(t *testing.T) {
	f := newFixture(t)
	f.seedLocker(t, "L1", 1, 1)

	t.Run("rollback leaves no log and restores the counter", func(t *testing.T) {
		txCtx, err := f.uow.Begin(context.Background())
		require.NoError(t, err)

		_, err = f.manager.BookLocker(txCtx, "L1")
		require.NoError(t, err)
		require.NoError(t, f.uow.Rollback(txCtx))

		assert.Equal(t, 1, f.locker(t, "L1").Available)
		assert.Empty(t, f.logs(t, "L1"))
		assert.Empty(t, f.notify.all())
	})

	t.Run("commit emits the log", func(t *testing.T) {
		txCtx, err := f.uow.Begin(context.Background())
		require.NoError(t, err)

		_, err = f.manager.BookLocker(txCtx, "L1")
		require.NoError(t, err)
		assert.Empty(t, f.notify.all(), "nothing is published before commit")

		require.NoError(t, f.uow.Commit(txCtx))
		assert.Len(t, f.logs(t, "L1"), 1)
		assert.Len(t, f.notify.all(), 1)
	})
}

func TestManager_AuditFailureKeepsLockerChange(t *testing.T) {
	f := newFixture(t)
	f.seedLocker(t, "L1", 2, 2)
	f.manager.audit = event.AuditWriterFunc(func(context.Context, *entity.LockerLog) error {
		return errors.New("broker down")
	})

	res, err := f.manager.BookLocker(context.Background(), "L1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Available)
	assert.Equal(t, 1, f.locker(t, "L1").Available)
}

func TestCalculateBackoffWithJitter(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 5, BaseBackoff: 10 * time.Millisecond, MaxBackoff: 200 * time.Millisecond}

	assert.Equal(t, 10*time.Millisecond, calculateBackoffWithJitter(0, cfg))
	assert.Equal(t, 40*time.Millisecond, calculateBackoffWithJitter(2, cfg))
	assert.Equal(t, 200*time.Millisecond, calculateBackoffWithJitter(10, cfg))

	cfg.JitterFactor = 0.5
	for i := 0; i < 20; i++ {
		b := calculateBackoffWithJitter(1, cfg)
		assert.GreaterOrEqual(t, b, 20*time.Millisecond)
		assert.LessOrEqual(t, b, 30*time.Millisecond)
	}
}
