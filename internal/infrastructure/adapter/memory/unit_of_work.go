package memory

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
)

// UnitOfWork gives a context exclusive use of the store and restores a snapshot on rollback
type UnitOfWork struct {
	store *Store
}

// NewUnitOfWork creates a unit of work over the store
func NewUnitOfWork(store *Store) persistence.UnitOfWork {
	return &UnitOfWork{store: store}
}

// Begin takes the store slot and snapshots the tables
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if u.store.unitFrom(ctx) != nil {
		return ctx, errors.New("nested unit of work is not supported")
	}

	select {
	case u.store.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx, ctx.Err()
	}

	hookCtx, _ := persistence.WithCommitHooks(ctx)
	un := &unit{store: u.store, snapshot: u.store.data.snapshot()}
	return context.WithValue(hookCtx, unitKey{}, un), nil
}

// Commit keeps the writes, releases the slot and runs the commit hooks
func (u *UnitOfWork) Commit(ctx context.Context) error {
	un := u.store.unitFrom(ctx)
	if un == nil {
		return errors.New("no unit of work found in context")
	}
	un.done = true
	un.snapshot = tables{}
	<-u.store.slot

	if hooks := persistence.CommitHooksFrom(ctx); hooks != nil {
		hooks.Run()
	}
	return nil
}

// Rollback restores the snapshot taken at Begin and drops the commit hooks.
// Rolling back a finished unit is a no-op.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	un, ok := ctx.Value(unitKey{}).(*unit)
	if !ok || un.store != u.store {
		return errors.New("no unit of work found in context")
	}
	if un.done {
		return nil
	}
	u.store.data = un.snapshot
	un.done = true
	<-u.store.slot

	if hooks := persistence.CommitHooksFrom(ctx); hooks != nil {
		hooks.Discard()
	}
	return nil
}

// GetLockerRepository returns the locker repository; it joins the unit through ctx
func (u *UnitOfWork) GetLockerRepository(ctx context.Context) persistence.LockerRepository {
	return u.store.Lockers()
}

// GetTransactionRepository returns the transaction repository; it joins the unit through ctx
func (u *UnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return u.store.Transactions()
}
