package persistence

import (
	"context"
)

// UnitOfWork coordinates writes across repositories so they commit or roll back together.
// Repositories returned for a transactional context join the unit.
type UnitOfWork interface {
	// Begin starts a new unit and returns a transactional context.
	// Hooks registered with AfterCommit on that context run only after Commit succeeds.
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the unit in the given context and then runs its commit hooks
	Commit(ctx context.Context) error

	// Rollback rolls back the unit and discards its commit hooks
	Rollback(ctx context.Context) error

	// GetLockerRepository returns a locker repository bound to the current unit
	GetLockerRepository(ctx context.Context) LockerRepository

	// GetTransactionRepository returns a transaction repository bound to the current unit
	GetTransactionRepository(ctx context.Context) TransactionRepository
}
