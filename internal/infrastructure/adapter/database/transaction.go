package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/repository"
	"gorm.io/gorm"
)

// ErrNoTransaction is returned when Commit or Rollback get a context without an open unit
var ErrNoTransaction = errors.New("no transaction found in context")

// UnitOfWork implements the unit of work pattern for database transactions.
// READ COMMITTED is enough: every counter write is conditional on the version read.
type UnitOfWork struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewUnitOfWork creates a new UnitOfWork instance
func NewUnitOfWork(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) persistence.UnitOfWork {
	return &UnitOfWork{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// Begin starts a new database transaction and binds it to the returned context
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if repository.TxFrom(ctx) != nil {
		return ctx, errors.New("nested unit of work is not supported")
	}

	u.logger.Debug("Beginning database transaction with READ COMMITTED isolation", nil)

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.logger.Error("Failed to begin transaction", map[string]any{"error": tx.Error.Error()})
		return ctx, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := tx.Exec("SET TRANSACTION ISOLATION LEVEL READ COMMITTED").Error; err != nil {
		tx.Rollback()
		u.logger.Error("Failed to set transaction isolation level", map[string]any{"error": err.Error()})
		return ctx, fmt.Errorf("failed to set transaction isolation level: %w", err)
	}

	hookCtx, _ := persistence.WithCommitHooks(ctx)
	return repository.WithTx(hookCtx, tx), nil
}

// Commit commits the current transaction, then runs the hooks registered against it
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx := repository.TxFrom(ctx)
	if tx == nil {
		return ErrNoTransaction
	}

	u.logger.Debug("Committing database transaction", nil)
	if err := tx.Commit().Error; err != nil {
		u.logger.Error("Failed to commit transaction", map[string]any{"error": err.Error()})
		if hooks := persistence.CommitHooksFrom(ctx); hooks != nil {
			hooks.Discard()
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if hooks := persistence.CommitHooksFrom(ctx); hooks != nil {
		hooks.Run()
	}
	return nil
}

// Rollback rolls back the current transaction and drops its commit hooks
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx := repository.TxFrom(ctx)
	if tx == nil {
		return ErrNoTransaction
	}

	if hooks := persistence.CommitHooksFrom(ctx); hooks != nil {
		hooks.Discard()
	}

	u.logger.Debug("Rolling back database transaction", nil)
	err := tx.Rollback().Error

	// Rolling back a finished transaction is not an error for callers that roll back defensively
	if err != nil && (errors.Is(err, gorm.ErrInvalidTransaction) ||
		strings.Contains(err.Error(), "already been committed or rolled back")) {
		u.logger.Warn("Transaction has already been committed or rolled back", map[string]any{
			"error": err.Error(),
		})
		return nil
	}
	if err != nil {
		u.logger.Error("Failed to rollback transaction", map[string]any{
			"error": err.Error(),
		})
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// GetLockerRepository returns a locker repository; it joins the unit through ctx
func (u *UnitOfWork) GetLockerRepository(ctx context.Context) persistence.LockerRepository {
	return repository.NewLockerRepository(u.getDbFromContext(ctx), u.timeProvider, u.logger)
}

// GetTransactionRepository returns a transaction repository; it joins the unit through ctx
func (u *UnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return repository.NewTransactionRepository(u.getDbFromContext(ctx), u.logger)
}

// getDbFromContext retrieves the database instance from context
func (u *UnitOfWork) getDbFromContext(ctx context.Context) *gorm.DB {
	if tx := repository.TxFrom(ctx); tx != nil {
		return tx
	}
	return u.db
}
