package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
)

// Default lifecycle settings
const (
	DefaultPaymentTimeout = 15 * time.Minute
	DefaultMaxAttempts    = 3
)

// Controller is the Transaction Lifecycle Controller. Each transition reads the transaction,
// calls the AvailabilityManager at most once, and writes the transaction conditionally on the
// version it read, all inside one unit of work.
type Controller struct {
	uow          persistence.UnitOfWork
	manager      usecase.AvailabilityManager
	devices      persistence.DeviceRepository
	validator    *validation.Validator
	ids          coreport.IDGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger

	paymentTimeout time.Duration
	maxAttempts    int
}

var _ usecase.LifecycleController = (*Controller)(nil)

// NewController creates a Controller
func NewController(
	uow persistence.UnitOfWork,
	manager usecase.AvailabilityManager,
	validator *validation.Validator,
	ids coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Controller {
	return &Controller{
		uow:            uow,
		manager:        manager,
		validator:      validator,
		ids:            ids,
		timeProvider:   timeProvider,
		logger:         logger,
		paymentTimeout: DefaultPaymentTimeout,
		maxAttempts:    DefaultMaxAttempts,
	}
}

// WithPaymentTimeout sets how long a booking may stay pending
func (c *Controller) WithPaymentTimeout(timeout time.Duration) *Controller {
	if timeout > 0 {
		c.paymentTimeout = timeout
	}
	return c
}

// WithMaxAttempts bounds re-evaluation after a lost transaction write
func (c *Controller) WithMaxAttempts(attempts int) *Controller {
	if attempts > 0 {
		c.maxAttempts = attempts
	}
	return c
}

// WithDevices lets retrieval by access code update the locker's ESP32 device
func (c *Controller) WithDevices(devices persistence.DeviceRepository) *Controller {
	c.devices = devices
	return c
}

// CreateBooking books a unit and stores the pending transaction in the same unit of work.
// When the locker is full nothing is created.
func (c *Controller) CreateBooking(ctx context.Context, req entity.BookingRequest) (*entity.Transaction, error) {
	if err := c.validator.Struct(&req); err != nil {
		return nil, err
	}

	code, err := c.ids.NewAccessCode()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInternalServer, err.Error())
	}

	now := c.timeProvider.Now()
	tx := &entity.Transaction{
		ID:            c.ids.NewID(),
		LockerID:      req.LockerID,
		UserID:        req.UserID,
		PaymentStatus: entity.PaymentPending,
		PaymentMethod: req.PaymentMethod,
		Duration:      req.Duration,
		AccessCode:    code,
		ExpiresAt:     now.Add(c.paymentTimeout),
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}

	err = c.inUnit(ctx, "create_booking", func(txCtx context.Context) error {
		locker, err := c.uow.GetLockerRepository(txCtx).GetByID(txCtx, req.LockerID)
		if err != nil {
			return err
		}
		tx.TotalPrice = locker.BasePrice * int64(max(req.Duration, 1))

		if _, err := c.manager.BookLocker(txCtx, req.LockerID,
			usecase.WithTransaction(tx.ID), usecase.WithUser(req.UserID)); err != nil {
			return err
		}
		return c.uow.GetTransactionRepository(txCtx).Create(txCtx, tx)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("Booking created", map[string]any{
		"transaction_id": tx.ID,
		"locker_id":      tx.LockerID,
		"user_id":        tx.UserID,
		"expires_at":     tx.ExpiresAt,
	})
	return tx, nil
}

// MarkPaid moves a pending transaction to paid. A transaction that already failed,
// expired or was checked out is rejected, never overwritten.
func (c *Controller) MarkPaid(ctx context.Context, id string) (*entity.Transaction, error) {
	return c.transition(ctx, id, entity.StatePaid, func(tx *entity.Transaction, now time.Time) (entity.LockerAction, error) {
		return "", tx.MarkPaid(now)
	})
}

// MarkFailed records a failed payment and releases the held unit
func (c *Controller) MarkFailed(ctx context.Context, id string) (*entity.Transaction, error) {
	return c.transition(ctx, id, entity.StateFailed, func(tx *entity.Transaction, now time.Time) (entity.LockerAction, error) {
		return entity.ActionCancelled, tx.MarkPaymentEnded(entity.PaymentFailed, now)
	})
}

// MarkExpired records an expired payment and releases the held unit
func (c *Controller) MarkExpired(ctx context.Context, id string) (*entity.Transaction, error) {
	return c.transition(ctx, id, entity.StateExpired, func(tx *entity.Transaction, now time.Time) (entity.LockerAction, error) {
		return entity.ActionCancelled, tx.MarkPaymentEnded(entity.PaymentExpired, now)
	})
}

// Checkout records the retrieval and releases the held unit
func (c *Controller) Checkout(ctx context.Context, id string) (*entity.Transaction, error) {
	return c.transition(ctx, id, entity.StateCheckedOut, func(tx *entity.Transaction, now time.Time) (entity.LockerAction, error) {
		return entity.ActionRetrieved, tx.MarkCheckedOut(now)
	})
}

// CheckoutByAccessCode resolves a retrieval code and checks the transaction out.
// The locker's device is then marked offline; failures there are only logged.
func (c *Controller) CheckoutByAccessCode(ctx context.Context, code string) (*entity.Transaction, error) {
	found, err := c.byAccessCode(ctx, code)
	if err != nil {
		return nil, err
	}

	tx, err := c.Checkout(ctx, found.ID)
	if err != nil {
		return nil, err
	}

	c.markDevice(ctx, tx.LockerID, entity.DeviceOffline)
	return tx, nil
}

// AccessByCode opens the locker for a scanned access code without ending the rental.
// The transaction must be paid and inside its rental window. The locker's device is
// then marked online; failures there are only logged.
func (c *Controller) AccessByCode(ctx context.Context, code string) (*entity.Transaction, error) {
	tx, err := c.byAccessCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := tx.CheckAccess(c.timeProvider.Now()); err != nil {
		c.logger.Info("Locker access refused", map[string]any{
			"transaction_id": tx.ID,
			"locker_id":      tx.LockerID,
			"state":          tx.State(),
		})
		return nil, err
	}

	c.markDevice(ctx, tx.LockerID, entity.DeviceOnline)
	c.logger.Info("Locker access granted", map[string]any{
		"transaction_id": tx.ID,
		"locker_id":      tx.LockerID,
		"user_id":        tx.UserID,
	})
	return tx, nil
}

func (c *Controller) byAccessCode(ctx context.Context, code string) (*entity.Transaction, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errs.NewValidationError("access code", "access code is required")
	}
	return c.uow.GetTransactionRepository(ctx).GetByAccessCode(ctx, code)
}

func (c *Controller) markDevice(ctx context.Context, lockerID string, status entity.DeviceStatus) {
	if c.devices == nil {
		return
	}

	device, err := c.devices.GetByLockerID(ctx, lockerID)
	if err != nil {
		if !errs.IsNotFoundError(err) {
			c.logger.Warn("Failed to look up locker device", map[string]any{"locker_id": lockerID, "error": err.Error()})
		}
		return
	}
	if err := c.devices.SetStatus(ctx, device.ID, status, c.timeProvider.Now()); err != nil {
		c.logger.Warn("Failed to update locker device status", map[string]any{
			"locker_id": lockerID,
			"device_id": device.ID,
			"status":    status,
			"error":     err.Error(),
		})
	}
}

// Delete releases the unit if the transaction still holds one, then removes the record.
// Deleting a checked-out or ended transaction skips the release.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := validation.RequireID("transaction id", id); err != nil {
		return err
	}

	return c.inUnit(ctx, "delete", func(txCtx context.Context) error {
		repo := c.uow.GetTransactionRepository(txCtx)
		current, err := repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		next := current.Clone()
		if next.MarkDeleted(c.timeProvider.Now()) {
			if _, err := c.manager.ReleaseLocker(txCtx, next.LockerID, entity.ActionCancelled,
				usecase.WithTransaction(next.ID), usecase.WithUser(next.UserID)); err != nil {
				return err
			}
		}
		return repo.Delete(txCtx, id, current.Version)
	})
}

// Get returns one transaction
func (c *Controller) Get(ctx context.Context, id string) (*entity.Transaction, error) {
	if err := validation.RequireID("transaction id", id); err != nil {
		return nil, err
	}
	return c.uow.GetTransactionRepository(ctx).GetByID(ctx, id)
}

// List returns transactions newest first
func (c *Controller) List(ctx context.Context, filter persistence.TransactionFilter) ([]*entity.Transaction, error) {
	return c.uow.GetTransactionRepository(ctx).List(ctx, filter)
}

// ExpireOverdue expires pending transactions past their deadline.
// Transactions that moved on concurrently (paid, checked out, deleted) are skipped.
func (c *Controller) ExpireOverdue(ctx context.Context, limit int) (int, error) {
	overdue, err := c.uow.GetTransactionRepository(ctx).ListOverdue(ctx, c.timeProvider.Now(), limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	var failures []error
	for _, tx := range overdue {
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		_, err := c.MarkExpired(ctx, tx.ID)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, errs.ErrInvalidTransition), errors.Is(err, errs.ErrReleaseNoOp), errs.IsNotFoundError(err):
			c.logger.Debug("Overdue transaction moved on before expiry", map[string]any{
				"transaction_id": tx.ID,
				"error":          err.Error(),
			})
		default:
			failures = append(failures, fmt.Errorf("expire %s: %w", tx.ID, err))
		}
	}
	return expired, errors.Join(failures...)
}

// mutation applies a state change to a copy of the transaction and names the locker release it needs, if any
type mutation func(tx *entity.Transaction, now time.Time) (entity.LockerAction, error)

func (c *Controller) transition(ctx context.Context, id, to string, mutate mutation) (*entity.Transaction, error) {
	if err := validation.RequireID("transaction id", id); err != nil {
		return nil, err
	}

	var result *entity.Transaction
	err := c.inUnit(ctx, to, func(txCtx context.Context) error {
		repo := c.uow.GetTransactionRepository(txCtx)
		current, err := repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		next := current.Clone()
		reason, err := mutate(next, c.timeProvider.Now())
		if err != nil {
			return err
		}

		if reason != "" {
			if _, err := c.manager.ReleaseLocker(txCtx, next.LockerID, reason,
				usecase.WithTransaction(next.ID), usecase.WithUser(next.UserID)); err != nil {
				if errs.IsReleaseNoOpError(err) {
					c.logger.Warn("Locker already at capacity while transaction held a unit", map[string]any{
						"transaction_id": next.ID,
						"locker_id":      next.LockerID,
					})
				}
				return err
			}
		}

		if err := repo.ConditionalUpdate(txCtx, next, current.Version); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("Transaction transitioned", map[string]any{
		"transaction_id": result.ID,
		"locker_id":      result.LockerID,
		"state":          result.State(),
	})
	return result, nil
}

// inUnit runs fn in a unit of work. A lost conditional write rolls the unit back, locker change
// included, and fn is evaluated again on fresh state up to maxAttempts times.
func (c *Controller) inUnit(ctx context.Context, operation string, fn func(txCtx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err = c.runUnit(ctx, fn)
		if err == nil || !errs.IsConflictError(err) {
			return err
		}

		c.logger.Debug("Transaction write lost, re-evaluating", map[string]any{
			"operation":    operation,
			"attempt":      attempt,
			"max_attempts": c.maxAttempts,
		})
	}
	return err
}

func (c *Controller) runUnit(ctx context.Context, fn func(txCtx context.Context) error) (err error) {
	txCtx, err := c.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	defer func() {
		if r := recover(); r != nil {
			_ = c.uow.Rollback(txCtx)
			panic(r)
		}
	}()

	if err = fn(txCtx); err != nil {
		if rbErr := c.uow.Rollback(txCtx); rbErr != nil {
			c.logger.Error("Failed to roll back unit of work", map[string]any{
				"error":          rbErr.Error(),
				"original_error": err.Error(),
			})
		}
		return err
	}

	return c.uow.Commit(txCtx)
}
