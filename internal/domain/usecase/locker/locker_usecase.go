// Package locker provisions lockers. Counter fields are owned by the availability manager and never written here.
package locker

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
)

// LockerUseCase handles locker provisioning
type LockerUseCase struct {
	uow          persistence.UnitOfWork
	validator    *validation.Validator
	ids          coreport.IDGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.LockerUseCase = (*LockerUseCase)(nil)

// NewLockerUseCase creates a new LockerUseCase
func NewLockerUseCase(
	uow persistence.UnitOfWork,
	validator *validation.Validator,
	ids coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *LockerUseCase {
	return &LockerUseCase{
		uow:          uow,
		validator:    validator,
		ids:          ids,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// CreateLocker stores a new locker with every unit free
func (u *LockerUseCase) CreateLocker(ctx context.Context, locker *entity.Locker) (*entity.Locker, error) {
	if err := u.validator.Struct(locker); err != nil {
		return nil, err
	}

	now := u.timeProvider.Now()
	if locker.ID == "" {
		locker.ID = u.ids.NewID()
	}
	if locker.Size == "" {
		locker.Size = entity.LockerSizeMedium
	}
	locker.Available = locker.Capacity
	locker.Status = entity.LockerStatusAvailable
	locker.Version = 1
	locker.CreatedAt = now
	locker.UpdatedAt = now

	if err := u.uow.GetLockerRepository(ctx).Create(ctx, locker); err != nil {
		u.logger.Error("Failed to create locker", map[string]any{
			"locker_id": locker.ID,
			"error":     err.Error(),
		})
		return nil, err
	}

	u.logger.Info("Locker created", map[string]any{
		"locker_id": locker.ID,
		"code":      locker.Code,
		"capacity":  locker.Capacity,
	})
	return locker, nil
}

// GetLocker returns one locker with its live counters
func (u *LockerUseCase) GetLocker(ctx context.Context, id string) (*entity.Locker, error) {
	if err := validation.RequireID("id", id); err != nil {
		return nil, err
	}
	return u.uow.GetLockerRepository(ctx).GetByID(ctx, id)
}

// ListLockers returns lockers ordered by code
func (u *LockerUseCase) ListLockers(ctx context.Context, filter persistence.LockerFilter) ([]*entity.Locker, error) {
	return u.uow.GetLockerRepository(ctx).List(ctx, filter)
}

// UpdateLocker changes descriptive fields. Capacity is fixed at creation; zero means unchanged.
func (u *LockerUseCase) UpdateLocker(ctx context.Context, locker *entity.Locker) (*entity.Locker, error) {
	if err := validation.RequireID("id", locker.ID); err != nil {
		return nil, err
	}

	input := *locker
	if input.Capacity == 0 {
		input.Capacity = 1
	}
	if err := u.validator.Struct(&input); err != nil {
		return nil, err
	}

	repo := u.uow.GetLockerRepository(ctx)
	existing, err := repo.GetByID(ctx, locker.ID)
	if err != nil {
		return nil, err
	}
	if locker.Capacity != 0 && locker.Capacity != existing.Capacity {
		return nil, errs.NewValidationError("capacity", "capacity cannot be changed")
	}

	existing.Code = locker.Code
	existing.Name = locker.Name
	if locker.Size != "" {
		existing.Size = locker.Size
	}
	existing.BasePrice = locker.BasePrice
	existing.Location = locker.Location
	existing.DeviceID = locker.DeviceID
	existing.UpdatedAt = u.timeProvider.Now()

	if err := repo.UpdateDetails(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteLocker removes a locker that holds no booked unit
func (u *LockerUseCase) DeleteLocker(ctx context.Context, id string) (err error) {
	if err := validation.RequireID("id", id); err != nil {
		return err
	}

	txCtx, err := u.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}
	defer func() {
		if err != nil {
			_ = u.uow.Rollback(txCtx)
		}
	}()

	lockers := u.uow.GetLockerRepository(txCtx)
	existing, err := lockers.GetByID(txCtx, id)
	if err != nil {
		return err
	}

	unreleased, err := u.uow.GetTransactionRepository(txCtx).CountUnreleased(txCtx, id)
	if err != nil {
		return err
	}
	if existing.Holds() > 0 || unreleased > 0 {
		return errs.NewLockerError(id, "delete", existing.Available, existing.Capacity, errs.ErrLockerInUse)
	}

	// Conditional on the version read above: a booking committed since then makes this a conflict
	if err = lockers.Delete(txCtx, id, existing.Version); err != nil {
		return err
	}
	if err = u.uow.Commit(txCtx); err != nil {
		return err
	}

	u.logger.Info("Locker deleted", map[string]any{"locker_id": id})
	return nil
}
