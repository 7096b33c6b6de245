package repository

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// LockerRepository is the PostgreSQL Locker Record Store
type LockerRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

var _ persistence.LockerRepository = (*LockerRepository)(nil)

// NewLockerRepository creates a new LockerRepository instance
func NewLockerRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *LockerRepository {
	return &LockerRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func lockerToEntity(m *model.Locker) *entity.Locker {
	return &entity.Locker{
		ID:        m.ID,
		Code:      deref(m.Code),
		Name:      m.Name,
		Size:      entity.LockerSize(m.Size),
		BasePrice: m.BasePrice,
		Location:  m.Location,
		DeviceID:  m.DeviceID,
		Capacity:  m.Capacity,
		Available: m.Available,
		Status:    entity.LockerStatus(m.Status),
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func lockerToModel(l *entity.Locker) *model.Locker {
	return &model.Locker{
		ID:        l.ID,
		Code:      nullable(l.Code),
		Name:      l.Name,
		Size:      string(l.Size),
		BasePrice: l.BasePrice,
		Location:  l.Location,
		DeviceID:  l.DeviceID,
		Capacity:  l.Capacity,
		Available: l.Available,
		Status:    string(l.Status),
		Version:   l.Version,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func (r *LockerRepository) fail(operation string, err error, lockerID string) error {
	return handleDatabaseError(r.logger, r.errorClassifier, operation, err, errs.ErrLockerNotFound,
		map[string]any{"locker_id": lockerID})
}

// Create provisions a new locker
func (r *LockerRepository) Create(ctx context.Context, locker *entity.Locker) error {
	if !locker.State().Valid(locker.Capacity) {
		return errs.NewValidationError("available", "available must be between 0 and capacity")
	}
	if err := conn(ctx, r.db).Create(lockerToModel(locker)).Error; err != nil {
		return r.fail("creating locker", err, locker.ID)
	}
	return nil
}

// GetByID reads the current record including its version
func (r *LockerRepository) GetByID(ctx context.Context, id string) (*entity.Locker, error) {
	var m model.Locker
	if err := conn(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, r.fail("getting locker", err, id)
	}
	return lockerToEntity(&m), nil
}

// List returns lockers ordered by code
func (r *LockerRepository) List(ctx context.Context, filter persistence.LockerFilter) ([]*entity.Locker, error) {
	q := conn(ctx, r.db).Model(&model.Locker{})
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Location != "" {
		q = q.Where("LOWER(location) = LOWER(?)", filter.Location)
	}

	var rows []model.Locker
	if err := paginate(q.Order("code ASC NULLS LAST").Order("id ASC"), filter.Limit, filter.Offset).Find(&rows).Error; err != nil {
		return nil, r.fail("listing lockers", err, "")
	}

	out := make([]*entity.Locker, 0, len(rows))
	for i := range rows {
		out = append(out, lockerToEntity(&rows[i]))
	}
	return out, nil
}

// ConditionalUpdate writes the counter pair only when the stored version matches.
// Zero affected rows means the version moved on or the locker is gone; a second read tells them apart.
func (r *LockerRepository) ConditionalUpdate(
	ctx context.Context,
	id string,
	expectedVersion int64,
	state entity.LockerState,
) (*entity.Locker, error) {
	db := conn(ctx, r.db)

	result := db.Model(&model.Locker{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"available":  state.Available,
			"status":     string(state.Status),
			"version":    gorm.Expr("version + 1"),
			"updated_at": r.timeProvider.Now(),
		})
	if result.Error != nil {
		return nil, r.fail("updating locker counters", result.Error, id)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&model.Locker{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, r.fail("checking locker existence", err, id)
		}
		if count == 0 {
			return nil, errs.ErrLockerNotFound
		}
		return nil, fmt.Errorf("%w: locker %s moved past version %d", errs.ErrConflict, id, expectedVersion)
	}

	return r.GetByID(ctx, id)
}

// UpdateDetails changes descriptive fields; capacity and counters are left untouched
func (r *LockerRepository) UpdateDetails(ctx context.Context, locker *entity.Locker) error {
	result := conn(ctx, r.db).Model(&model.Locker{}).
		Where("id = ?", locker.ID).
		Updates(map[string]any{
			"code":       nullable(locker.Code),
			"name":       locker.Name,
			"size":       string(locker.Size),
			"location":   locker.Location,
			"base_price": locker.BasePrice,
			"device_id":  locker.DeviceID,
			"updated_at": r.timeProvider.Now(),
		})
	if result.Error != nil {
		return r.fail("updating locker details", result.Error, locker.ID)
	}
	if result.RowsAffected == 0 {
		return errs.ErrLockerNotFound
	}

	updated, err := r.GetByID(ctx, locker.ID)
	if err != nil {
		return err
	}
	*locker = *updated
	return nil
}

// Delete removes a locker record at the expected version.
// A concurrent booking holds the row lock and bumps the version, so the re-checked WHERE matches nothing.
func (r *LockerRepository) Delete(ctx context.Context, id string, expectedVersion int64) error {
	db := conn(ctx, r.db)

	result := db.Where("id = ? AND version = ?", id, expectedVersion).Delete(&model.Locker{})
	if result.Error != nil {
		return r.fail("deleting locker", result.Error, id)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&model.Locker{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return r.fail("checking locker existence", err, id)
		}
		if count == 0 {
			return errs.ErrLockerNotFound
		}
		return fmt.Errorf("%w: locker %s moved past version %d", errs.ErrConflict, id, expectedVersion)
	}
	return nil
}
