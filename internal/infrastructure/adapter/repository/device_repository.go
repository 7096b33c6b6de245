package repository

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// DeviceRepository stores ESP32 controllers using GORM
type DeviceRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

var _ persistence.DeviceRepository = (*DeviceRepository)(nil)

// NewDeviceRepository creates a new DeviceRepository instance
func NewDeviceRepository(db *gorm.DB, logger coreport.Logger) *DeviceRepository {
	return &DeviceRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func deviceToModel(d *entity.Device) *model.Device {
	return &model.Device{
		ID:               d.ID,
		Name:             d.Name,
		DeviceIdentifier: d.DeviceIdentifier,
		LockerID:         d.LockerID,
		Status:           string(d.Status),
		Location:         d.Location,
		IPAddress:        d.IPAddress,
		Port:             d.Port,
		LastOnline:       d.LastOnline,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func deviceToEntity(m *model.Device) *entity.Device {
	return &entity.Device{
		ID:               m.ID,
		Name:             m.Name,
		DeviceIdentifier: m.DeviceIdentifier,
		LockerID:         m.LockerID,
		Status:           entity.DeviceStatus(m.Status),
		Location:         m.Location,
		IPAddress:        m.IPAddress,
		Port:             m.Port,
		LastOnline:       m.LastOnline,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (r *DeviceRepository) fail(operation string, err error, id string) error {
	return handleDatabaseError(r.logger, r.errorClassifier, operation, err, errs.ErrDeviceNotFound,
		map[string]any{"device_id": id})
}

// Create saves a device
func (r *DeviceRepository) Create(ctx context.Context, device *entity.Device) error {
	if err := conn(ctx, r.db).Create(deviceToModel(device)).Error; err != nil {
		return r.fail("creating device", err, device.ID)
	}
	return nil
}

// GetByID retrieves a device
func (r *DeviceRepository) GetByID(ctx context.Context, id string) (*entity.Device, error) {
	var m model.Device
	if err := conn(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, r.fail("getting device", err, id)
	}
	return deviceToEntity(&m), nil
}

// GetByLockerID returns the device bound to a locker
func (r *DeviceRepository) GetByLockerID(ctx context.Context, lockerID string) (*entity.Device, error) {
	if lockerID == "" {
		return nil, errs.ErrDeviceNotFound
	}

	var m model.Device
	if err := conn(ctx, r.db).Where("locker_id = ?", lockerID).First(&m).Error; err != nil {
		return nil, r.fail("getting device by locker", err, "")
	}
	return deviceToEntity(&m), nil
}

// List returns devices ordered by name
func (r *DeviceRepository) List(ctx context.Context, limit, offset int) ([]*entity.Device, error) {
	var rows []model.Device
	if err := paginate(conn(ctx, r.db).Order("name ASC"), limit, offset).Find(&rows).Error; err != nil {
		return nil, r.fail("listing devices", err, "")
	}

	out := make([]*entity.Device, 0, len(rows))
	for i := range rows {
		out = append(out, deviceToEntity(&rows[i]))
	}
	return out, nil
}

// Update replaces a device
func (r *DeviceRepository) Update(ctx context.Context, device *entity.Device) error {
	result := conn(ctx, r.db).Model(&model.Device{}).
		Where("id = ?", device.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(deviceToModel(device))
	if result.Error != nil {
		return r.fail("updating device", result.Error, device.ID)
	}
	if result.RowsAffected == 0 {
		return errs.ErrDeviceNotFound
	}
	return nil
}

// SetStatus records connectivity; last_online moves only when the device reports online
func (r *DeviceRepository) SetStatus(ctx context.Context, id string, status entity.DeviceStatus, at time.Time) error {
	updates := map[string]any{
		"status":     string(status),
		"updated_at": at,
	}
	if status == entity.DeviceOnline {
		updates["last_online"] = at
	}

	result := conn(ctx, r.db).Model(&model.Device{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return r.fail("setting device status", result.Error, id)
	}
	if result.RowsAffected == 0 {
		return errs.ErrDeviceNotFound
	}
	return nil
}

// Delete removes a device
func (r *DeviceRepository) Delete(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&model.Device{})
	if result.Error != nil {
		return r.fail("deleting device", result.Error, id)
	}
	if result.RowsAffected == 0 {
		return errs.ErrDeviceNotFound
	}
	return nil
}
