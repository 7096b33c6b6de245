// Package device manages the ESP32 controllers that drive locker doors
package device

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

// DeviceUseCase handles device registration and connectivity
type DeviceUseCase struct {
	devices      persistence.DeviceRepository
	lockers      persistence.LockerRepository
	validator    *validation.Validator
	ids          coreport.IDGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.DeviceUseCase = (*DeviceUseCase)(nil)

// NewDeviceUseCase creates a new DeviceUseCase
func NewDeviceUseCase(
	devices persistence.DeviceRepository,
	lockers persistence.LockerRepository,
	validator *validation.Validator,
	ids coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *DeviceUseCase {
	return &DeviceUseCase{
		devices:      devices,
		lockers:      lockers,
		validator:    validator,
		ids:          ids,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// CreateDevice registers a device; a bound locker must exist
func (u *DeviceUseCase) CreateDevice(ctx context.Context, device *entity.Device) (*entity.Device, error) {
	if err := u.validator.Struct(device); err != nil {
		return nil, err
	}
	if err := u.checkLocker(ctx, device.LockerID); err != nil {
		return nil, err
	}

	now := u.timeProvider.Now()
	if device.ID == "" {
		device.ID = u.ids.NewID()
	}
	if device.Status == "" {
		device.Status = entity.DeviceOffline
	}
	if device.Status == entity.DeviceOnline {
		device.LastOnline = &now
	}
	device.CreatedAt = now
	device.UpdatedAt = now

	if err := u.devices.Create(ctx, device); err != nil {
		return nil, err
	}

	u.logger.Info("Device registered", map[string]any{
		"device_id":  device.ID,
		"identifier": device.DeviceIdentifier,
		"locker_id":  device.LockerID,
	})
	return device, nil
}

func (u *DeviceUseCase) checkLocker(ctx context.Context, lockerID string) error {
	if lockerID == "" {
		return nil
	}
	_, err := u.lockers.GetByID(ctx, lockerID)
	return err
}

// GetDevice returns one device
func (u *DeviceUseCase) GetDevice(ctx context.Context, id string) (*entity.Device, error) {
	if err := validation.RequireID("id", id); err != nil {
		return nil, err
	}
	return u.devices.GetByID(ctx, id)
}

// ListDevices returns a page of devices
func (u *DeviceUseCase) ListDevices(ctx context.Context, limit, offset int) ([]*entity.Device, error) {
	return u.devices.List(ctx, limit, offset)
}

// UpdateDevice replaces the device settings; connectivity is changed only through SetDeviceStatus
func (u *DeviceUseCase) UpdateDevice(ctx context.Context, device *entity.Device) (*entity.Device, error) {
	if err := validation.RequireID("id", device.ID); err != nil {
		return nil, err
	}
	if err := u.validator.Struct(device); err != nil {
		return nil, err
	}

	existing, err := u.devices.GetByID(ctx, device.ID)
	if err != nil {
		return nil, err
	}
	if err := u.checkLocker(ctx, device.LockerID); err != nil {
		return nil, err
	}

	existing.Name = device.Name
	existing.DeviceIdentifier = device.DeviceIdentifier
	existing.LockerID = device.LockerID
	existing.Location = device.Location
	existing.IPAddress = device.IPAddress
	existing.Port = device.Port
	existing.UpdatedAt = u.timeProvider.Now()

	if err := u.devices.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// SetDeviceStatus records a heartbeat or a disconnect
func (u *DeviceUseCase) SetDeviceStatus(ctx context.Context, id string, status entity.DeviceStatus) (*entity.Device, error) {
	if err := validation.RequireID("id", id); err != nil {
		return nil, err
	}
	if status != entity.DeviceOnline && status != entity.DeviceOffline {
		return nil, errs.NewValidationError("status", fmt.Sprintf("status must be one of: %s, %s", entity.DeviceOnline, entity.DeviceOffline))
	}

	if err := u.devices.SetStatus(ctx, id, status, u.timeProvider.Now()); err != nil {
		return nil, err
	}
	return u.devices.GetByID(ctx, id)
}

// DeleteDevice removes a device
func (u *DeviceUseCase) DeleteDevice(ctx context.Context, id string) error {
	if err := validation.RequireID("id", id); err != nil {
		return err
	}
	if err := u.devices.Delete(ctx, id); err != nil {
		return err
	}

	u.logger.Info("Device deleted", map[string]any{"device_id": id})
	return nil
}
