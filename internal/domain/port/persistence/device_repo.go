package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// DeviceRepository stores ESP32 controllers
type DeviceRepository interface {
	Create(ctx context.Context, device *entity.Device) error
	GetByID(ctx context.Context, id string) (*entity.Device, error)
	// GetByLockerID returns the device bound to a locker
	//
	// Possible errors:
	// - ErrDeviceNotFound: If no device is bound
	GetByLockerID(ctx context.Context, lockerID string) (*entity.Device, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Device, error)
	Update(ctx context.Context, device *entity.Device) error
	// SetStatus records connectivity; lastOnline is stored only for online
	SetStatus(ctx context.Context, id string, status entity.DeviceStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
}
