package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
)

// DeviceRepository stores ESP32 devices in memory
type DeviceRepository struct {
	store *Store
}

var _ persistence.DeviceRepository = (*DeviceRepository)(nil)

func cloneDevice(d entity.Device) *entity.Device {
	if d.LastOnline != nil {
		at := *d.LastOnline
		d.LastOnline = &at
	}
	return &d
}

// Create saves a device
func (r *DeviceRepository) Create(ctx context.Context, device *entity.Device) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, exists := r.store.data.devices[device.ID]; exists {
		return fmt.Errorf("%w: device %s", errs.ErrDuplicate, device.ID)
	}
	for _, other := range r.store.data.devices {
		if other.DeviceIdentifier == device.DeviceIdentifier {
			return fmt.Errorf("%w: device identifier %s", errs.ErrDuplicate, device.DeviceIdentifier)
		}
	}
	r.store.data.devices[device.ID] = *cloneDevice(*device)
	return nil
}

// GetByID retrieves a device
func (r *DeviceRepository) GetByID(ctx context.Context, id string) (*entity.Device, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	d, ok := r.store.data.devices[id]
	if !ok {
		return nil, errs.ErrDeviceNotFound
	}
	return cloneDevice(d), nil
}

// GetByLockerID returns the device bound to a locker
func (r *DeviceRepository) GetByLockerID(ctx context.Context, lockerID string) (*entity.Device, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	for _, d := range r.store.data.devices {
		if lockerID != "" && d.LockerID == lockerID {
			return cloneDevice(d), nil
		}
	}
	return nil, errs.ErrDeviceNotFound
}

// List returns devices ordered by name
func (r *DeviceRepository) List(ctx context.Context, limit, offset int) ([]*entity.Device, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out := make([]*entity.Device, 0, len(r.store.data.devices))
	for _, d := range r.store.data.devices {
		out = append(out, cloneDevice(d))
	}
	slices.SortFunc(out, func(a, b *entity.Device) int {
		return strings.Compare(a.Name, b.Name)
	})
	return page(out, limit, offset), nil
}

// Update replaces a device
func (r *DeviceRepository) Update(ctx context.Context, device *entity.Device) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.store.data.devices[device.ID]; !ok {
		return errs.ErrDeviceNotFound
	}
	for _, other := range r.store.data.devices {
		if other.ID != device.ID && other.DeviceIdentifier == device.DeviceIdentifier {
			return fmt.Errorf("%w: device identifier %s", errs.ErrDuplicate, device.DeviceIdentifier)
		}
	}
	r.store.data.devices[device.ID] = *cloneDevice(*device)
	return nil
}

// SetStatus records connectivity
func (r *DeviceRepository) SetStatus(ctx context.Context, id string, status entity.DeviceStatus, at time.Time) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	d, ok := r.store.data.devices[id]
	if !ok {
		return errs.ErrDeviceNotFound
	}
	d.Status = status
	if status == entity.DeviceOnline {
		d.LastOnline = &at
	}
	d.UpdatedAt = at
	r.store.data.devices[id] = d
	return nil
}

// Delete removes a device
func (r *DeviceRepository) Delete(ctx context.Context, id string) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.store.data.devices[id]; !ok {
		return errs.ErrDeviceNotFound
	}
	delete(r.store.data.devices, id)
	return nil
}
