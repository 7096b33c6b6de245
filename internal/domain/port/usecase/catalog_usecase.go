package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
)

// UserUseCase manages customer and operator accounts
type UserUseCase interface {
	CreateUser(ctx context.Context, user *entity.User, password string) (*entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*entity.User, error)
	UpdateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// LockerUseCase provisions lockers. Counters are never written here.
type LockerUseCase interface {
	CreateLocker(ctx context.Context, locker *entity.Locker) (*entity.Locker, error)
	GetLocker(ctx context.Context, id string) (*entity.Locker, error)
	ListLockers(ctx context.Context, filter persistence.LockerFilter) ([]*entity.Locker, error)
	UpdateLocker(ctx context.Context, locker *entity.Locker) (*entity.Locker, error)
	// DeleteLocker fails with ErrLockerInUse while any unit is held
	DeleteLocker(ctx context.Context, id string) error
}

// DeviceUseCase manages ESP32 controllers
type DeviceUseCase interface {
	CreateDevice(ctx context.Context, device *entity.Device) (*entity.Device, error)
	GetDevice(ctx context.Context, id string) (*entity.Device, error)
	ListDevices(ctx context.Context, limit, offset int) ([]*entity.Device, error)
	UpdateDevice(ctx context.Context, device *entity.Device) (*entity.Device, error)
	SetDeviceStatus(ctx context.Context, id string, status entity.DeviceStatus) (*entity.Device, error)
	DeleteDevice(ctx context.Context, id string) error
}

// PaymentUseCase records payment attempts and feeds their outcomes into the transaction lifecycle
type PaymentUseCase interface {
	CreatePayment(ctx context.Context, payment *entity.Payment) (*entity.Payment, error)
	GetPayment(ctx context.Context, id string) (*entity.Payment, error)
	ListPayments(ctx context.Context, transactionID string, limit, offset int) ([]*entity.Payment, error)
	// RecordOutcome applies a gateway result: succeeded marks the transaction paid,
	// failed and expired release its locker unit
	RecordOutcome(ctx context.Context, id string, outcome entity.PaymentState) (*entity.Payment, error)
	DeletePayment(ctx context.Context, id string) error
}

// LockerLogUseCase exposes the audit trail, its correction path and bulk purge
type LockerLogUseCase interface {
	CreateLog(ctx context.Context, log *entity.LockerLog) (*entity.LockerLog, error)
	GetLog(ctx context.Context, id string) (*entity.LockerLog, error)
	ListLogs(ctx context.Context, filter persistence.LockerLogFilter) ([]*entity.LockerLog, error)
	CorrectLog(ctx context.Context, log *entity.LockerLog) (*entity.LockerLog, error)
	DeleteLog(ctx context.Context, id string) error
	PurgeLogs(ctx context.Context, before time.Time) (int64, error)
	ActionStats(ctx context.Context, filter persistence.LockerLogFilter) (entity.ActionCounts, error)
}
