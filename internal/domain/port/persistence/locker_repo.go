package persistence

import (
	"context"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// LockerFilter narrows locker listings
type LockerFilter struct {
	Status   entity.LockerStatus
	Location string
	Limit    int
	Offset   int
}

// LockerRepository is the Locker Record Store.
// Counter fields change only through ConditionalUpdate; there is no unconditional counter write.
type LockerRepository interface {
	// Create provisions a new locker
	//
	// Possible errors:
	// - ErrDuplicate: If a locker with the same id or code exists
	// - ErrDatabaseConnection: If the store fails
	Create(ctx context.Context, locker *entity.Locker) error

	// GetByID reads the current record including its version
	//
	// Possible errors:
	// - ErrLockerNotFound: If the locker doesn't exist
	// - ErrDatabaseConnection: If the store fails
	GetByID(ctx context.Context, id string) (*entity.Locker, error)

	// List returns lockers ordered by code
	List(ctx context.Context, filter LockerFilter) ([]*entity.Locker, error)

	// ConditionalUpdate writes the counter pair only if the stored version equals expectedVersion.
	// On success the version is bumped and the updated record is returned.
	//
	// Possible errors:
	// - ErrConflict: If the stored version moved on
	// - ErrLockerNotFound: If the locker doesn't exist
	// - ErrDatabaseConnection: If the store fails
	ConditionalUpdate(ctx context.Context, id string, expectedVersion int64, state entity.LockerState) (*entity.Locker, error)

	// UpdateDetails changes descriptive fields; capacity and counters are left untouched
	//
	// Possible errors:
	// - ErrLockerNotFound: If the locker doesn't exist
	// - ErrDuplicate: If the new code collides
	UpdateDetails(ctx context.Context, locker *entity.Locker) error

	// Delete removes a locker record only if the stored version equals expectedVersion,
	// so a booking that commits after the caller's checks keeps the locker alive
	//
	// Possible errors:
	// - ErrConflict: If the stored version moved on
	// - ErrLockerNotFound: If the locker doesn't exist
	Delete(ctx context.Context, id string, expectedVersion int64) error
}
