// Package memory implements every persistence port in process memory.
// It backs unit tests and the database.driver=memory mode.
package memory

import (
	"context"
	"maps"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
)

// tables holds the records; values are copies so callers never alias stored state
type tables struct {
	lockers      map[string]entity.Locker
	transactions map[string]entity.Transaction
	logs         map[string]entity.LockerLog
	payments     map[string]entity.Payment
	devices      map[string]entity.Device
	users        map[string]entity.User
}

func newTables() tables {
	return tables{
		lockers:      map[string]entity.Locker{},
		transactions: map[string]entity.Transaction{},
		logs:         map[string]entity.LockerLog{},
		payments:     map[string]entity.Payment{},
		devices:      map[string]entity.Device{},
		users:        map[string]entity.User{},
	}
}

// snapshot copies the maps. Stored values are replaced, never mutated in place, so a shallow copy is enough.
func (t tables) snapshot() tables {
	return tables{
		lockers:      maps.Clone(t.lockers),
		transactions: maps.Clone(t.transactions),
		logs:         maps.Clone(t.logs),
		payments:     maps.Clone(t.payments),
		devices:      maps.Clone(t.devices),
		users:        maps.Clone(t.users),
	}
}

// Store serializes every access through a single slot semaphore.
// A unit of work holds the slot from Begin to Commit or Rollback.
type Store struct {
	slot         chan struct{}
	data         tables
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewStore creates an empty store
func NewStore(timeProvider coreport.TimeProvider, logger coreport.Logger) *Store {
	return &Store{
		slot:         make(chan struct{}, 1),
		data:         newTables(),
		timeProvider: timeProvider,
		logger:       logger,
	}
}

type unitKey struct{}

// unit marks a context that already holds the store slot
type unit struct {
	store    *Store
	snapshot tables
	done     bool
}

func (s *Store) unitFrom(ctx context.Context) *unit {
	u, ok := ctx.Value(unitKey{}).(*unit)
	if !ok || u.store != s || u.done {
		return nil
	}
	return u
}

// acquire takes the slot unless ctx already holds it through a unit of work
func (s *Store) acquire(ctx context.Context) (func(), error) {
	if s.unitFrom(ctx) != nil {
		return func() {}, nil
	}
	select {
	case s.slot <- struct{}{}:
		return func() { <-s.slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Lockers returns the locker repository
func (s *Store) Lockers() *LockerRepository { return &LockerRepository{store: s} }

// Transactions returns the transaction repository
func (s *Store) Transactions() *TransactionRepository { return &TransactionRepository{store: s} }

// LockerLogs returns the audit log repository
func (s *Store) LockerLogs() *LockerLogRepository { return &LockerLogRepository{store: s} }

// Payments returns the payment repository
func (s *Store) Payments() *PaymentRepository { return &PaymentRepository{store: s} }

// Devices returns the ESP32 device repository
func (s *Store) Devices() *DeviceRepository { return &DeviceRepository{store: s} }

// Users returns the user repository
func (s *Store) Users() *UserRepository { return &UserRepository{store: s} }

// page applies limit and offset to an ordered slice; limit <= 0 means no limit
func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Repositories returns every port backed by this store
func (s *Store) Repositories() persistence.Repositories {
	return persistence.Repositories{
		UnitOfWork:   NewUnitOfWork(s),
		Lockers:      s.Lockers(),
		Transactions: s.Transactions(),
		LockerLogs:   s.LockerLogs(),
		Payments:     s.Payments(),
		Devices:      s.Devices(),
		Users:        s.Users(),
	}
}
