package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// LockerLogFilter narrows audit log listings
type LockerLogFilter struct {
	LockerID      string
	TransactionID string
	UserID        string
	Action        entity.LockerAction
	Since         *time.Time
	Until         *time.Time
	Limit         int
	Offset        int
}

// LockerLogRepository is the durable sink of the audit trail
type LockerLogRepository interface {
	// Append writes a new entry
	Append(ctx context.Context, log *entity.LockerLog) error

	// GetByID retrieves one entry
	//
	// Possible errors:
	// - ErrLockerLogNotFound: If the entry doesn't exist
	GetByID(ctx context.Context, id string) (*entity.LockerLog, error)

	// List returns entries newest first
	List(ctx context.Context, filter LockerLogFilter) ([]*entity.LockerLog, error)

	// Correct is the administrative correction path; it rewrites an existing entry
	//
	// Possible errors:
	// - ErrLockerLogNotFound: If the entry doesn't exist
	Correct(ctx context.Context, log *entity.LockerLog) error

	// Delete removes one entry
	//
	// Possible errors:
	// - ErrLockerLogNotFound: If the entry doesn't exist
	Delete(ctx context.Context, id string) error

	// Purge removes every entry older than before and returns how many were removed
	Purge(ctx context.Context, before time.Time) (int64, error)

	// CountByAction tallies the entries matching filter per action; paging is ignored
	CountByAction(ctx context.Context, filter LockerLogFilter) (entity.ActionCounts, error)
}
