package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// TransactionFilter narrows transaction listings
type TransactionFilter struct {
	LockerID      string
	UserID        string
	PaymentStatus entity.PaymentStatus
	Limit         int
	Offset        int
}

// TransactionRepository stores locker rentals
type TransactionRepository interface {
	// Create saves a new transaction
	//
	// Possible errors:
	// - ErrDuplicate: If the id or access code is taken
	// - ErrDatabaseConnection: If the store fails
	Create(ctx context.Context, tx *entity.Transaction) error

	// GetByID retrieves a transaction
	//
	// Possible errors:
	// - ErrTransactionNotFound: If the transaction doesn't exist
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)

	// GetByAccessCode retrieves the transaction issued the given retrieval code
	//
	// Possible errors:
	// - ErrTransactionNotFound: If no transaction carries the code
	GetByAccessCode(ctx context.Context, code string) (*entity.Transaction, error)

	// List returns transactions newest first
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, error)

	// ListOverdue returns pending transactions whose payment deadline is at or before now
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Transaction, error)

	// ConditionalUpdate persists tx only if the stored version equals expectedVersion.
	// On success tx.Version holds the new version.
	//
	// Possible errors:
	// - ErrConflict: If another writer updated the transaction first
	// - ErrTransactionNotFound: If the transaction doesn't exist
	ConditionalUpdate(ctx context.Context, tx *entity.Transaction, expectedVersion int64) error

	// Delete removes the transaction only if the stored version equals expectedVersion
	//
	// Possible errors:
	// - ErrConflict: If another writer updated the transaction first
	// - ErrTransactionNotFound: If the transaction doesn't exist
	Delete(ctx context.Context, id string, expectedVersion int64) error

	// CountUnreleased returns the number of transactions still holding a unit of the locker
	CountUnreleased(ctx context.Context, lockerID string) (int, error)
}
