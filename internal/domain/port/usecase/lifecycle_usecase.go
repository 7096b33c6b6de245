package usecase

import (
	"context"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
)

// LifecycleController owns the transaction state machine and drives the AvailabilityManager
type LifecycleController interface {
	// CreateBooking books a unit and records a pending transaction in one unit of work
	CreateBooking(ctx context.Context, req entity.BookingRequest) (*entity.Transaction, error)

	// MarkPaid moves a pending transaction to paid; no locker call
	MarkPaid(ctx context.Context, id string) (*entity.Transaction, error)

	// MarkFailed releases the unit as cancelled and records the failed payment
	MarkFailed(ctx context.Context, id string) (*entity.Transaction, error)

	// MarkExpired releases the unit as cancelled and records the expired payment
	MarkExpired(ctx context.Context, id string) (*entity.Transaction, error)

	// Checkout releases the unit as retrieved and marks the transaction checked out
	Checkout(ctx context.Context, id string) (*entity.Transaction, error)

	// CheckoutByAccessCode resolves the retrieval code and checks the transaction out
	CheckoutByAccessCode(ctx context.Context, code string) (*entity.Transaction, error)

	// AccessByCode opens the locker for a paid transaction within its rental window
	AccessByCode(ctx context.Context, code string) (*entity.Transaction, error)

	// Delete releases the unit if still held and removes the transaction
	Delete(ctx context.Context, id string) error

	// ExpireOverdue expires up to limit pending transactions past their deadline and returns how many moved
	ExpireOverdue(ctx context.Context, limit int) (int, error)

	Get(ctx context.Context, id string) (*entity.Transaction, error)
	List(ctx context.Context, filter persistence.TransactionFilter) ([]*entity.Transaction, error)
}
