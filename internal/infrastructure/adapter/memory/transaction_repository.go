package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
)

// TransactionRepository stores transactions in memory
type TransactionRepository struct {
	store *Store
}

var _ persistence.TransactionRepository = (*TransactionRepository)(nil)

// Create saves a new transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, exists := r.store.data.transactions[tx.ID]; exists {
		return fmt.Errorf("%w: transaction %s", errs.ErrDuplicate, tx.ID)
	}
	if tx.AccessCode != "" {
		for _, other := range r.store.data.transactions {
			if other.AccessCode == tx.AccessCode {
				return fmt.Errorf("%w: access code", errs.ErrDuplicate)
			}
		}
	}
	if tx.Version == 0 {
		tx.Version = 1
	}
	r.store.data.transactions[tx.ID] = *tx.Clone()
	return nil
}

// GetByID retrieves a transaction
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, ok := r.store.data.transactions[id]
	if !ok {
		return nil, errs.ErrTransactionNotFound
	}
	return tx.Clone(), nil
}

// GetByAccessCode finds the transaction issued a retrieval code
func (r *TransactionRepository) GetByAccessCode(ctx context.Context, code string) (*entity.Transaction, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	for _, tx := range r.store.data.transactions {
		if code != "" && tx.AccessCode == code {
			return tx.Clone(), nil
		}
	}
	return nil, errs.ErrTransactionNotFound
}

// List returns transactions newest first
func (r *TransactionRepository) List(ctx context.Context, filter persistence.TransactionFilter) ([]*entity.Transaction, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out := make([]*entity.Transaction, 0)
	for _, tx := range r.store.data.transactions {
		if filter.LockerID != "" && tx.LockerID != filter.LockerID {
			continue
		}
		if filter.UserID != "" && tx.UserID != filter.UserID {
			continue
		}
		if filter.PaymentStatus != "" && tx.PaymentStatus != filter.PaymentStatus {
			continue
		}
		out = append(out, tx.Clone())
	}
	slices.SortFunc(out, func(a, b *entity.Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

// ListOverdue returns pending transactions past their deadline, oldest deadline first
func (r *TransactionRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Transaction, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out := make([]*entity.Transaction, 0)
	for _, tx := range r.store.data.transactions {
		if tx.IsOverdue(now) {
			out = append(out, tx.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *entity.Transaction) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})
	return page(out, limit, 0), nil
}

// ConditionalUpdate replaces the stored transaction when the version matches
func (r *TransactionRepository) ConditionalUpdate(ctx context.Context, tx *entity.Transaction, expectedVersion int64) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	stored, ok := r.store.data.transactions[tx.ID]
	if !ok {
		return errs.ErrTransactionNotFound
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("%w: transaction %s at version %d, expected %d", errs.ErrConflict, tx.ID, stored.Version, expectedVersion)
	}

	tx.Version = expectedVersion + 1
	r.store.data.transactions[tx.ID] = *tx.Clone()
	return nil
}

// Delete removes the transaction when the version matches
func (r *TransactionRepository) Delete(ctx context.Context, id string, expectedVersion int64) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	stored, ok := r.store.data.transactions[id]
	if !ok {
		return errs.ErrTransactionNotFound
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("%w: transaction %s at version %d, expected %d", errs.ErrConflict, id, stored.Version, expectedVersion)
	}
	delete(r.store.data.transactions, id)
	return nil
}

// CountUnreleased counts transactions still holding a unit of the locker
func (r *TransactionRepository) CountUnreleased(ctx context.Context, lockerID string) (int, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	count := 0
	for _, tx := range r.store.data.transactions {
		if tx.LockerID == lockerID && tx.HoldsUnit() {
			count++
		}
	}
	return count, nil
}
