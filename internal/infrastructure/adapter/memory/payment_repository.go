package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
)

// PaymentRepository stores payments in memory
type PaymentRepository struct {
	store *Store
}

var _ persistence.PaymentRepository = (*PaymentRepository)(nil)

// Create saves a payment
func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, exists := r.store.data.payments[payment.ID]; exists {
		return fmt.Errorf("%w: payment %s", errs.ErrDuplicate, payment.ID)
	}
	r.store.data.payments[payment.ID] = *payment
	return nil
}

// GetByID retrieves a payment
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	p, ok := r.store.data.payments[id]
	if !ok {
		return nil, errs.ErrPaymentNotFound
	}
	return &p, nil
}

// ListByTransaction returns the payments of one transaction, oldest first
func (r *PaymentRepository) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.Payment, error) {
	all, err := r.list(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	slices.Reverse(all)
	return all, nil
}

// List returns payments newest first
func (r *PaymentRepository) List(ctx context.Context, limit, offset int) ([]*entity.Payment, error) {
	all, err := r.list(ctx, "")
	if err != nil {
		return nil, err
	}
	return page(all, limit, offset), nil
}

func (r *PaymentRepository) list(ctx context.Context, transactionID string) ([]*entity.Payment, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out := make([]*entity.Payment, 0)
	for _, p := range r.store.data.payments {
		if transactionID != "" && p.TransactionID != transactionID {
			continue
		}
		out = append(out, &p)
	}
	slices.SortFunc(out, func(a, b *entity.Payment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Update replaces a payment
func (r *PaymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.store.data.payments[payment.ID]; !ok {
		return errs.ErrPaymentNotFound
	}
	r.store.data.payments[payment.ID] = *payment
	return nil
}

// Delete removes a payment
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.store.data.payments[id]; !ok {
		return errs.ErrPaymentNotFound
	}
	delete(r.store.data.payments, id)
	return nil
}
