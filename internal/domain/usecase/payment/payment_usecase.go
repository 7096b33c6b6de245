// Package payment records payment attempts and turns gateway outcomes into lifecycle transitions
package payment

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
)

// PaymentUseCase handles payment records
type PaymentUseCase struct {
	payments     persistence.PaymentRepository
	transactions persistence.TransactionRepository
	lifecycle    usecase.LifecycleController
	idempotency  *IdempotencyHandler
	validator    *validation.Validator
	ids          coreport.IDGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.PaymentUseCase = (*PaymentUseCase)(nil)

// NewPaymentUseCase creates a new PaymentUseCase
func NewPaymentUseCase(
	payments persistence.PaymentRepository,
	transactions persistence.TransactionRepository,
	lifecycle usecase.LifecycleController,
	validator *validation.Validator,
	ids coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *PaymentUseCase {
	return &PaymentUseCase{
		payments:     payments,
		transactions: transactions,
		lifecycle:    lifecycle,
		idempotency:  NewIdempotencyHandler(payments),
		validator:    validator,
		ids:          ids,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// CreatePayment records a new attempt for an existing transaction.
// A repeated external reference returns the payment already recorded for it.
func (u *PaymentUseCase) CreatePayment(ctx context.Context, payment *entity.Payment) (*entity.Payment, error) {
	if err := u.validator.Struct(payment); err != nil {
		return nil, err
	}

	existing, found, err := u.idempotency.CheckIdempotency(ctx, payment.TransactionID, payment.ExternalRef)
	if err != nil {
		return nil, err
	}
	if found {
		u.logger.Info("Duplicate payment reference, returning recorded payment", map[string]any{
			"payment_id":   existing.ID,
			"external_ref": payment.ExternalRef,
		})
		return existing, nil
	}

	if _, err := u.transactions.GetByID(ctx, payment.TransactionID); err != nil {
		return nil, err
	}

	now := u.timeProvider.Now()
	if payment.ID == "" {
		payment.ID = u.ids.NewID()
	}
	if payment.Status == "" {
		payment.Status = entity.PaymentStatePending
	}
	payment.CreatedAt = now
	payment.UpdatedAt = now

	if err := u.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	u.logger.Info("Payment recorded", map[string]any{
		"payment_id":     payment.ID,
		"transaction_id": payment.TransactionID,
		"amount":         entity.FormatAmount(payment.Amount),
	})
	return payment, nil
}

// GetPayment returns one payment
func (u *PaymentUseCase) GetPayment(ctx context.Context, id string) (*entity.Payment, error) {
	if err := validation.RequireID("id", id); err != nil {
		return nil, err
	}
	return u.payments.GetByID(ctx, id)
}

// ListPayments returns the payments of one transaction, or all payments when transactionID is empty
func (u *PaymentUseCase) ListPayments(ctx context.Context, transactionID string, limit, offset int) ([]*entity.Payment, error) {
	if transactionID == "" {
		return u.payments.List(ctx, limit, offset)
	}

	all, err := u.payments.ListByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	offset = max(offset, 0)
	if offset >= len(all) {
		return []*entity.Payment{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// RecordOutcome applies a gateway result. The transaction moves first; the payment keeps
// its pending state when the lifecycle rejects the move. Repeating a recorded outcome is a no-op.
func (u *PaymentUseCase) RecordOutcome(ctx context.Context, id string, outcome entity.PaymentState) (*entity.Payment, error) {
	if err := validation.RequireID("id", id); err != nil {
		return nil, err
	}

	var move func(context.Context, string) (*entity.Transaction, error)
	switch outcome {
	case entity.PaymentStateSucceeded:
		move = u.lifecycle.MarkPaid
	case entity.PaymentStateFailed:
		move = u.lifecycle.MarkFailed
	case entity.PaymentStateExpired:
		move = u.lifecycle.MarkExpired
	default:
		return nil, errs.NewValidationError("payment status", "payment status must be one of: succeeded, failed, expired")
	}

	payment, err := u.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.IsFinal() {
		if payment.Status == outcome {
			return payment, nil
		}
		return nil, errs.NewTransitionError(payment.TransactionID, string(payment.Status), string(outcome), errs.ErrInvalidTransition)
	}

	if _, err := move(ctx, payment.TransactionID); err != nil {
		u.logger.Warn("Payment outcome rejected by transaction lifecycle", map[string]any{
			"payment_id":     payment.ID,
			"transaction_id": payment.TransactionID,
			"outcome":        outcome,
			"error":          err.Error(),
		})
		return nil, err
	}

	payment.Status = outcome
	payment.UpdatedAt = u.timeProvider.Now()
	if err := u.payments.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("transaction %s moved but payment %s was not updated: %w", payment.TransactionID, payment.ID, err)
	}
	return payment, nil
}

// DeletePayment removes a payment record; the transaction is left as is
func (u *PaymentUseCase) DeletePayment(ctx context.Context, id string) error {
	if err := validation.RequireID("id", id); err != nil {
		return err
	}
	return u.payments.Delete(ctx, id)
}
