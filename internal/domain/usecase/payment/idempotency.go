package payment

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
)

// IdempotencyHandler detects gateway retries that resend a payment already recorded
type IdempotencyHandler struct {
	payments persistence.PaymentRepository
}

// NewIdempotencyHandler creates a new IdempotencyHandler
func NewIdempotencyHandler(payments persistence.PaymentRepository) *IdempotencyHandler {
	return &IdempotencyHandler{payments: payments}
}

// CheckIdempotency looks for a payment of the transaction with the same external reference.
// Returns the payment, a boolean indicating if it was found, and any error.
// An empty reference never matches.
func (h *IdempotencyHandler) CheckIdempotency(
	ctx context.Context,
	transactionID string,
	externalRef string,
) (*entity.Payment, bool, error) {
	if externalRef == "" {
		return nil, false, nil
	}

	payments, err := h.payments.ListByTransaction(ctx, transactionID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check existing payments: %w", err)
	}

	for _, p := range payments {
		if p.ExternalRef == externalRef {
			return p, true, nil
		}
	}
	return nil, false, nil
}
