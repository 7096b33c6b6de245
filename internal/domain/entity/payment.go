package entity

import "time"

// PaymentState is the gateway outcome recorded on a payment
type PaymentState string

// PaymentState constants
const (
	PaymentStatePending   PaymentState = "pending"
	PaymentStateSucceeded PaymentState = "succeeded"
	PaymentStateFailed    PaymentState = "failed"
	PaymentStateExpired   PaymentState = "expired"
)

// Payment is a payment attempt for a transaction
type Payment struct {
	ID            string
	TransactionID string       `validate:"required" label:"transaction id"`
	Amount        int64        `validate:"gt=0" label:"payment amount"` // Minor units
	Method        string       `validate:"required" label:"payment method"`
	Status        PaymentState `validate:"omitempty,oneof=pending succeeded failed expired" label:"payment status"`
	ExternalRef   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsFinal reports whether the gateway already reported an outcome
func (p *Payment) IsFinal() bool {
	return p.Status != PaymentStatePending && p.Status != ""
}
