package dto

import (
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// CreatePaymentRequest records a payment attempt against a transaction.
// Gateways may send the amount in minor units or as a decimal string.
type CreatePaymentRequest struct {
	ID            string `json:"id"`
	TransactionID string `json:"transactionId"`
	Amount        int64  `json:"amount"`
	AmountDecimal string `json:"amountDecimal"`
	Method        string `json:"method"`
	ExternalRef   string `json:"externalRef"`
}

// PaymentOutcomeRequest carries the gateway result
type PaymentOutcomeRequest struct {
	Status string `json:"status"`
}

// PaymentListQuery filters the payment list
type PaymentListQuery struct {
	ListQuery
	TransactionID string `form:"transactionId"`
}

// PaymentResponse is the API view of a payment
type PaymentResponse struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	ExternalRef   string    `json:"externalRef,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ToEntity maps the request to a domain payment
func (r CreatePaymentRequest) ToEntity() (*entity.Payment, error) {
	amount := r.Amount
	if r.AmountDecimal != "" {
		parsed, err := entity.ParseAmount("amount", r.AmountDecimal)
		if err != nil {
			return nil, err
		}
		amount = parsed
	}
	return &entity.Payment{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		Amount:        amount,
		Method:        r.Method,
		ExternalRef:   r.ExternalRef,
	}, nil
}

// NewPaymentResponse maps a domain payment
func NewPaymentResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        string(p.Status),
		ExternalRef:   p.ExternalRef,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
