package dto

import (
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// BookingRequest represents the API request for booking a locker unit
type BookingRequest struct {
	LockerID      string `json:"lockerId"`
	UserID        string `json:"userId"`
	Duration      int    `json:"duration"`
	PaymentMethod string `json:"paymentMethod"`
}

// CheckoutByCodeRequest carries the retrieval code typed at the locker
type CheckoutByCodeRequest struct {
	AccessCode string `json:"accessCode"`
}

// TransactionListQuery filters the transaction list
type TransactionListQuery struct {
	ListQuery
	LockerID      string `form:"lockerId"`
	UserID        string `form:"userId"`
	PaymentStatus string `form:"paymentStatus" binding:"omitempty,oneof=pending paid failed expired"`
}

// TransactionResponse represents the API view of a rental transaction
type TransactionResponse struct {
	ID            string     `json:"id"`
	LockerID      string     `json:"lockerId"`
	UserID        string     `json:"userId"`
	PaymentStatus string     `json:"paymentStatus"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Duration      int        `json:"duration"`
	TotalPrice    int64      `json:"totalPrice"`
	AccessCode    string     `json:"accessCode,omitempty"`
	CheckedOut    bool       `json:"checkedOut"`
	Released      bool       `json:"released"`
	State         string     `json:"state"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	CheckedOutAt  *time.Time `json:"checkedOutAt,omitempty"`
	ReleasedAt    *time.Time `json:"releasedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Version       int64      `json:"version"`
}

// ToEntity maps the request to a domain booking request
func (r BookingRequest) ToEntity() entity.BookingRequest {
	return entity.BookingRequest{
		LockerID:      r.LockerID,
		UserID:        r.UserID,
		Duration:      r.Duration,
		PaymentMethod: r.PaymentMethod,
	}
}

// NewTransactionResponse maps a domain transaction
func NewTransactionResponse(tx *entity.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:            tx.ID,
		LockerID:      tx.LockerID,
		UserID:        tx.UserID,
		PaymentStatus: string(tx.PaymentStatus),
		PaymentMethod: tx.PaymentMethod,
		Duration:      tx.Duration,
		TotalPrice:    tx.TotalPrice,
		AccessCode:    tx.AccessCode,
		CheckedOut:    tx.CheckedOut,
		Released:      tx.Released,
		State:         tx.State(),
		CheckedOutAt:  tx.CheckedOutAt,
		ReleasedAt:    tx.ReleasedAt,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
		Version:       tx.Version,
	}
	if !tx.ExpiresAt.IsZero() {
		expires := tx.ExpiresAt
		resp.ExpiresAt = &expires
	}
	return resp
}
