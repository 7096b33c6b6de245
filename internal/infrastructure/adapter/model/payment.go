package model

import (
	"time"
)

// Payment represents one payment attempt for a transaction
type Payment struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)"`
	TransactionID string    `gorm:"type:varchar(64);not null;index"`
	Amount        int64     `gorm:"not null;check:chk_payments_amount,amount > 0"`
	Method        string    `gorm:"type:varchar(32);not null"`
	Status        string    `gorm:"type:varchar(16);not null;default:pending"`
	ExternalRef   string    `gorm:"type:varchar(128);index"`
	CreatedAt     time.Time `gorm:"not null;index"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}
