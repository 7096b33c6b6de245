package model

import (
	"time"
)

// Transaction represents the database model for locker rentals
type Transaction struct {
	ID            string     `gorm:"primaryKey;type:varchar(64)"`
	LockerID      string     `gorm:"type:varchar(64);not null;index:idx_transactions_locker_released,priority:1"`
	UserID        string     `gorm:"type:varchar(64);not null;index"`
	PaymentStatus string     `gorm:"type:varchar(16);not null;index:idx_transactions_overdue,priority:1"`
	PaymentMethod string     `gorm:"type:varchar(32)"`
	Duration      int        `gorm:"not null;default:0"`
	TotalPrice    int64      `gorm:"not null;default:0"`
	AccessCode    *string    `gorm:"type:varchar(16);uniqueIndex"`
	CheckedOut    bool       `gorm:"not null;default:false"`
	Released      bool       `gorm:"not null;default:false;index:idx_transactions_locker_released,priority:2"`
	ExpiresAt     *time.Time `gorm:"index:idx_transactions_overdue,priority:2"`
	CheckedOutAt  *time.Time
	ReleasedAt    *time.Time
	CreatedAt     time.Time `gorm:"not null;index"`
	UpdatedAt     time.Time `gorm:"not null"`
	Version       int64     `gorm:"not null;default:1"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
