package model

import (
	"time"
)

// Locker represents the database model for lockers.
// The check constraints keep the counter pair inside its bounds even if a writer misbehaves.
type Locker struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	Code      *string   `gorm:"type:varchar(32);uniqueIndex"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Size      string    `gorm:"type:varchar(16);not null;default:medium"`
	BasePrice int64     `gorm:"not null;default:0"` // Minor units per hour
	Location  string    `gorm:"type:varchar(255);index"`
	DeviceID  string    `gorm:"type:varchar(64)"`
	Capacity  int       `gorm:"not null;check:chk_lockers_capacity,capacity > 0"`
	Available int       `gorm:"not null;check:chk_lockers_available,available BETWEEN 0 AND capacity"`
	Status    string    `gorm:"type:varchar(16);not null;index;check:chk_lockers_status,(available = 0 AND status = 'occupied') OR (available > 0 AND status = 'available')"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for Locker
func (Locker) TableName() string {
	return "lockers"
}
