package model

import (
	"time"
)

// Device represents an ESP32 controller
type Device struct {
	ID               string `gorm:"primaryKey;type:varchar(64)"`
	Name             string `gorm:"type:varchar(255);not null"`
	DeviceIdentifier string `gorm:"type:varchar(128);not null;uniqueIndex"`
	LockerID         string `gorm:"type:varchar(64);index"`
	Status           string `gorm:"type:varchar(16);not null;default:offline"`
	Location         string `gorm:"type:varchar(255)"`
	IPAddress        string `gorm:"type:varchar(64)"`
	Port             int
	LastOnline       *time.Time
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName specifies the table name for Device
func (Device) TableName() string {
	return "esp32_devices"
}
