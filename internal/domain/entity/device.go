package entity

import "time"

// DeviceStatus is the last known connectivity of an ESP32 controller
type DeviceStatus string

// DeviceStatus constants
const (
	DeviceOnline  DeviceStatus = "online"
	DeviceOffline DeviceStatus = "offline"
)

// Device is an ESP32 controller driving a locker's lock
type Device struct {
	ID               string
	Name             string `validate:"required" label:"name"`
	DeviceIdentifier string `validate:"required" label:"device identifier"`
	LockerID         string
	Status           DeviceStatus `validate:"omitempty,oneof=online offline" label:"status"`
	Location         string
	IPAddress        string `validate:"omitempty,ip" label:"ip address"`
	Port             int    `validate:"gte=0,lte=65535" label:"port"`
	LastOnline       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
