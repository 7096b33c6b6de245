package dto

import (
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// DeviceRequest represents the API request for registering or updating an ESP32 controller
type DeviceRequest struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	DeviceIdentifier string `json:"deviceIdentifier"`
	LockerID         string `json:"lockerId"`
	Location         string `json:"location"`
	IPAddress        string `json:"ipAddress"`
	Port             int    `json:"port"`
}

// DeviceStatusRequest reports a heartbeat or a disconnect
type DeviceStatusRequest struct {
	Status string `json:"status"`
}

// DeviceResponse is the API view of a device
type DeviceResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	DeviceIdentifier string     `json:"deviceIdentifier"`
	LockerID         string     `json:"lockerId,omitempty"`
	Status           string     `json:"status"`
	Location         string     `json:"location,omitempty"`
	IPAddress        string     `json:"ipAddress,omitempty"`
	Port             int        `json:"port,omitempty"`
	LastOnline       *time.Time `json:"lastOnline,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ToEntity maps the request to a domain device
func (r DeviceRequest) ToEntity() *entity.Device {
	return &entity.Device{
		ID:               r.ID,
		Name:             r.Name,
		DeviceIdentifier: r.DeviceIdentifier,
		LockerID:         r.LockerID,
		Location:         r.Location,
		IPAddress:        r.IPAddress,
		Port:             r.Port,
	}
}

// NewDeviceResponse maps a domain device
func NewDeviceResponse(d *entity.Device) DeviceResponse {
	return DeviceResponse{
		ID:               d.ID,
		Name:             d.Name,
		DeviceIdentifier: d.DeviceIdentifier,
		LockerID:         d.LockerID,
		Status:           string(d.Status),
		Location:         d.Location,
		IPAddress:        d.IPAddress,
		Port:             d.Port,
		LastOnline:       d.LastOnline,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
