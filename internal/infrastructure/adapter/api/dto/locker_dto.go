package dto

import (
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// LockerRequest represents the API request for creating or updating a locker.
// Capacity is required on create and must match on update when given.
type LockerRequest struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	BasePrice int64  `json:"basePrice"`
	Location  string `json:"location"`
	DeviceID  string `json:"deviceId"`
	Capacity  int    `json:"capacity"`
}

// LockerListQuery filters the locker list
type LockerListQuery struct {
	ListQuery
	Status   string `form:"status" binding:"omitempty,oneof=available occupied"`
	Location string `form:"location"`
}

// LockerResponse is the API view of a locker
type LockerResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code,omitempty"`
	Name      string    `json:"name"`
	Size      string    `json:"size"`
	BasePrice int64     `json:"basePrice"`
	Location  string    `json:"location,omitempty"`
	DeviceID  string    `json:"deviceId,omitempty"`
	Capacity  int       `json:"capacity"`
	Available int       `json:"available"`
	Status    string    `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToEntity maps the request to a domain locker
func (r LockerRequest) ToEntity() *entity.Locker {
	return &entity.Locker{
		ID:        r.ID,
		Code:      r.Code,
		Name:      r.Name,
		Size:      entity.LockerSize(r.Size),
		BasePrice: r.BasePrice,
		Location:  r.Location,
		DeviceID:  r.DeviceID,
		Capacity:  r.Capacity,
	}
}

// NewLockerResponse maps a domain locker
func NewLockerResponse(l *entity.Locker) LockerResponse {
	return LockerResponse{
		ID:        l.ID,
		Code:      l.Code,
		Name:      l.Name,
		Size:      string(l.Size),
		BasePrice: l.BasePrice,
		Location:  l.Location,
		DeviceID:  l.DeviceID,
		Capacity:  l.Capacity,
		Available: l.Available,
		Status:    string(l.Status),
		Version:   l.Version,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
