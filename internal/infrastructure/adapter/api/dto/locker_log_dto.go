package dto

import (
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// CreateLockerLogRequest records a manual audit entry
type CreateLockerLogRequest struct {
	LockerID      string `json:"lockerId"`
	Action        string `json:"action"`
	TransactionID string `json:"transactionId"`
	UserID        string `json:"userId"`
	Note          string `json:"note"`
}

// CorrectLockerLogRequest amends an audit entry; empty fields are kept
type CorrectLockerLogRequest struct {
	Action        string `json:"action"`
	TransactionID string `json:"transactionId"`
	UserID        string `json:"userId"`
	Note          string `json:"note"`
}

// PurgeLockerLogsRequest deletes entries older than Before
type PurgeLockerLogsRequest struct {
	Before time.Time `json:"before"`
}

// LockerLogListQuery filters the audit trail
type LockerLogListQuery struct {
	ListQuery
	LockerID      string     `form:"lockerId"`
	TransactionID string     `form:"transactionId"`
	UserID        string     `form:"userId"`
	Action        string     `form:"action" binding:"omitempty,oneof=booked retrieved cancelled"`
	Since         *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Until         *time.Time `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`
}

// LockerLogStatsResponse counts audit entries per action over a window
type LockerLogStatsResponse struct {
	LockerID string         `json:"lockerId,omitempty"`
	UserID   string         `json:"userId,omitempty"`
	Since    *time.Time     `json:"since,omitempty"`
	Until    *time.Time     `json:"until,omitempty"`
	Counts   map[string]int `json:"counts"`
	Total    int            `json:"total"`
}

// NewLockerLogStatsResponse maps per-action counts for the queried window
func NewLockerLogStatsResponse(q LockerLogListQuery, counts entity.ActionCounts) LockerLogStatsResponse {
	resp := LockerLogStatsResponse{
		LockerID: q.LockerID,
		UserID:   q.UserID,
		Since:    q.Since,
		Until:    q.Until,
		Counts:   make(map[string]int, len(counts)),
	}
	for action, n := range counts {
		resp.Counts[string(action)] = n
		resp.Total += n
	}
	return resp
}

// LockerLogResponse is the API view of an audit entry
type LockerLogResponse struct {
	ID                 string    `json:"id"`
	LockerID           string    `json:"lockerId"`
	Action             string    `json:"action"`
	TransactionID      string    `json:"transactionId,omitempty"`
	UserID             string    `json:"userId,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	ResultingAvailable int       `json:"resultingAvailable"`
	ResultingStatus    string    `json:"resultingStatus"`
	Note               string    `json:"note,omitempty"`
}

// PurgeResponse reports how many entries a purge removed
type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

// ToEntity maps the request to a domain audit entry
func (r CreateLockerLogRequest) ToEntity() *entity.LockerLog {
	return &entity.LockerLog{
		LockerID:      r.LockerID,
		Action:        entity.LockerAction(r.Action),
		TransactionID: r.TransactionID,
		UserID:        r.UserID,
		Note:          r.Note,
	}
}

// ToEntity maps the request to a correction of the entry with the given id
func (r CorrectLockerLogRequest) ToEntity(id string) *entity.LockerLog {
	return &entity.LockerLog{
		ID:            id,
		Action:        entity.LockerAction(r.Action),
		TransactionID: r.TransactionID,
		UserID:        r.UserID,
		Note:          r.Note,
	}
}

// NewLockerLogResponse maps a domain audit entry
func NewLockerLogResponse(l *entity.LockerLog) LockerLogResponse {
	return LockerLogResponse{
		ID:                 l.ID,
		LockerID:           l.LockerID,
		Action:             string(l.Action),
		TransactionID:      l.TransactionID,
		UserID:             l.UserID,
		Timestamp:          l.Timestamp,
		ResultingAvailable: l.ResultingAvailable,
		ResultingStatus:    string(l.ResultingStatus),
		Note:               l.Note,
	}
}
