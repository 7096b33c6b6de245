package model

import (
	"time"
)

// LockerLog represents one audit entry
type LockerLog struct {
	ID                 string    `gorm:"primaryKey;type:varchar(64)"`
	LockerID           string    `gorm:"type:varchar(64);not null;index:idx_locker_logs_locker_time,priority:1"`
	Action             string    `gorm:"type:varchar(16);not null;index"`
	TransactionID      string    `gorm:"type:varchar(64);index"`
	UserID             string    `gorm:"type:varchar(64)"`
	Timestamp          time.Time `gorm:"not null;index:idx_locker_logs_locker_time,priority:2"`
	ResultingAvailable int       `gorm:"not null"`
	ResultingStatus    string    `gorm:"type:varchar(16)"`
	Note               string    `gorm:"type:text"`
}

// TableName specifies the table name for LockerLog
func (LockerLog) TableName() string {
	return "locker_logs"
}
