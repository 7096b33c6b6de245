package model

import "time"

// SchemaVersion is one applied schema upgrade. The newest row by AppliedAt is the live version.
type SchemaVersion struct {
	Version     string    `gorm:"type:varchar(20);primaryKey"`
	FromVersion string    `gorm:"type:varchar(20);not null;default:''"`
	Description string    `gorm:"type:text;not null;default:''"`
	DurationMs  int64     `gorm:"not null;default:0"`
	AppliedAt   time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for the schema version model
func (SchemaVersion) TableName() string {
	return "schema_versions"
}
