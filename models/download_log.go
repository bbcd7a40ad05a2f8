package models

import (
	"time"

	"github.com/amirphl/debt-collection-crm/utils"
	"gorm.io/gorm"
)

// Export actions
const (
	ExportActionCSV  = "export_csv"
	ExportActionXLSX = "export_xlsx"
)

// DownloadLog records a server-side export produced for a user
type DownloadLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Action    string    `gorm:"type:varchar(64);not null" json:"action"`
	Details   string    `gorm:"type:text;not null" json:"details"`
	Timestamp time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"timestamp"`
}

func (DownloadLog) TableName() string { return "download_logs" }

func (d *DownloadLog) BeforeCreate(tx *gorm.DB) error {
	if d.Timestamp.IsZero() {
		d.Timestamp = utils.UTCNow()
	}
	return nil
}

// ExportLog records an export action reported by a client application
type ExportLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Action    string    `gorm:"type:varchar(64);not null" json:"action"`
	Details   string    `gorm:"type:text;not null" json:"details"`
	Timestamp time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"timestamp"`
}

func (ExportLog) TableName() string { return "export_logs" }

func (e *ExportLog) BeforeCreate(tx *gorm.DB) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = utils.UTCNow()
	}
	return nil
}

// ActivityLogFilter filters download and export logs
type ActivityLogFilter struct {
	UserID *uint      `json:"user_id,omitempty"`
	Action *string    `json:"action,omitempty"`
	After  *time.Time `json:"after,omitempty"`
}
