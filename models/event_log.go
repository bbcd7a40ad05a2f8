package models

import (
	"encoding/json"
	"time"

	"github.com/amirphl/debt-collection-crm/utils"
	"gorm.io/gorm"
)

// Event log actions
const (
	EventActionCallDebtor   = "call_debtor"
	EventActionSendSMS      = "send_sms"
	EventActionSendEmail    = "send_email"
	EventActionOpenWhatsApp = "open_whatsapp"
	EventActionViewDebtor   = "view_debtor"
)

// EventLog is an append-only audit entry of an outreach or UI action on a debtor
type EventLog struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	DebtorID  *uint           `gorm:"index" json:"debtor_id,omitempty"`
	UserID    *uint           `gorm:"index" json:"user_id,omitempty"`
	UserRole  string          `gorm:"type:varchar(20);not null" json:"user_role"`
	Action    string          `gorm:"type:varchar(64);not null;index" json:"action"`
	Details   json.RawMessage `gorm:"type:jsonb" json:"details,omitempty"`
	Timestamp time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"timestamp"`

	Debtor *Debtor `gorm:"foreignKey:DebtorID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (EventLog) TableName() string { return "event_logs" }

func (e *EventLog) BeforeCreate(tx *gorm.DB) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = utils.UTCNow()
	}
	return nil
}

// EventLogFilter represents filter criteria for event log queries
type EventLogFilter struct {
	DebtorID *uint        `json:"debtor_id,omitempty"`
	UserID   *uint        `json:"user_id,omitempty"`
	Action   *string      `json:"action,omitempty"`
	After    *time.Time   `json:"after,omitempty"`
	Scope    *AccessScope `json:"-"`
}
