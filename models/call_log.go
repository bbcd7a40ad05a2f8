package models

import (
	"time"

	"github.com/amirphl/debt-collection-crm/utils"
	"gorm.io/gorm"
)

// CallLog is one telephony call reported by the WebRTC provider's webhook.
// CallSID is the provider's identifier and the upsert key.
type CallLog struct {
	ID                uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CallSID           string     `gorm:"column:call_sid;type:varchar(128);uniqueIndex;not null" json:"call_sid"`
	EventType         *string    `gorm:"type:varchar(64)" json:"event_type,omitempty"`
	CallGroup         *string    `gorm:"type:varchar(128)" json:"call_group,omitempty"`
	Direction         *string    `gorm:"type:varchar(32)" json:"direction,omitempty"`
	AgentNumber       *string    `gorm:"type:varchar(32);index" json:"agent_number,omitempty"`
	AgentName         *string    `gorm:"type:varchar(255)" json:"agent_name,omitempty"`
	ReceiverNumber    *string    `gorm:"type:varchar(32);index" json:"receiver_number,omitempty"`
	ReceiverName      *string    `gorm:"type:varchar(255)" json:"receiver_name,omitempty"`
	SourceNumber      *string    `gorm:"type:varchar(32)" json:"source_number,omitempty"`
	DestinationNumber *string    `gorm:"type:varchar(32)" json:"destination_number,omitempty"`
	DialWhomNumber    *string    `gorm:"type:varchar(32)" json:"dial_whom_number,omitempty"`
	Status            *string    `gorm:"type:varchar(32);index" json:"status,omitempty"`
	CallDuration      int        `gorm:"not null;default:0" json:"call_duration"`
	StartTime         time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	CallRecordingURL  *string    `gorm:"type:text" json:"call_recording_url,omitempty"`
	Coins             int        `gorm:"not null;default:0" json:"coins"`
	DebtorID          *uint      `gorm:"index" json:"debtor_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CallLog) TableName() string { return "call_logs" }

func (c *CallLog) BeforeCreate(tx *gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	c.UpdatedAt = utils.UTCNow()
	return nil
}

// CallLogFilter represents filter criteria for call log queries
type CallLogFilter struct {
	CallSID      *string    `json:"call_sid,omitempty"`
	AgentNumber  *string    `json:"agent_number,omitempty"`
	DebtorID     *uint      `json:"debtor_id,omitempty"`
	Status       *string    `json:"status,omitempty"`
	StartedAfter *time.Time `json:"started_after,omitempty"`
}
