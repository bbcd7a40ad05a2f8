package models

import (
	"time"

	"github.com/amirphl/debt-collection-crm/utils"
	"gorm.io/gorm"
)

// FollowUp is an append-only contact note. Its stage and next date are
// copied onto the debtor when it is written.
type FollowUp struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	DebtorID         uint       `gorm:"not null;index" json:"debtor_id"`
	AgentID          *uint      `gorm:"index" json:"agent_id,omitempty"`
	FollowUpDate     time.Time  `gorm:"not null;index" json:"follow_up_date"`
	Notes            string     `gorm:"type:text;not null;default:''" json:"notes"`
	DealStage        string     `gorm:"type:varchar(8);not null" json:"deal_stage"`
	NextFollowupDate *time.Time `json:"next_followup_date,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Debtor *Debtor `gorm:"foreignKey:DebtorID;references:ID;constraint:OnDelete:CASCADE" json:"debtor,omitempty"`
	Agent  *User   `gorm:"foreignKey:AgentID;references:ID;constraint:OnDelete:SET NULL" json:"agent,omitempty"`
}

func (FollowUp) TableName() string { return "follow_ups" }

func (f *FollowUp) BeforeCreate(tx *gorm.DB) error {
	if f.FollowUpDate.IsZero() {
		f.FollowUpDate = utils.UTCNow()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = utils.UTCNow()
	}
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// FollowUpFilter represents filter criteria for follow-up queries
type FollowUpFilter struct {
	DebtorID      *uint        `json:"debtor_id,omitempty"`
	AgentID       *uint        `json:"agent_id,omitempty"`
	DealStage     *string      `json:"deal_stage,omitempty"`
	CreatedAfter  *time.Time   `json:"created_after,omitempty"`
	CreatedBefore *time.Time   `json:"created_before,omitempty"`
	Scope         *AccessScope `json:"-"`
}
