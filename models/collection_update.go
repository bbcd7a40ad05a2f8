package models

import (
	"time"

	"github.com/amirphl/debt-collection-crm/utils"
	"gorm.io/gorm"
)

// CollectionUpdate is a dated free-text note on a debtor's collection progress
type CollectionUpdate struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DebtorID        uint      `gorm:"not null;index" json:"debtor_id"`
	AgentID         *uint     `gorm:"index" json:"agent_id,omitempty"`
	UpdateDate      time.Time `gorm:"not null;index" json:"update_date"`
	CollectionNotes string    `gorm:"type:text;not null" json:"collection_notes"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Debtor *Debtor `gorm:"foreignKey:DebtorID;references:ID;constraint:OnDelete:CASCADE" json:"debtor,omitempty"`
	Agent  *User   `gorm:"foreignKey:AgentID;references:ID;constraint:OnDelete:SET NULL" json:"agent,omitempty"`
}

func (CollectionUpdate) TableName() string { return "collection_updates" }

func (c *CollectionUpdate) BeforeCreate(tx *gorm.DB) error {
	if c.UpdateDate.IsZero() {
		c.UpdateDate = utils.UTCNow()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// CollectionUpdateFilter represents filter criteria for collection update queries
type CollectionUpdateFilter struct {
	DebtorID      *uint        `json:"debtor_id,omitempty"`
	AgentID       *uint        `json:"agent_id,omitempty"`
	UpdatedAfter  *time.Time   `json:"updated_after,omitempty"`
	UpdatedBefore *time.Time   `json:"updated_before,omitempty"`
	Scope         *AccessScope `json:"-"`
}
