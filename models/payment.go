package models

import (
	"time"

	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is a single amount received against a debtor, backed by a proof of payment
type Payment struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	DebtorID        uint            `gorm:"not null;index" json:"debtor_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	PaymentDate     time.Time       `gorm:"not null;index" json:"payment_date"`
	UploadedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"uploaded_at"`
	PopURL          *string         `gorm:"type:text" json:"pop_url,omitempty"`
	PopThumbnailURL *string         `gorm:"type:text" json:"pop_thumbnail_url,omitempty"`
	Verified        *bool           `gorm:"not null;default:false;index" json:"verified"`
	Invoiced        *bool           `gorm:"not null;default:false" json:"invoiced"`
	UploadedBy      *uint           `gorm:"index" json:"uploaded_by,omitempty"`
	VerifiedBy      *uint           `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Debtor *Debtor `gorm:"foreignKey:DebtorID;references:ID;constraint:OnDelete:CASCADE" json:"debtor,omitempty"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.UploadedAt.IsZero() {
		p.UploadedAt = utils.UTCNow()
	}
	if p.Verified == nil {
		p.Verified = utils.ToPtr(false)
	}
	if p.Invoiced == nil {
		p.Invoiced = utils.ToPtr(false)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = utils.UTCNow()
	}
	return nil
}

func (p *Payment) IsVerified() bool { return utils.IsTrue(p.Verified) }

// PaymentFilter represents filter criteria for payment queries
type PaymentFilter struct {
	ID         *uint        `json:"id,omitempty"`
	DebtorID   *uint        `json:"debtor_id,omitempty"`
	DebtorIDs  []uint       `json:"debtor_ids,omitempty"`
	AgentID    *uint        `json:"agent_id,omitempty"`
	Verified   *bool        `json:"verified,omitempty"`
	PaidAfter  *time.Time   `json:"paid_after,omitempty"`
	PaidBefore *time.Time   `json:"paid_before,omitempty"`
	Scope      *AccessScope `json:"-"`
}
