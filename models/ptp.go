package models

import (
	"time"

	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PTP statuses
const (
	PTPStatusPending          = "pending"
	PTPStatusPartiallyHonored = "partially_honored"
	PTPStatusFullyHonored     = "fully_honored"
)

func IsValidPTPStatus(status string) bool {
	switch status {
	case PTPStatusPending, PTPStatusPartiallyHonored, PTPStatusFullyHonored:
		return true
	}
	return false
}

// PTP is a promise to pay logged by an agent.
// TotalDebt is the debtor's debt at the moment the promise was made.
type PTP struct {
	ID         uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	DebtorID   uint            `gorm:"not null;index" json:"debtor_id"`
	AgentID    *uint           `gorm:"index" json:"agent_id,omitempty"`
	PTPDate    time.Time       `gorm:"column:ptp_date;not null;index" json:"ptp_date"`
	PTPAmount  decimal.Decimal `gorm:"column:ptp_amount;type:numeric(14,2);not null" json:"ptp_amount"`
	TotalDebt  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_debt"`
	Status     string          `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	AmountPaid decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"amount_paid"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Debtor *Debtor `gorm:"foreignKey:DebtorID;references:ID;constraint:OnDelete:CASCADE" json:"debtor,omitempty"`
	Agent  *User   `gorm:"foreignKey:AgentID;references:ID;constraint:OnDelete:SET NULL" json:"agent,omitempty"`
}

func (PTP) TableName() string { return "ptp" }

func (p *PTP) BeforeCreate(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = PTPStatusPending
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// PTPFilter represents filter criteria for PTP queries
type PTPFilter struct {
	ID        *uint        `json:"id,omitempty"`
	DebtorID  *uint        `json:"debtor_id,omitempty"`
	AgentID   *uint        `json:"agent_id,omitempty"`
	Status    *string      `json:"status,omitempty"`
	DueAfter  *time.Time   `json:"due_after,omitempty"`
	DueBefore *time.Time   `json:"due_before,omitempty"`
	Scope     *AccessScope `json:"-"`
}
