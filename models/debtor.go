package models

import (
	"time"

	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Debtor is a ledger subject whose debt is being collected.
// Client holds the client's display name; ClientUserID is the stable link
// to the client account when one exists.
// DealStage, NextFollowupDate and CollectionUpdate mirror the latest follow-up.
type Debtor struct {
	ID               uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID             uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	Name             string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Phone            *string         `gorm:"type:varchar(32);index" json:"phone,omitempty"`
	Email            *string         `gorm:"type:varchar(255)" json:"email,omitempty"`
	IDNumber         *string         `gorm:"type:varchar(64)" json:"id_number,omitempty"`
	AccountNumber    *string         `gorm:"type:varchar(64);index" json:"account_number,omitempty"`
	BranchManager    *string         `gorm:"type:varchar(255)" json:"branch_manager,omitempty"`
	DebtAmount       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"debt_amount"`
	AssignedTo       *uint           `gorm:"index" json:"assigned_to,omitempty"`
	Client           string          `gorm:"type:varchar(255);not null;default:'';index" json:"client"`
	ClientUserID     *uint           `gorm:"index" json:"client_user_id,omitempty"`
	DealStage        string          `gorm:"type:varchar(8);not null;default:'0';index" json:"deal_stage"`
	NextFollowupDate *time.Time      `gorm:"index" json:"next_followup_date,omitempty"`
	CollectionUpdate *string         `gorm:"type:text" json:"collection_update,omitempty"`
	Tags             pq.StringArray  `gorm:"type:text[];not null;default:'{}'" json:"tags"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Agent      *User `gorm:"foreignKey:AssignedTo;references:ID;constraint:OnDelete:SET NULL" json:"agent,omitempty"`
	ClientUser *User `gorm:"foreignKey:ClientUserID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Debtor) TableName() string { return "debtors" }

func (d *Debtor) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	if d.DealStage == "" {
		d.DealStage = DealStageSelect
	}
	if d.Tags == nil {
		d.Tags = pq.StringArray{}
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = utils.UTCNow()
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// IsOverdue reports whether the next follow-up date lies before the given day
func (d *Debtor) IsOverdue(now time.Time) bool {
	return d.NextFollowupDate != nil && d.NextFollowupDate.Before(utils.StartOfDay(now))
}

// DebtorFilter represents filter criteria for debtor queries.
// Scope is always applied on top of the explicit fields.
type DebtorFilter struct {
	ID            *uint        `json:"id,omitempty"`
	IDs           []uint       `json:"ids,omitempty"`
	AssignedTo    *uint        `json:"assigned_to,omitempty"`
	Unassigned    *bool        `json:"unassigned,omitempty"`
	Client        *string      `json:"client,omitempty"`
	ClientUserID  *uint        `json:"client_user_id,omitempty"`
	DealStage     *string      `json:"deal_stage,omitempty"`
	OverdueBefore *time.Time   `json:"overdue_before,omitempty"`
	Phone         *string      `json:"phone,omitempty"`
	Search        *string      `json:"search,omitempty"`
	Scope         *AccessScope `json:"-"`
}
