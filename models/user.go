// Package models contains domain entities for the debt-collection CRM
package models

import (
	"time"

	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles
const (
	RoleAdmin  = "admin"
	RoleAgent  = "agent"
	RoleClient = "client"
)

// IsValidRole reports whether role is one of the three access tiers
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAgent, RoleClient:
		return true
	}
	return false
}

// User is an authenticated person of the CRM: an admin, a collection agent
// or a client whose portfolio is being collected.
type User struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID          uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	FullName      string     `gorm:"type:varchar(255);not null;index" json:"full_name"`
	Email         string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash  string     `gorm:"type:varchar(255);not null" json:"-"`
	Role          string     `gorm:"type:varchar(20);not null;index" json:"role"`
	Phone         *string    `gorm:"type:varchar(32)" json:"phone,omitempty"`
	ClientCompany *string    `gorm:"type:varchar(255)" json:"client_company,omitempty"`
	IsActive      *bool      `gorm:"default:true;index" json:"is_active"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = utils.UTCNow()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = utils.UTCNow()
	}
	return nil
}

func (u *User) IsAdmin() bool  { return u.Role == RoleAdmin }
func (u *User) IsAgent() bool  { return u.Role == RoleAgent }
func (u *User) IsClient() bool { return u.Role == RoleClient }

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID       *uint   `json:"id,omitempty"`
	IDs      []uint  `json:"ids,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
