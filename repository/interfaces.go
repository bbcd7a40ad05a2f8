// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/shopspring/decimal"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// GroupCount is one row of a grouped count, keyed by the grouping column
type GroupCount struct {
	Key   string `gorm:"column:group_key" json:"key"`
	Count int64  `gorm:"column:total" json:"count"`
}

// UserRepository defines operations for CRM users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ClientByFullName(ctx context.Context, fullName string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) (int64, error)
}

// DebtorRepository defines operations for debtors
type DebtorRepository interface {
	Repository[models.Debtor, models.DebtorFilter]
	Update(ctx context.Context, debtor *models.Debtor) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) (bool, error)
	Delete(ctx context.Context, ids ...uint) (int64, error)
	Reassign(ctx context.Context, ids []uint, agentID *uint) (int64, error)
	UnassignAgent(ctx context.Context, agentID uint) (int64, error)
	RenameClient(ctx context.Context, clientUserID uint, fullName string) (int64, error)
	LinkClient(ctx context.Context, clientName string, clientUserID uint) (int64, error)
	ByPhone(ctx context.Context, phone string) (*models.Debtor, error)
}

// PaymentRepository defines operations for payments
type PaymentRepository interface {
	Repository[models.Payment, models.PaymentFilter]
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id uint) (int64, error)
	SumAmount(ctx context.Context, filter models.PaymentFilter) (decimal.Decimal, error)
}

// FollowUpRepository defines operations for follow-ups
type FollowUpRepository interface {
	Repository[models.FollowUp, models.FollowUpFilter]
	ReassignAgent(ctx context.Context, debtorID uint, agentID *uint) (int64, error)
	CountByAgent(ctx context.Context, filter models.FollowUpFilter) ([]GroupCount, error)
}

// PTPRepository defines operations for promises to pay
type PTPRepository interface {
	Repository[models.PTP, models.PTPFilter]
	Update(ctx context.Context, ptp *models.PTP) error
	Delete(ctx context.Context, id uint) (int64, error)
	CountByStatus(ctx context.Context, filter models.PTPFilter) ([]GroupCount, error)
}

// CollectionUpdateRepository defines operations for collection updates
type CollectionUpdateRepository interface {
	Repository[models.CollectionUpdate, models.CollectionUpdateFilter]
	CountByAgent(ctx context.Context, filter models.CollectionUpdateFilter) ([]GroupCount, error)
}

// EventLogRepository defines operations for debtor event logs
type EventLogRepository interface {
	Repository[models.EventLog, models.EventLogFilter]
	CountByUser(ctx context.Context, filter models.EventLogFilter) ([]GroupCount, error)
}

// CallLogRepository defines operations for telephony call logs
type CallLogRepository interface {
	Repository[models.CallLog, models.CallLogFilter]
	Upsert(ctx context.Context, call *models.CallLog) error
	CountByAgent(ctx context.Context, filter models.CallLogFilter) ([]GroupCount, error)
}

// DownloadLogRepository defines operations for server-side export logs
type DownloadLogRepository interface {
	Repository[models.DownloadLog, models.ActivityLogFilter]
}

// ExportLogRepository defines operations for client-reported export logs
type ExportLogRepository interface {
	Repository[models.ExportLog, models.ActivityLogFilter]
}
