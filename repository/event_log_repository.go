package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/debt-collection-crm/models"
	"gorm.io/gorm"
)

// EventLogRepositoryImpl implements EventLogRepository interface
type EventLogRepositoryImpl struct {
	*BaseRepository[models.EventLog, models.EventLogFilter]
}

// NewEventLogRepository creates a new event log repository
func NewEventLogRepository(db *gorm.DB) EventLogRepository {
	return &EventLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.EventLog, models.EventLogFilter](db),
	}
}

func (r *EventLogRepositoryImpl) CountByUser(ctx context.Context, filter models.EventLogFilter) ([]GroupCount, error) {
	db := r.getDB(ctx)
	rows, err := groupCount(r.applyFilter(db.Model(&models.EventLog{}), filter), "event_logs.user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to count events by user: %w", err)
	}
	return rows, nil
}

func (r *EventLogRepositoryImpl) ByFilter(ctx context.Context, filter models.EventLogFilter, orderBy string, limit, offset int) ([]*models.EventLog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.EventLog{}), filter)
	query = paginate(query.Order(normalizeOrder(orderBy, "timestamp DESC, id DESC")), limit, offset)

	var rows []*models.EventLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find event logs by filter: %w", err)
	}
	return rows, nil
}

func (r *EventLogRepositoryImpl) Count(ctx context.Context, filter models.EventLogFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.EventLog{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count event logs: %w", err)
	}
	return count, nil
}

func (r *EventLogRepositoryImpl) Exists(ctx context.Context, filter models.EventLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *EventLogRepositoryImpl) applyFilter(query *gorm.DB, filter models.EventLogFilter) *gorm.DB {
	query = query.Scopes(DebtorChildScope(filter.Scope, "event_logs.debtor_id"))

	if filter.DebtorID != nil {
		query = query.Where("event_logs.debtor_id = ?", *filter.DebtorID)
	}
	if filter.UserID != nil {
		query = query.Where("event_logs.user_id = ?", *filter.UserID)
	}
	if filter.Action != nil {
		query = query.Where("event_logs.action = ?", *filter.Action)
	}
	if filter.After != nil {
		query = query.Where("event_logs.timestamp >= ?", *filter.After)
	}
	return query
}
