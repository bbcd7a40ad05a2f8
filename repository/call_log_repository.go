package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CallLogRepositoryImpl implements CallLogRepository interface
type CallLogRepositoryImpl struct {
	*BaseRepository[models.CallLog, models.CallLogFilter]
}

// NewCallLogRepository creates a new call log repository
func NewCallLogRepository(db *gorm.DB) CallLogRepository {
	return &CallLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CallLog, models.CallLogFilter](db),
	}
}

// callLogUpsertColumns are overwritten when a call_sid is reported again.
// created_at is kept from the first report.
var callLogUpsertColumns = []string{
	"event_type", "call_group", "direction",
	"agent_number", "agent_name", "receiver_number", "receiver_name",
	"source_number", "destination_number", "dial_whom_number",
	"status", "call_duration", "start_time", "end_time",
	"call_recording_url", "coins", "debtor_id", "updated_at",
}

// Upsert inserts the call or overwrites the existing row with the same call_sid
func (r *CallLogRepositoryImpl) Upsert(ctx context.Context, call *models.CallLog) error {
	call.UpdatedAt = utils.UTCNow()
	return r.write(ctx, func(db *gorm.DB) error {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "call_sid"}},
			DoUpdates: clause.AssignmentColumns(callLogUpsertColumns),
		}).Create(call).Error
		if err != nil {
			return fmt.Errorf("failed to upsert call log %s: %w", call.CallSID, err)
		}
		return nil
	})
}

func (r *CallLogRepositoryImpl) CountByAgent(ctx context.Context, filter models.CallLogFilter) ([]GroupCount, error) {
	db := r.getDB(ctx)
	rows, err := groupCount(r.applyFilter(db.Model(&models.CallLog{}), filter), "call_logs.agent_name")
	if err != nil {
		return nil, fmt.Errorf("failed to count calls by agent: %w", err)
	}
	return rows, nil
}

func (r *CallLogRepositoryImpl) ByFilter(ctx context.Context, filter models.CallLogFilter, orderBy string, limit, offset int) ([]*models.CallLog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CallLog{}), filter)
	query = paginate(query.Order(normalizeOrder(orderBy, "start_time DESC")), limit, offset)

	var rows []*models.CallLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find call logs by filter: %w", err)
	}
	return rows, nil
}

func (r *CallLogRepositoryImpl) Count(ctx context.Context, filter models.CallLogFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.CallLog{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count call logs: %w", err)
	}
	return count, nil
}

func (r *CallLogRepositoryImpl) Exists(ctx context.Context, filter models.CallLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CallLogRepositoryImpl) applyFilter(query *gorm.DB, filter models.CallLogFilter) *gorm.DB {
	if filter.CallSID != nil {
		query = query.Where("call_logs.call_sid = ?", *filter.CallSID)
	}
	if filter.AgentNumber != nil {
		query = query.Where("call_logs.agent_number = ?", *filter.AgentNumber)
	}
	if filter.DebtorID != nil {
		query = query.Where("call_logs.debtor_id = ?", *filter.DebtorID)
	}
	if filter.Status != nil {
		query = query.Where("call_logs.status = ?", *filter.Status)
	}
	if filter.StartedAfter != nil {
		query = query.Where("call_logs.start_time >= ?", *filter.StartedAfter)
	}
	return query
}
