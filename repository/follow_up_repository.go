package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"gorm.io/gorm"
)

// FollowUpRepositoryImpl implements FollowUpRepository interface
type FollowUpRepositoryImpl struct {
	*BaseRepository[models.FollowUp, models.FollowUpFilter]
}

// NewFollowUpRepository creates a new follow-up repository
func NewFollowUpRepository(db *gorm.DB) FollowUpRepository {
	return &FollowUpRepositoryImpl{
		BaseRepository: NewBaseRepository[models.FollowUp, models.FollowUpFilter](db),
	}
}

// ReassignAgent moves a debtor's follow-up history to its new agent
func (r *FollowUpRepositoryImpl) ReassignAgent(ctx context.Context, debtorID uint, agentID *uint) (int64, error) {
	var affected int64
	err := r.write(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.FollowUp{}).
			Where("debtor_id = ?", debtorID).
			Updates(map[string]any{"agent_id": agentID, "updated_at": utils.UTCNow()})
		if res.Error != nil {
			return fmt.Errorf("failed to reassign follow-ups of debtor %d: %w", debtorID, res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}

func (r *FollowUpRepositoryImpl) CountByAgent(ctx context.Context, filter models.FollowUpFilter) ([]GroupCount, error) {
	db := r.getDB(ctx)
	rows, err := groupCount(r.applyFilter(db.Model(&models.FollowUp{}), filter), "follow_ups.agent_id")
	if err != nil {
		return nil, fmt.Errorf("failed to count follow-ups by agent: %w", err)
	}
	return rows, nil
}

func (r *FollowUpRepositoryImpl) ByFilter(ctx context.Context, filter models.FollowUpFilter, orderBy string, limit, offset int) ([]*models.FollowUp, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.FollowUp{}), filter).Preload("Debtor")
	query = paginate(query.Order(normalizeOrder(orderBy, "follow_up_date DESC, id DESC")), limit, offset)

	var rows []*models.FollowUp
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find follow-ups by filter: %w", err)
	}
	return rows, nil
}

func (r *FollowUpRepositoryImpl) Count(ctx context.Context, filter models.FollowUpFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.FollowUp{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count follow-ups: %w", err)
	}
	return count, nil
}

func (r *FollowUpRepositoryImpl) Exists(ctx context.Context, filter models.FollowUpFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *FollowUpRepositoryImpl) applyFilter(query *gorm.DB, filter models.FollowUpFilter) *gorm.DB {
	query = query.Scopes(DebtorChildScope(filter.Scope, "follow_ups.debtor_id"))

	if filter.DebtorID != nil {
		query = query.Where("follow_ups.debtor_id = ?", *filter.DebtorID)
	}
	if filter.AgentID != nil {
		query = query.Where("follow_ups.agent_id = ?", *filter.AgentID)
	}
	if filter.DealStage != nil {
		query = query.Where("follow_ups.deal_stage = ?", *filter.DealStage)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("follow_ups.follow_up_date >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("follow_ups.follow_up_date < ?", *filter.CreatedBefore)
	}
	return query
}
