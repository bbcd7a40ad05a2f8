package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/debt-collection-crm/models"
	"gorm.io/gorm"
)

// CollectionUpdateRepositoryImpl implements CollectionUpdateRepository interface
type CollectionUpdateRepositoryImpl struct {
	*BaseRepository[models.CollectionUpdate, models.CollectionUpdateFilter]
}

// NewCollectionUpdateRepository creates a new collection update repository
func NewCollectionUpdateRepository(db *gorm.DB) CollectionUpdateRepository {
	return &CollectionUpdateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CollectionUpdate, models.CollectionUpdateFilter](db),
	}
}

func (r *CollectionUpdateRepositoryImpl) CountByAgent(ctx context.Context, filter models.CollectionUpdateFilter) ([]GroupCount, error) {
	db := r.getDB(ctx)
	rows, err := groupCount(r.applyFilter(db.Model(&models.CollectionUpdate{}), filter), "collection_updates.agent_id")
	if err != nil {
		return nil, fmt.Errorf("failed to count collection updates by agent: %w", err)
	}
	return rows, nil
}

func (r *CollectionUpdateRepositoryImpl) ByFilter(ctx context.Context, filter models.CollectionUpdateFilter, orderBy string, limit, offset int) ([]*models.CollectionUpdate, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CollectionUpdate{}), filter).Preload("Debtor")
	query = paginate(query.Order(normalizeOrder(orderBy, "update_date DESC, id DESC")), limit, offset)

	var rows []*models.CollectionUpdate
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find collection updates by filter: %w", err)
	}
	return rows, nil
}

func (r *CollectionUpdateRepositoryImpl) Count(ctx context.Context, filter models.CollectionUpdateFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.CollectionUpdate{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count collection updates: %w", err)
	}
	return count, nil
}

func (r *CollectionUpdateRepositoryImpl) Exists(ctx context.Context, filter models.CollectionUpdateFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CollectionUpdateRepositoryImpl) applyFilter(query *gorm.DB, filter models.CollectionUpdateFilter) *gorm.DB {
	query = query.Scopes(DebtorChildScope(filter.Scope, "collection_updates.debtor_id"))

	if filter.DebtorID != nil {
		query = query.Where("collection_updates.debtor_id = ?", *filter.DebtorID)
	}
	if filter.AgentID != nil {
		query = query.Where("collection_updates.agent_id = ?", *filter.AgentID)
	}
	if filter.UpdatedAfter != nil {
		query = query.Where("collection_updates.update_date >= ?", *filter.UpdatedAfter)
	}
	if filter.UpdatedBefore != nil {
		query = query.Where("collection_updates.update_date < ?", *filter.UpdatedBefore)
	}
	return query
}
