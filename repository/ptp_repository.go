package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"gorm.io/gorm"
)

// PTPRepositoryImpl implements PTPRepository interface
type PTPRepositoryImpl struct {
	*BaseRepository[models.PTP, models.PTPFilter]
}

// NewPTPRepository creates a new PTP repository
func NewPTPRepository(db *gorm.DB) PTPRepository {
	return &PTPRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PTP, models.PTPFilter](db),
	}
}

func (r *PTPRepositoryImpl) Update(ctx context.Context, ptp *models.PTP) error {
	ptp.UpdatedAt = utils.UTCNow()
	return r.BaseRepository.Update(ctx, ptp)
}

func (r *PTPRepositoryImpl) Delete(ctx context.Context, id uint) (int64, error) {
	return r.BaseRepository.DeleteByIDs(ctx, id)
}

func (r *PTPRepositoryImpl) CountByStatus(ctx context.Context, filter models.PTPFilter) ([]GroupCount, error) {
	db := r.getDB(ctx)
	rows, err := groupCount(r.applyFilter(db.Model(&models.PTP{}), filter), "ptp.status")
	if err != nil {
		return nil, fmt.Errorf("failed to count PTPs by status: %w", err)
	}
	return rows, nil
}

func (r *PTPRepositoryImpl) ByFilter(ctx context.Context, filter models.PTPFilter, orderBy string, limit, offset int) ([]*models.PTP, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PTP{}), filter).Preload("Debtor")
	query = paginate(query.Order(normalizeOrder(orderBy, "ptp_date DESC, id DESC")), limit, offset)

	var rows []*models.PTP
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find PTPs by filter: %w", err)
	}
	return rows, nil
}

func (r *PTPRepositoryImpl) Count(ctx context.Context, filter models.PTPFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.PTP{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count PTPs: %w", err)
	}
	return count, nil
}

func (r *PTPRepositoryImpl) Exists(ctx context.Context, filter models.PTPFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PTPRepositoryImpl) applyFilter(query *gorm.DB, filter models.PTPFilter) *gorm.DB {
	query = query.Scopes(DebtorChildScope(filter.Scope, "ptp.debtor_id"))

	if filter.ID != nil {
		query = query.Where("ptp.id = ?", *filter.ID)
	}
	if filter.DebtorID != nil {
		query = query.Where("ptp.debtor_id = ?", *filter.DebtorID)
	}
	if filter.AgentID != nil {
		query = query.Where("ptp.agent_id = ?", *filter.AgentID)
	}
	if filter.Status != nil {
		query = query.Where("ptp.status = ?", *filter.Status)
	}
	if filter.DueAfter != nil {
		query = query.Where("ptp.ptp_date >= ?", *filter.DueAfter)
	}
	if filter.DueBefore != nil {
		query = query.Where("ptp.ptp_date < ?", *filter.DueBefore)
	}
	return query
}
