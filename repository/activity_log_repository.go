package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/debt-collection-crm/models"
	"gorm.io/gorm"
)

// DownloadLogRepositoryImpl implements DownloadLogRepository interface
type DownloadLogRepositoryImpl struct {
	*BaseRepository[models.DownloadLog, models.ActivityLogFilter]
}

// NewDownloadLogRepository creates a new download log repository
func NewDownloadLogRepository(db *gorm.DB) DownloadLogRepository {
	return &DownloadLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DownloadLog, models.ActivityLogFilter](db),
	}
}

func (r *DownloadLogRepositoryImpl) ByFilter(ctx context.Context, filter models.ActivityLogFilter, orderBy string, limit, offset int) ([]*models.DownloadLog, error) {
	var rows []*models.DownloadLog
	query := paginate(applyActivityFilter(r.getDB(ctx).Model(&models.DownloadLog{}), filter).Order(normalizeOrder(orderBy, "timestamp DESC")), limit, offset)
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find download logs by filter: %w", err)
	}
	return rows, nil
}

func (r *DownloadLogRepositoryImpl) Count(ctx context.Context, filter models.ActivityLogFilter) (int64, error) {
	var count int64
	if err := applyActivityFilter(r.getDB(ctx).Model(&models.DownloadLog{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count download logs: %w", err)
	}
	return count, nil
}

func (r *DownloadLogRepositoryImpl) Exists(ctx context.Context, filter models.ActivityLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

// ExportLogRepositoryImpl implements ExportLogRepository interface
type ExportLogRepositoryImpl struct {
	*BaseRepository[models.ExportLog, models.ActivityLogFilter]
}

// NewExportLogRepository creates a new export log repository
func NewExportLogRepository(db *gorm.DB) ExportLogRepository {
	return &ExportLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ExportLog, models.ActivityLogFilter](db),
	}
}

func (r *ExportLogRepositoryImpl) ByFilter(ctx context.Context, filter models.ActivityLogFilter, orderBy string, limit, offset int) ([]*models.ExportLog, error) {
	var rows []*models.ExportLog
	query := paginate(applyActivityFilter(r.getDB(ctx).Model(&models.ExportLog{}), filter).Order(normalizeOrder(orderBy, "timestamp DESC")), limit, offset)
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find export logs by filter: %w", err)
	}
	return rows, nil
}

func (r *ExportLogRepositoryImpl) Count(ctx context.Context, filter models.ActivityLogFilter) (int64, error) {
	var count int64
	if err := applyActivityFilter(r.getDB(ctx).Model(&models.ExportLog{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count export logs: %w", err)
	}
	return count, nil
}

func (r *ExportLogRepositoryImpl) Exists(ctx context.Context, filter models.ActivityLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func applyActivityFilter(query *gorm.DB, filter models.ActivityLogFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.After != nil {
		query = query.Where("timestamp >= ?", *filter.After)
	}
	return query
}
