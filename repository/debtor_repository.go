package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"gorm.io/gorm"
)

// DebtorRepositoryImpl implements DebtorRepository interface
type DebtorRepositoryImpl struct {
	*BaseRepository[models.Debtor, models.DebtorFilter]
}

// NewDebtorRepository creates a new debtor repository
func NewDebtorRepository(db *gorm.DB) DebtorRepository {
	return &DebtorRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Debtor, models.DebtorFilter](db),
	}
}

func (r *DebtorRepositoryImpl) Update(ctx context.Context, debtor *models.Debtor) error {
	debtor.UpdatedAt = utils.UTCNow()
	return r.BaseRepository.Update(ctx, debtor)
}

func (r *DebtorRepositoryImpl) UpdateFields(ctx context.Context, id uint, fields map[string]any) (bool, error) {
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = utils.UTCNow()
	}
	return r.BaseRepository.UpdateFields(ctx, id, fields)
}

func (r *DebtorRepositoryImpl) Delete(ctx context.Context, ids ...uint) (int64, error) {
	return r.BaseRepository.DeleteByIDs(ctx, ids...)
}

// Reassign sets assigned_to on every listed debtor; a nil agent unassigns them
func (r *DebtorRepositoryImpl) Reassign(ctx context.Context, ids []uint, agentID *uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var affected int64
	err := r.write(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.Debtor{}).
			Where("id IN ?", ids).
			Updates(map[string]any{"assigned_to": agentID, "updated_at": utils.UTCNow()})
		if res.Error != nil {
			return fmt.Errorf("failed to reassign debtors: %w", res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}

// UnassignAgent clears assigned_to for every debtor of an agent being removed
func (r *DebtorRepositoryImpl) UnassignAgent(ctx context.Context, agentID uint) (int64, error) {
	var affected int64
	err := r.write(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.Debtor{}).
			Where("assigned_to = ?", agentID).
			Updates(map[string]any{"assigned_to": nil, "updated_at": utils.UTCNow()})
		if res.Error != nil {
			return fmt.Errorf("failed to unassign agent %d: %w", agentID, res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}

// RenameClient keeps the denormalized client column in step with the linked client account
func (r *DebtorRepositoryImpl) RenameClient(ctx context.Context, clientUserID uint, fullName string) (int64, error) {
	var affected int64
	err := r.write(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.Debtor{}).
			Where("client_user_id = ?", clientUserID).
			Updates(map[string]any{"client": fullName, "updated_at": utils.UTCNow()})
		if res.Error != nil {
			return fmt.Errorf("failed to rename client %d: %w", clientUserID, res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}

// LinkClient attaches unlinked debtors carrying clientName to the client account
func (r *DebtorRepositoryImpl) LinkClient(ctx context.Context, clientName string, clientUserID uint) (int64, error) {
	var affected int64
	err := r.write(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.Debtor{}).
			Where("client_user_id IS NULL AND client = ?", clientName).
			Update("client_user_id", clientUserID)
		if res.Error != nil {
			return fmt.Errorf("failed to link client %d: %w", clientUserID, res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}

// ByPhone matches on the trailing nine digits so local and international formats agree
func (r *DebtorRepositoryImpl) ByPhone(ctx context.Context, phone string) (*models.Debtor, error) {
	digits := utils.DigitsOnly(phone)
	if len(digits) < 7 {
		return nil, nil
	}
	db := r.getDB(ctx)
	var debtor models.Debtor
	err := db.Model(&models.Debtor{}).
		Where("RIGHT(regexp_replace(debtors.phone, '[^0-9]', '', 'g'), 9) = RIGHT(?, 9)", digits).
		Order("id DESC").
		First(&debtor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find debtor by phone: %w", err)
	}
	return &debtor, nil
}

func (r *DebtorRepositoryImpl) ByFilter(ctx context.Context, filter models.DebtorFilter, orderBy string, limit, offset int) ([]*models.Debtor, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Debtor{}), filter)
	query = paginate(query.Order(normalizeOrder(orderBy, "debtors.id DESC")), limit, offset)

	var debtors []*models.Debtor
	if err := query.Find(&debtors).Error; err != nil {
		return nil, fmt.Errorf("failed to find debtors by filter: %w", err)
	}
	return debtors, nil
}

func (r *DebtorRepositoryImpl) Count(ctx context.Context, filter models.DebtorFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Debtor{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count debtors: %w", err)
	}
	return count, nil
}

func (r *DebtorRepositoryImpl) Exists(ctx context.Context, filter models.DebtorFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DebtorRepositoryImpl) applyFilter(query *gorm.DB, filter models.DebtorFilter) *gorm.DB {
	query = query.Scopes(DebtorScope(filter.Scope))

	if filter.ID != nil {
		query = query.Where("debtors.id = ?", *filter.ID)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("debtors.id IN ?", filter.IDs)
	}
	if filter.AssignedTo != nil {
		query = query.Where("debtors.assigned_to = ?", *filter.AssignedTo)
	}
	if utils.IsTrue(filter.Unassigned) {
		query = query.Where("debtors.assigned_to IS NULL")
	}
	if filter.Client != nil {
		query = query.Where("debtors.client = ?", *filter.Client)
	}
	if filter.ClientUserID != nil {
		query = query.Where("debtors.client_user_id = ?", *filter.ClientUserID)
	}
	if filter.DealStage != nil {
		query = query.Where("debtors.deal_stage = ?", *filter.DealStage)
	}
	if filter.OverdueBefore != nil {
		query = query.Where("debtors.next_followup_date < ?", *filter.OverdueBefore)
	}
	if filter.Phone != nil {
		query = query.Where("debtors.phone = ?", *filter.Phone)
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		like := "%" + strings.TrimSpace(*filter.Search) + "%"
		query = query.Where(
			"(debtors.name ILIKE ? OR debtors.phone ILIKE ? OR debtors.account_number ILIKE ? OR debtors.id_number ILIKE ?)",
			like, like, like, like,
		)
	}
	return query
}
