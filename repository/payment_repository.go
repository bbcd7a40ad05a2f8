package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRepositoryImpl implements PaymentRepository interface
type PaymentRepositoryImpl struct {
	*BaseRepository[models.Payment, models.PaymentFilter]
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &PaymentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Payment, models.PaymentFilter](db),
	}
}

func (r *PaymentRepositoryImpl) Update(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = utils.UTCNow()
	return r.BaseRepository.Update(ctx, payment)
}

func (r *PaymentRepositoryImpl) Delete(ctx context.Context, id uint) (int64, error) {
	return r.BaseRepository.DeleteByIDs(ctx, id)
}

func (r *PaymentRepositoryImpl) ByFilter(ctx context.Context, filter models.PaymentFilter, orderBy string, limit, offset int) ([]*models.Payment, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Payment{}), filter).Preload("Debtor")
	query = paginate(query.Order(normalizeOrder(orderBy, "payment_date DESC, id DESC")), limit, offset)

	var payments []*models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to find payments by filter: %w", err)
	}
	return payments, nil
}

func (r *PaymentRepositoryImpl) Count(ctx context.Context, filter models.PaymentFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Payment{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

// SumAmount totals every payment matching the filter, ignoring pagination
func (r *PaymentRepositoryImpl) SumAmount(ctx context.Context, filter models.PaymentFilter) (decimal.Decimal, error) {
	db := r.getDB(ctx)
	total := decimal.Zero
	row := r.applyFilter(db.Model(&models.Payment{}), filter).
		Select("COALESCE(SUM(payments.amount), 0)").
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}

func (r *PaymentRepositoryImpl) Exists(ctx context.Context, filter models.PaymentFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PaymentRepositoryImpl) applyFilter(query *gorm.DB, filter models.PaymentFilter) *gorm.DB {
	query = query.Scopes(DebtorChildScope(filter.Scope, "payments.debtor_id"))

	if filter.ID != nil {
		query = query.Where("payments.id = ?", *filter.ID)
	}
	if filter.DebtorID != nil {
		query = query.Where("payments.debtor_id = ?", *filter.DebtorID)
	}
	if len(filter.DebtorIDs) > 0 {
		query = query.Where("payments.debtor_id IN ?", filter.DebtorIDs)
	}
	if filter.AgentID != nil {
		query = query.Scopes(AssignedDebtorScope(*filter.AgentID, "payments.debtor_id"))
	}
	if filter.Verified != nil {
		query = query.Where("payments.verified = ?", *filter.Verified)
	}
	if filter.PaidAfter != nil {
		query = query.Where("payments.payment_date >= ?", *filter.PaidAfter)
	}
	if filter.PaidBefore != nil {
		query = query.Where("payments.payment_date < ?", *filter.PaidBefore)
	}
	return query
}
