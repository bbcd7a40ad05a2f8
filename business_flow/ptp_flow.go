package businessflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
	"go.uber.org/zap"
)

// PTPFlow handles promises to pay
type PTPFlow interface {
	ListDebtorPTPs(ctx context.Context, userID, debtorID uint) ([]dto.PTPDTO, error)
	CreatePTP(ctx context.Context, userID, debtorID uint, req *dto.CreatePTPRequest) (*dto.PTPDTO, error)
	UpdatePTP(ctx context.Context, userID, ptpID uint, req *dto.UpdatePTPRequest) (*dto.PTPDTO, error)
	DeletePTP(ctx context.Context, userID, ptpID uint) error
	ListPTPs(ctx context.Context, userID uint, req *dto.ListPTPsRequest) (*dto.ListPTPsResponse, error)
}

// PTPFlowImpl implements the PTP business flow
type PTPFlowImpl struct {
	userRepo   repository.UserRepository
	debtorRepo repository.DebtorRepository
	ptpRepo    repository.PTPRepository
	now        func() time.Time
}

func NewPTPFlow(
	userRepo repository.UserRepository,
	debtorRepo repository.DebtorRepository,
	ptpRepo repository.PTPRepository,
) PTPFlow {
	return &PTPFlowImpl{
		userRepo:   userRepo,
		debtorRepo: debtorRepo,
		ptpRepo:    ptpRepo,
		now:        utils.UTCNow,
	}
}

func (f *PTPFlowImpl) ListDebtorPTPs(ctx context.Context, userID, debtorID uint) ([]dto.PTPDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	debtor, err := visibleDebtor(ctx, f.debtorRepo, scope, debtorID)
	if err != nil {
		return nil, err
	}
	rows, err := f.ptpRepo.ByFilter(ctx, models.PTPFilter{DebtorID: &debtor.ID}, "", 0, 0)
	if err != nil {
		return nil, err
	}
	return ptpDTOs(rows), nil
}

// CreatePTP logs a pending promise and snapshots the debtor's current debt
func (f *PTPFlowImpl) CreatePTP(ctx context.Context, userID, debtorID uint, req *dto.CreatePTPRequest) (*dto.PTPDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	debtor, err := writableDebtor(ctx, f.debtorRepo, scope, debtorID)
	if err != nil {
		return nil, err
	}
	if !req.PTPAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	due, err := utils.ParseDate(strings.TrimSpace(req.PTPDate))
	if err != nil {
		return nil, ErrInvalidDate
	}

	ptp := &models.PTP{
		DebtorID:  debtor.ID,
		AgentID:   utils.ToPtr(scope.UserID),
		PTPDate:   due,
		PTPAmount: req.PTPAmount,
		TotalDebt: debtor.DebtAmount,
		Status:    models.PTPStatusPending,
	}
	if err := f.ptpRepo.Save(ctx, ptp); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("ptp recorded",
		zap.Uint("ptp_id", ptp.ID),
		zap.Uint("debtor_id", debtor.ID),
		zap.String("amount", ptp.PTPAmount.StringFixed(2)),
	)
	ptp.Debtor = debtor
	out := ToPTPDTO(*ptp)
	return &out, nil
}

// UpdatePTP records how far a promise was honored. The caller must be able to
// write to the PTP's debtor as it is assigned now, whoever logged the promise.
func (f *PTPFlowImpl) UpdatePTP(ctx context.Context, userID, ptpID uint, req *dto.UpdatePTPRequest) (*dto.PTPDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireStaff(scope); err != nil {
		return nil, err
	}
	ptp, err := f.ptpRepo.ByID(ctx, ptpID)
	if err != nil {
		return nil, err
	}
	if ptp == nil {
		return nil, ErrPTPNotFound
	}
	debtor, err := writableDebtor(ctx, f.debtorRepo, scope, ptp.DebtorID)
	if err != nil {
		if errors.Is(err, ErrDebtorNotFound) {
			return nil, ErrPTPNotFound
		}
		return nil, err
	}

	if req.Status != nil {
		if !models.IsValidPTPStatus(*req.Status) {
			return nil, ErrInvalidPTPStatus
		}
		ptp.Status = *req.Status
	}
	if req.AmountPaid != nil {
		if req.AmountPaid.IsNegative() {
			return nil, ErrInvalidAmount
		}
		ptp.AmountPaid = *req.AmountPaid
	}
	if err := f.ptpRepo.Update(ctx, ptp); err != nil {
		return nil, err
	}
	ptp.Debtor = debtor
	out := ToPTPDTO(*ptp)
	return &out, nil
}

func (f *PTPFlowImpl) DeletePTP(ctx context.Context, userID, ptpID uint) error {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return err
	}
	if err := requireAdmin(scope); err != nil {
		return err
	}
	deleted, err := f.ptpRepo.Delete(ctx, ptpID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrPTPNotFound
	}
	return nil
}

func (f *PTPFlowImpl) ListPTPs(ctx context.Context, userID uint, req *dto.ListPTPsRequest) (*dto.ListPTPsResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	filter := models.PTPFilter{DebtorID: req.DebtorID, Scope: scope}
	if scope.IsAdmin() {
		filter.AgentID = req.AgentID
	}
	if req.Status != "" {
		if !models.IsValidPTPStatus(req.Status) {
			return nil, ErrInvalidPTPStatus
		}
		filter.Status = utils.ToPtr(req.Status)
	}
	if req.Period != "" {
		start, ok := utils.PeriodStart(req.Period, f.now())
		if !ok {
			return nil, ErrInvalidPeriod
		}
		filter.DueAfter = &start
	}

	limit, offset, page, pageSize := pageBounds(req.Page, req.PageSize)
	total, err := f.ptpRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows, err := f.ptpRepo.ByFilter(ctx, filter, "", limit, offset)
	if err != nil {
		return nil, err
	}
	return &dto.ListPTPsResponse{
		PTPs:       ptpDTOs(rows),
		Pagination: dto.NewPagination(page, pageSize, total),
	}, nil
}

func ptpDTOs(rows []*models.PTP) []dto.PTPDTO {
	out := make([]dto.PTPDTO, 0, len(rows))
	for _, p := range rows {
		out = append(out, ToPTPDTO(*p))
	}
	return out
}
