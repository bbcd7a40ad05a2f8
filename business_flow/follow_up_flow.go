package businessflow

import (
	"context"
	"strings"
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FollowUpFlow records contacts and moves debtors through the deal stages
type FollowUpFlow interface {
	ListDebtorFollowUps(ctx context.Context, userID, debtorID uint) ([]dto.FollowUpDTO, error)
	CreateFollowUp(ctx context.Context, userID, debtorID uint, req *dto.CreateFollowUpRequest) (*dto.FollowUpDTO, error)
	ListFollowUps(ctx context.Context, userID uint, req *dto.ListFollowUpsRequest) (*dto.ListFollowUpsResponse, error)
}

// FollowUpFlowImpl implements the follow-up business flow
type FollowUpFlowImpl struct {
	userRepo     repository.UserRepository
	debtorRepo   repository.DebtorRepository
	followUpRepo repository.FollowUpRepository
	db           *gorm.DB
	now          func() time.Time
}

func NewFollowUpFlow(
	userRepo repository.UserRepository,
	debtorRepo repository.DebtorRepository,
	followUpRepo repository.FollowUpRepository,
	db *gorm.DB,
) FollowUpFlow {
	return &FollowUpFlowImpl{
		userRepo:     userRepo,
		debtorRepo:   debtorRepo,
		followUpRepo: followUpRepo,
		db:           db,
		now:          utils.UTCNow,
	}
}

// ListDebtorFollowUps returns a debtor's follow-ups, newest first
func (f *FollowUpFlowImpl) ListDebtorFollowUps(ctx context.Context, userID, debtorID uint) ([]dto.FollowUpDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	debtor, err := visibleDebtor(ctx, f.debtorRepo, scope, debtorID)
	if err != nil {
		return nil, err
	}
	rows, err := f.followUpRepo.ByFilter(ctx, models.FollowUpFilter{DebtorID: &debtor.ID}, "follow_up_date DESC, id DESC", 0, 0)
	if err != nil {
		return nil, err
	}
	return followUpDTOs(rows), nil
}

// CreateFollowUp appends a follow-up and copies its stage, next date and notes
// onto the debtor in the same transaction
func (f *FollowUpFlowImpl) CreateFollowUp(ctx context.Context, userID, debtorID uint, req *dto.CreateFollowUpRequest) (*dto.FollowUpDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	debtor, err := writableDebtor(ctx, f.debtorRepo, scope, debtorID)
	if err != nil {
		return nil, err
	}

	now := f.now()
	var next *time.Time
	if req.NextFollowupDate != nil && strings.TrimSpace(*req.NextFollowupDate) != "" {
		parsed, err := utils.ParseDate(strings.TrimSpace(*req.NextFollowupDate))
		if err != nil {
			return nil, ErrInvalidDate
		}
		day := utils.StartOfDay(parsed)
		next = &day
	}
	if err := ValidateNextFollowUpDate(req.DealStage, next, now); err != nil {
		return nil, err
	}

	notes := strings.TrimSpace(req.Notes)
	followUp := &models.FollowUp{
		DebtorID:         debtor.ID,
		AgentID:          utils.ToPtr(scope.UserID),
		FollowUpDate:     now,
		Notes:            notes,
		DealStage:        req.DealStage,
		NextFollowupDate: next,
	}

	err = runInTx(ctx, f.db, func(txCtx context.Context) error {
		if err := f.followUpRepo.Save(txCtx, followUp); err != nil {
			return err
		}
		ok, err := f.debtorRepo.UpdateFields(txCtx, debtor.ID, map[string]any{
			"deal_stage":         req.DealStage,
			"next_followup_date": next,
			"collection_update":  utils.NilIfEmpty(&notes),
			"updated_at":         now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrDebtorNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("follow-up recorded",
		zap.Uint("debtor_id", debtor.ID),
		zap.Uint("agent_id", scope.UserID),
		zap.String("deal_stage", req.DealStage),
	)
	followUp.Debtor = debtor
	out := ToFollowUpDTO(*followUp)
	return &out, nil
}

// ListFollowUps is the scoped follow-up report
func (f *FollowUpFlowImpl) ListFollowUps(ctx context.Context, userID uint, req *dto.ListFollowUpsRequest) (*dto.ListFollowUpsResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}

	filter := models.FollowUpFilter{DebtorID: req.DebtorID, Scope: scope}
	if scope.IsAdmin() {
		filter.AgentID = req.AgentID
	}
	if req.DealStage != "" {
		filter.DealStage = utils.ToPtr(req.DealStage)
	}
	if req.Period != "" {
		start, ok := utils.PeriodStart(req.Period, f.now())
		if !ok {
			return nil, ErrInvalidPeriod
		}
		filter.CreatedAfter = &start
	}

	limit, offset, page, pageSize := pageBounds(req.Page, req.PageSize)
	total, err := f.followUpRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows, err := f.followUpRepo.ByFilter(ctx, filter, "", limit, offset)
	if err != nil {
		return nil, err
	}
	return &dto.ListFollowUpsResponse{
		FollowUps:  followUpDTOs(rows),
		Pagination: dto.NewPagination(page, pageSize, total),
	}, nil
}

func followUpDTOs(rows []*models.FollowUp) []dto.FollowUpDTO {
	out := make([]dto.FollowUpDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToFollowUpDTO(*r))
	}
	return out
}
