package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DebtorFlow handles the debtor book
type DebtorFlow interface {
	ListDebtors(ctx context.Context, userID uint, req *dto.ListDebtorsRequest) (*dto.ListDebtorsResponse, error)
	GetDebtor(ctx context.Context, userID, debtorID uint) (*dto.DebtorDetailResponse, error)
	CreateDebtor(ctx context.Context, userID uint, req *dto.CreateDebtorRequest) (*dto.DebtorDTO, error)
	UpdateDebtor(ctx context.Context, userID, debtorID uint, req *dto.UpdateDebtorRequest) (*dto.DebtorDTO, error)
	DeleteDebtor(ctx context.Context, userID, debtorID uint) error
	BulkDelete(ctx context.Context, userID uint, req *dto.BulkDeleteDebtorsRequest) (*dto.BulkResult, error)
	BulkReassign(ctx context.Context, userID uint, req *dto.BulkReassignDebtorsRequest) (*dto.BulkResult, error)
	ImportDebtors(ctx context.Context, userID uint, req *dto.ImportDebtorsRequest) (*dto.ImportDebtorsResponse, error)
	DealStages(ctx context.Context) []dto.DealStageDTO
}

// DebtorFlowImpl implements the debtor business flow
type DebtorFlowImpl struct {
	userRepo     repository.UserRepository
	debtorRepo   repository.DebtorRepository
	paymentRepo  repository.PaymentRepository
	followUpRepo repository.FollowUpRepository
	db           *gorm.DB
}

func NewDebtorFlow(
	userRepo repository.UserRepository,
	debtorRepo repository.DebtorRepository,
	paymentRepo repository.PaymentRepository,
	followUpRepo repository.FollowUpRepository,
	db *gorm.DB,
) DebtorFlow {
	return &DebtorFlowImpl{
		userRepo:     userRepo,
		debtorRepo:   debtorRepo,
		paymentRepo:  paymentRepo,
		followUpRepo: followUpRepo,
		db:           db,
	}
}

// ListDebtors returns the scoped page of debtors with their paid totals
func (f *DebtorFlowImpl) ListDebtors(ctx context.Context, userID uint, req *dto.ListDebtorsRequest) (*dto.ListDebtorsResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	filter := models.DebtorFilter{Scope: scope}
	if scope.IsAdmin() && req.AgentID != nil {
		filter.AssignedTo = req.AgentID
	}
	if req.DealStage != "" {
		filter.DealStage = utils.ToPtr(req.DealStage)
	}
	if req.Client != "" {
		filter.Client = utils.ToPtr(req.Client)
	}
	if req.Overdue {
		filter.OverdueBefore = utils.ToPtr(utils.StartOfDay(now))
	}
	if s := strings.TrimSpace(req.Search); s != "" {
		filter.Search = &s
	}

	limit, offset, page, pageSize := pageBounds(req.Page, req.PageSize)
	total, err := f.debtorRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	debtors, err := f.debtorRepo.ByFilter(ctx, filter, "", limit, offset)
	if err != nil {
		return nil, err
	}

	rows, err := f.toDTOs(ctx, debtors, now)
	if err != nil {
		return nil, err
	}
	return &dto.ListDebtorsResponse{
		Debtors:    rows,
		Pagination: dto.NewPagination(page, pageSize, total),
	}, nil
}

func (f *DebtorFlowImpl) GetDebtor(ctx context.Context, userID, debtorID uint) (*dto.DebtorDetailResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	debtor, err := visibleDebtor(ctx, f.debtorRepo, scope, debtorID)
	if err != nil {
		return nil, err
	}

	payments, err := f.paymentRepo.ByFilter(ctx, models.PaymentFilter{DebtorID: &debtor.ID}, "", 0, 0)
	if err != nil {
		return nil, err
	}
	summary := SummarizeDebtor(debtor, payments)

	names, err := agentNames(ctx, f.userRepo, []*models.Debtor{debtor})
	if err != nil {
		return nil, err
	}
	return &dto.DebtorDetailResponse{
		Debtor:  ToDebtorDTO(*debtor, summary.TotalPaid, nameOf(names, debtor.AssignedTo), utils.UTCNow()),
		Summary: ToDebtorSummaryDTO(summary),
	}, nil
}

func (f *DebtorFlowImpl) CreateDebtor(ctx context.Context, userID uint, req *dto.CreateDebtorRequest) (*dto.DebtorDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(scope); err != nil {
		return nil, err
	}
	if req.DebtAmount.IsNegative() {
		return nil, NewValidationError("INVALID_DEBT_AMOUNT", "debt_amount cannot be negative")
	}
	stage := req.DealStage
	if stage == "" {
		stage = models.DealStageSelect
	}
	if !models.IsKnownDealStage(stage) {
		return nil, ErrInvalidDealStage
	}
	if req.AssignedTo != nil {
		if _, err := f.requireAgent(ctx, *req.AssignedTo); err != nil {
			return nil, err
		}
	}

	debtor := &models.Debtor{
		Name:          strings.TrimSpace(req.Name),
		Phone:         utils.NilIfEmpty(req.Phone),
		Email:         utils.NilIfEmpty(req.Email),
		IDNumber:      utils.NilIfEmpty(req.IDNumber),
		AccountNumber: utils.NilIfEmpty(req.AccountNumber),
		BranchManager: utils.NilIfEmpty(req.BranchManager),
		DebtAmount:    req.DebtAmount,
		AssignedTo:    req.AssignedTo,
		Client:        strings.TrimSpace(req.Client),
		DealStage:     stage,
		Tags:          cleanTags(req.Tags),
	}
	if debtor.ClientUserID, err = f.clientIDFor(ctx, debtor.Client); err != nil {
		return nil, err
	}

	if err := f.debtorRepo.Save(ctx, debtor); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("debtor created", zap.Uint("debtor_id", debtor.ID), zap.Uint("created_by", userID))
	names, err := agentNames(ctx, f.userRepo, []*models.Debtor{debtor})
	if err != nil {
		return nil, err
	}
	out := ToDebtorDTO(*debtor, decimal.Zero, nameOf(names, debtor.AssignedTo), utils.UTCNow())
	return &out, nil
}

// UpdateDebtor applies a partial edit. Empty strings clear optional columns
// and a new assignee also takes over the debtor's follow-ups.
func (f *DebtorFlowImpl) UpdateDebtor(ctx context.Context, userID, debtorID uint, req *dto.UpdateDebtorRequest) (*dto.DebtorDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(scope); err != nil {
		return nil, err
	}
	debtor, err := visibleDebtor(ctx, f.debtorRepo, scope, debtorID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewValidationError("NAME_REQUIRED", "name cannot be empty")
		}
		fields["name"] = name
	}
	optional := map[string]*string{
		"phone":          req.Phone,
		"email":          req.Email,
		"id_number":      req.IDNumber,
		"account_number": req.AccountNumber,
		"branch_manager": req.BranchManager,
	}
	for column, value := range optional {
		if value != nil {
			fields[column] = utils.NilIfEmpty(value)
		}
	}
	if req.DebtAmount != nil {
		if req.DebtAmount.IsNegative() {
			return nil, NewValidationError("INVALID_DEBT_AMOUNT", "debt_amount cannot be negative")
		}
		fields["debt_amount"] = *req.DebtAmount
	}
	if req.DealStage != nil {
		if !models.IsKnownDealStage(*req.DealStage) {
			return nil, ErrInvalidDealStage
		}
		fields["deal_stage"] = *req.DealStage
	}
	if req.Client != nil {
		client := strings.TrimSpace(*req.Client)
		clientID, err := f.clientIDFor(ctx, client)
		if err != nil {
			return nil, err
		}
		fields["client"] = client
		fields["client_user_id"] = clientID
	}
	if req.Tags != nil {
		fields["tags"] = cleanTags(req.Tags)
	}

	reassign := false
	var newAgent *uint
	switch {
	case req.Unassign:
		reassign = debtor.AssignedTo != nil
	case req.AssignedTo != nil:
		if _, err := f.requireAgent(ctx, *req.AssignedTo); err != nil {
			return nil, err
		}
		newAgent = req.AssignedTo
		reassign = debtor.AssignedTo == nil || *debtor.AssignedTo != *req.AssignedTo
	}
	if reassign {
		fields["assigned_to"] = newAgent
	}

	if len(fields) == 0 {
		return f.detailDTO(ctx, debtor)
	}
	fields["updated_at"] = utils.UTCNow()

	err = runInTx(ctx, f.db, func(txCtx context.Context) error {
		ok, err := f.debtorRepo.UpdateFields(txCtx, debtor.ID, fields)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDebtorNotFound
		}
		if reassign {
			if _, err := f.followUpRepo.ReassignAgent(txCtx, debtor.ID, newAgent); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := f.debtorRepo.ByID(ctx, debtor.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrDebtorNotFound
	}
	return f.detailDTO(ctx, updated)
}

func (f *DebtorFlowImpl) DeleteDebtor(ctx context.Context, userID, debtorID uint) error {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return err
	}
	if err := requireAdmin(scope); err != nil {
		return err
	}
	deleted, err := f.debtorRepo.Delete(ctx, debtorID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrDebtorNotFound
	}
	logger.FromContext(ctx).Info("debtor deleted", zap.Uint("debtor_id", debtorID), zap.Uint("deleted_by", userID))
	return nil
}

func (f *DebtorFlowImpl) BulkDelete(ctx context.Context, userID uint, req *dto.BulkDeleteDebtorsRequest) (*dto.BulkResult, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(scope); err != nil {
		return nil, err
	}
	if len(req.IDs) == 0 {
		return nil, ErrEmptySelection
	}
	deleted, err := f.debtorRepo.Delete(ctx, req.IDs...)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("debtors deleted", zap.Int64("count", deleted), zap.Uint("deleted_by", userID))
	return &dto.BulkResult{Affected: deleted}, nil
}

// BulkReassign moves debtors and their follow-ups to an agent, or unassigns them
func (f *DebtorFlowImpl) BulkReassign(ctx context.Context, userID uint, req *dto.BulkReassignDebtorsRequest) (*dto.BulkResult, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(scope); err != nil {
		return nil, err
	}
	if len(req.IDs) == 0 {
		return nil, ErrEmptySelection
	}
	if req.AgentID != nil {
		if _, err := f.requireAgent(ctx, *req.AgentID); err != nil {
			return nil, err
		}
	}

	var affected int64
	err = runInTx(ctx, f.db, func(txCtx context.Context) error {
		n, err := f.debtorRepo.Reassign(txCtx, req.IDs, req.AgentID)
		if err != nil {
			return err
		}
		affected = n
		for _, id := range req.IDs {
			if _, err := f.followUpRepo.ReassignAgent(txCtx, id, req.AgentID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.BulkResult{Affected: affected}, nil
}

func (f *DebtorFlowImpl) DealStages(ctx context.Context) []dto.DealStageDTO {
	out := make([]dto.DealStageDTO, 0, len(models.DealStages))
	for _, s := range models.DealStages {
		out = append(out, dto.DealStageDTO{Code: s.Code, Label: s.Label})
	}
	return out
}

func (f *DebtorFlowImpl) requireAgent(ctx context.Context, id uint) (*models.User, error) {
	agent, err := f.userRepo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if agent == nil || !agent.IsAgent() {
		return nil, ErrAgentNotFound
	}
	return agent, nil
}

// clientIDFor links a client name to the client account carrying that full name
func (f *DebtorFlowImpl) clientIDFor(ctx context.Context, client string) (*uint, error) {
	if client == "" {
		return nil, nil
	}
	user, err := f.userRepo.ClientByFullName(ctx, client)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return utils.ToPtr(user.ID), nil
}

func (f *DebtorFlowImpl) detailDTO(ctx context.Context, debtor *models.Debtor) (*dto.DebtorDTO, error) {
	rows, err := f.toDTOs(ctx, []*models.Debtor{debtor}, utils.UTCNow())
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (f *DebtorFlowImpl) toDTOs(ctx context.Context, debtors []*models.Debtor, now time.Time) ([]dto.DebtorDTO, error) {
	out := make([]dto.DebtorDTO, 0, len(debtors))
	if len(debtors) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(debtors))
	for _, d := range debtors {
		ids = append(ids, d.ID)
	}
	payments, err := f.paymentRepo.ByFilter(ctx, models.PaymentFilter{DebtorIDs: ids}, "", 0, 0)
	if err != nil {
		return nil, err
	}
	paid := PaidByDebtor(payments)

	names, err := agentNames(ctx, f.userRepo, debtors)
	if err != nil {
		return nil, err
	}
	for _, d := range debtors {
		out = append(out, ToDebtorDTO(*d, paid[d.ID], nameOf(names, d.AssignedTo), now))
	}
	return out, nil
}

// agentNames resolves the full names of the agents assigned to debtors
func agentNames(ctx context.Context, userRepo repository.UserRepository, debtors []*models.Debtor) (map[uint]string, error) {
	seen := map[uint]struct{}{}
	ids := make([]uint, 0)
	for _, d := range debtors {
		if d == nil || d.AssignedTo == nil {
			continue
		}
		if _, ok := seen[*d.AssignedTo]; ok {
			continue
		}
		seen[*d.AssignedTo] = struct{}{}
		ids = append(ids, *d.AssignedTo)
	}
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	users, err := userRepo.ByFilter(ctx, models.UserFilter{IDs: ids}, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load agents: %w", err)
	}
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names, nil
}

func nameOf(names map[uint]string, id *uint) *string {
	if id == nil {
		return nil
	}
	if name, ok := names[*id]; ok {
		return &name
	}
	return nil
}

func cleanTags(tags []string) pq.StringArray {
	out := pq.StringArray{}
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
