package businessflow

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
	"go.uber.org/zap"
)

// EventLogFlow records outreach and UI actions on debtors
type EventLogFlow interface {
	CreateEvent(ctx context.Context, userID, debtorID uint, req *dto.CreateEventLogRequest) (*dto.EventLogDTO, error)
	ListDebtorEvents(ctx context.Context, userID, debtorID uint) ([]dto.EventLogDTO, error)
}

type EventLogFlowImpl struct {
	userRepo   repository.UserRepository
	debtorRepo repository.DebtorRepository
	eventRepo  repository.EventLogRepository
}

func NewEventLogFlow(
	userRepo repository.UserRepository,
	debtorRepo repository.DebtorRepository,
	eventRepo repository.EventLogRepository,
) EventLogFlow {
	return &EventLogFlowImpl{
		userRepo:   userRepo,
		debtorRepo: debtorRepo,
		eventRepo:  eventRepo,
	}
}

func (f *EventLogFlowImpl) CreateEvent(ctx context.Context, userID, debtorID uint, req *dto.CreateEventLogRequest) (*dto.EventLogDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	debtor, err := writableDebtor(ctx, f.debtorRepo, scope, debtorID)
	if err != nil {
		return nil, err
	}
	action := strings.TrimSpace(req.Action)
	if action == "" {
		return nil, NewValidationError("ACTION_REQUIRED", "action is required")
	}
	details := req.Details
	if len(details) > 0 && !json.Valid(details) {
		return nil, NewValidationError("INVALID_DETAILS", "details must be valid JSON")
	}

	event, err := recordEvent(ctx, f.eventRepo, scope, debtor.ID, action, details)
	if err != nil {
		return nil, err
	}
	out := ToEventLogDTO(*event)
	return &out, nil
}

// ListDebtorEvents returns a debtor's events, newest first
func (f *EventLogFlowImpl) ListDebtorEvents(ctx context.Context, userID, debtorID uint) ([]dto.EventLogDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	debtor, err := visibleDebtor(ctx, f.debtorRepo, scope, debtorID)
	if err != nil {
		return nil, err
	}
	rows, err := f.eventRepo.ByFilter(ctx, models.EventLogFilter{DebtorID: &debtor.ID}, "timestamp DESC, id DESC", 0, 0)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EventLogDTO, 0, len(rows))
	for _, e := range rows {
		out = append(out, ToEventLogDTO(*e))
	}
	return out, nil
}

// recordEvent stores an event stamped with the caller's id and current role
func recordEvent(ctx context.Context, repo repository.EventLogRepository, scope *models.AccessScope, debtorID uint, action string, details json.RawMessage) (*models.EventLog, error) {
	event := &models.EventLog{
		DebtorID:  utils.ToPtr(debtorID),
		UserID:    utils.ToPtr(scope.UserID),
		UserRole:  scope.Role,
		Action:    action,
		Timestamp: utils.UTCNow(),
	}
	if len(details) > 0 {
		event.Details = details
	}
	if err := repo.Save(ctx, event); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Debug("event recorded",
		zap.Uint("debtor_id", debtorID),
		zap.String("action", action),
		zap.Uint("user_id", scope.UserID),
	)
	return event, nil
}
