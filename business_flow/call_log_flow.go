package businessflow

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/app/services"
	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
	"go.uber.org/zap"
)

// CallLogFlow ingests telephony webhooks and lists calls
type CallLogFlow interface {
	HandleWebhook(ctx context.Context, req *dto.WebRTCWebhookRequest) (*dto.WebRTCWebhookResponse, error)
	ListCallLogs(ctx context.Context, userID uint, req *dto.ListCallLogsRequest) ([]dto.CallLogDTO, error)
}

type CallLogFlowImpl struct {
	userRepo   repository.UserRepository
	debtorRepo repository.DebtorRepository
	callRepo   repository.CallLogRepository
	limit      int
}

func NewCallLogFlow(
	userRepo repository.UserRepository,
	debtorRepo repository.DebtorRepository,
	callRepo repository.CallLogRepository,
	limit int,
) CallLogFlow {
	if limit <= 0 {
		limit = 500
	}
	return &CallLogFlowImpl{
		userRepo:   userRepo,
		debtorRepo: debtorRepo,
		callRepo:   callRepo,
		limit:      limit,
	}
}

// HandleWebhook upserts the call keyed by CallSid. A repeated delivery
// overwrites the stored fields.
func (f *CallLogFlowImpl) HandleWebhook(ctx context.Context, req *dto.WebRTCWebhookRequest) (*dto.WebRTCWebhookResponse, error) {
	log := logger.FromContext(ctx)

	sid := strings.TrimSpace(req.CallSid)
	if sid == "" || strings.TrimSpace(req.StartTime) == "" {
		services.RecordWebhookEvent("rejected")
		return nil, ErrMissingCallFields
	}
	start, err := parseCallTime(req.StartTime)
	if err != nil {
		services.RecordWebhookEvent("rejected")
		return nil, NewValidationError("INVALID_START_TIME", "StartTime is not a valid timestamp")
	}

	call := &models.CallLog{
		CallSID:           sid,
		EventType:         firstNonEmpty(req.EventType, req.Type),
		CallGroup:         firstNonEmpty(req.CallGroup, req.CallGroupAlias),
		Direction:         firstNonEmpty(req.Direction),
		AgentNumber:       firstNonEmpty(req.SourceNumber),
		AgentName:         firstNonEmpty(req.ReceiverName, req.AgentName),
		ReceiverNumber:    firstNonEmpty(req.DialWhomNumber),
		ReceiverName:      firstNonEmpty(req.ReceiverName),
		SourceNumber:      firstNonEmpty(req.SourceNumber),
		DestinationNumber: firstNonEmpty(req.DestinationNumber),
		DialWhomNumber:    firstNonEmpty(req.DialWhomNumber),
		Status:            firstNonEmpty(req.Status),
		CallDuration:      atoiOrZero(req.CallDuration),
		StartTime:         start,
		CallRecordingURL:  firstNonEmpty(req.CallRecordingURL, req.RecordingURL),
		Coins:             atoiOrZero(firstString(req.Coins, req.CoinsAlias)),
	}
	if raw := strings.TrimSpace(req.EndTime); raw != "" {
		if end, err := parseCallTime(raw); err == nil {
			call.EndTime = &end
		}
	}

	number := firstString(req.DialWhomNumber, req.DestinationNumber)
	if number != "" {
		debtor, err := f.debtorRepo.ByPhone(ctx, number)
		if err != nil {
			log.Warn("debtor lookup for call failed", zap.String("call_sid", sid), zap.Error(err))
		} else if debtor != nil {
			call.DebtorID = utils.ToPtr(debtor.ID)
		}
	}

	if err := f.callRepo.Upsert(ctx, call); err != nil {
		services.RecordWebhookEvent("error")
		log.Error("failed to store call log", zap.String("call_sid", sid), zap.Error(err))
		return nil, err
	}

	services.RecordWebhookEvent("stored")
	log.Info("call logged", zap.String("call_sid", sid), zap.Uint("call_id", call.ID))
	return &dto.WebRTCWebhookResponse{Success: true, CallID: sid, ID: call.ID}, nil
}

// ListCallLogs returns calls newest first. Agents see the calls placed from
// their own phone number; clients have no access.
func (f *CallLogFlowImpl) ListCallLogs(ctx context.Context, userID uint, req *dto.ListCallLogsRequest) ([]dto.CallLogDTO, error) {
	user, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireStaff(scope); err != nil {
		return nil, err
	}

	filter := models.CallLogFilter{DebtorID: req.DebtorID}
	if s := strings.TrimSpace(req.Status); s != "" {
		filter.Status = &s
	}
	if scope.IsAgent() {
		if user.Phone == nil || strings.TrimSpace(*user.Phone) == "" {
			return []dto.CallLogDTO{}, nil
		}
		filter.AgentNumber = utils.ToPtr(strings.TrimSpace(*user.Phone))
	} else if n := strings.TrimSpace(req.AgentNumber); n != "" {
		filter.AgentNumber = &n
	}

	limit := f.limit
	if req.Limit > 0 && req.Limit < limit {
		limit = req.Limit
	}
	rows, err := f.callRepo.ByFilter(ctx, filter, "start_time DESC", limit, 0)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CallLogDTO, 0, len(rows))
	for _, c := range rows {
		out = append(out, ToCallLogDTO(*c))
	}
	return out, nil
}

var callTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	time.RFC1123Z,
	time.RFC1123,
}

// parseCallTime accepts the timestamp layouts seen from the provider and unix seconds
func parseCallTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range callTimeLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, lastErr
}

func atoiOrZero(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}

func firstString(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmpty(values ...string) *string {
	if v := firstString(values...); v != "" {
		return &v
	}
	return nil
}
