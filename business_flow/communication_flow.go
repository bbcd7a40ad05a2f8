package businessflow

import (
	"context"
	"encoding/json"
	"errors"
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

// Outbound send statuses
const (
	SendStatusSent    = "sent"
	SendStatusCreated = "created"
)

// CommunicationFlow handles outreach to debtors. A send that names a debtor
// is recorded in the debtor's event log once it succeeds.
type CommunicationFlow interface {
	SendSMS(ctx context.Context, userID uint, req *dto.SendSMSRequest) (*dto.SendResult, error)
	SendEmail(ctx context.Context, userID uint, req *dto.SendEmailRequest) (*dto.SendResult, error)
	WhatsAppLink(ctx context.Context, userID uint, req *dto.WhatsAppLinkRequest) (*dto.LinkResponse, error)
	SoftphoneLink(ctx context.Context, userID uint, req *dto.SoftphoneRequest) (*dto.LinkResponse, error)
	Templates(ctx context.Context, userID uint) (*dto.TemplatesResponse, error)
	RenderTemplate(ctx context.Context, userID uint, req *dto.RenderTemplateRequest) (*dto.RenderTemplateResponse, error)
}

type CommunicationFlowImpl struct {
	userRepo   repository.UserRepository
	debtorRepo repository.DebtorRepository
	eventRepo  repository.EventLogRepository
	notifier   services.NotificationService
	now        func() time.Time
}

func NewCommunicationFlow(
	userRepo repository.UserRepository,
	debtorRepo repository.DebtorRepository,
	eventRepo repository.EventLogRepository,
	notifier services.NotificationService,
) CommunicationFlow {
	return &CommunicationFlowImpl{
		userRepo:   userRepo,
		debtorRepo: debtorRepo,
		eventRepo:  eventRepo,
		notifier:   notifier,
		now:        utils.UTCNow,
	}
}

func (f *CommunicationFlowImpl) SendSMS(ctx context.Context, userID uint, req *dto.SendSMSRequest) (*dto.SendResult, error) {
	to := strings.TrimSpace(req.To)
	if to == "" || strings.TrimSpace(req.Message) == "" {
		return nil, NewValidationError("MISSING_RECIPIENT_OR_MESSAGE", "Missing recipient or message.")
	}
	scope, debtor, err := f.prepare(ctx, userID, req.DebtorID)
	if err != nil {
		return nil, err
	}

	if _, err := f.notifier.SendSMS(ctx, to, req.Message); err != nil {
		return nil, f.sendFailure(ctx, services.ChannelSMS, to, err)
	}

	f.audit(ctx, scope, debtor, models.EventActionSendSMS, map[string]any{"to": to, "message": req.Message})
	return &dto.SendResult{Channel: services.ChannelSMS, Recipient: to, Status: SendStatusSent}, nil
}

func (f *CommunicationFlowImpl) SendEmail(ctx context.Context, userID uint, req *dto.SendEmailRequest) (*dto.SendResult, error) {
	to := strings.TrimSpace(req.Email)
	if to == "" || strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Body) == "" {
		return nil, ErrMissingRequiredFields
	}
	scope, debtor, err := f.prepare(ctx, userID, req.DebtorID)
	if err != nil {
		return nil, err
	}

	if err := f.notifier.SendEmail(ctx, to, req.Subject, req.Body); err != nil {
		return nil, f.sendFailure(ctx, services.ChannelEmail, to, err)
	}

	f.audit(ctx, scope, debtor, models.EventActionSendEmail, map[string]any{"to": to, "subject": req.Subject})
	return &dto.SendResult{Channel: services.ChannelEmail, Recipient: to, Status: SendStatusSent}, nil
}

func (f *CommunicationFlowImpl) WhatsAppLink(ctx context.Context, userID uint, req *dto.WhatsAppLinkRequest) (*dto.LinkResponse, error) {
	scope, debtor, err := f.prepare(ctx, userID, req.DebtorID)
	if err != nil {
		return nil, err
	}
	link, err := f.notifier.WhatsAppLink(req.Phone, req.Message)
	if err != nil {
		return nil, f.sendFailure(ctx, services.ChannelWhatsApp, req.Phone, err)
	}
	f.audit(ctx, scope, debtor, models.EventActionOpenWhatsApp, map[string]any{"phone": req.Phone, "message": req.Message})
	return &dto.LinkResponse{URL: link}, nil
}

func (f *CommunicationFlowImpl) SoftphoneLink(ctx context.Context, userID uint, req *dto.SoftphoneRequest) (*dto.LinkResponse, error) {
	scope, debtor, err := f.prepare(ctx, userID, req.DebtorID)
	if err != nil {
		return nil, err
	}
	link, err := f.notifier.SoftphoneURL(req.Number)
	if err != nil {
		return nil, f.sendFailure(ctx, services.ChannelSoftphone, req.Number, err)
	}
	f.audit(ctx, scope, debtor, models.EventActionCallDebtor, map[string]any{"number": req.Number})
	return &dto.LinkResponse{URL: link}, nil
}

func (f *CommunicationFlowImpl) Templates(ctx context.Context, userID uint) (*dto.TemplatesResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireStaff(scope); err != nil {
		return nil, err
	}
	return &dto.TemplatesResponse{
		SMS:      templateDTOs(services.ChannelSMS, SMSTemplates),
		WhatsApp: templateDTOs(services.ChannelWhatsApp, WhatsAppTemplates),
		Email:    templateDTOs(services.ChannelEmail, EmailTemplates),
	}, nil
}

// RenderTemplate fills a template from a debtor. Amount defaults to the
// debt amount and Date to the next follow-up date, or today.
func (f *CommunicationFlowImpl) RenderTemplate(ctx context.Context, userID uint, req *dto.RenderTemplateRequest) (*dto.RenderTemplateResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireStaff(scope); err != nil {
		return nil, err
	}
	tmpl, ok := findTemplate(req.Channel, req.TemplateID)
	if !ok {
		return nil, ErrUnknownTemplate
	}
	debtor, err := visibleDebtor(ctx, f.debtorRepo, scope, req.DebtorID)
	if err != nil {
		return nil, err
	}

	values := TemplateValues{
		Name:       debtor.Name,
		ClientName: debtor.Client,
		Amount:     debtor.DebtAmount.StringFixed(2),
		Date:       f.now().Format(time.DateOnly),
	}
	if debtor.NextFollowupDate != nil {
		values.Date = debtor.NextFollowupDate.UTC().Format(time.DateOnly)
	}
	if req.Amount != nil && strings.TrimSpace(*req.Amount) != "" {
		values.Amount = strings.TrimSpace(*req.Amount)
	}
	if req.Date != nil && strings.TrimSpace(*req.Date) != "" {
		values.Date = strings.TrimSpace(*req.Date)
	}
	if req.Days != nil {
		values.Days = strconv.Itoa(*req.Days)
	}

	return &dto.RenderTemplateResponse{
		Subject: RenderTemplate(tmpl.Subject, values),
		Text:    RenderTemplate(tmpl.Text, values),
	}, nil
}

// TemplateValues fills the template placeholders. Empty values leave their placeholder untouched.
type TemplateValues struct {
	Name       string
	ClientName string
	Amount     string
	Date       string
	Days       string
}

// RenderTemplate substitutes the known placeholders; anything else is kept as written
func RenderTemplate(text string, v TemplateValues) string {
	pairs := make([]string, 0, 10)
	add := func(placeholder, value string) {
		if value != "" {
			pairs = append(pairs, placeholder, value)
		}
	}
	add("{Name}", v.Name)
	add("{Client Name}", v.ClientName)
	add("{Amount}", v.Amount)
	add("{Date}", v.Date)
	add("{X}", v.Days)
	if len(pairs) == 0 {
		return text
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// prepare resolves the caller and, when one is named, the debtor being contacted
func (f *CommunicationFlowImpl) prepare(ctx context.Context, userID uint, debtorID *uint) (*models.AccessScope, *models.Debtor, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireStaff(scope); err != nil {
		return nil, nil, err
	}
	if debtorID == nil {
		return scope, nil, nil
	}
	debtor, err := writableDebtor(ctx, f.debtorRepo, scope, *debtorID)
	if err != nil {
		return nil, nil, err
	}
	return scope, debtor, nil
}

func (f *CommunicationFlowImpl) sendFailure(ctx context.Context, channel, recipient string, err error) error {
	if errors.Is(err, services.ErrInvalidRecipient) {
		return ErrInvalidRecipient
	}
	fields := []zap.Field{zap.String("channel", channel), zap.String("recipient", recipient), zap.Error(err)}
	if ue, ok := services.IsUpstream(err); ok {
		fields = append(fields, zap.Int("upstream_status", ue.StatusCode))
	}
	logger.FromContext(ctx).Error("outbound message failed", fields...)
	return err
}

// audit records the send on the debtor. A failure here is logged, the message is already out.
func (f *CommunicationFlowImpl) audit(ctx context.Context, scope *models.AccessScope, debtor *models.Debtor, action string, details map[string]any) {
	if debtor == nil || f.eventRepo == nil {
		return
	}
	raw, err := json.Marshal(details)
	if err != nil {
		raw = nil
	}
	if _, err := recordEvent(ctx, f.eventRepo, scope, debtor.ID, action, raw); err != nil {
		logger.FromContext(ctx).Warn("failed to record outreach event",
			zap.Uint("debtor_id", debtor.ID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func findTemplate(channel string, id int) (MessageTemplate, bool) {
	var set []MessageTemplate
	switch channel {
	case services.ChannelSMS:
		set = SMSTemplates
	case services.ChannelWhatsApp:
		set = WhatsAppTemplates
	case services.ChannelEmail:
		set = EmailTemplates
	}
	for _, t := range set {
		if t.ID == id {
			return t, true
		}
	}
	return MessageTemplate{}, false
}

func templateDTOs(channel string, set []MessageTemplate) []dto.MessageTemplateDTO {
	out := make([]dto.MessageTemplateDTO, 0, len(set))
	for _, t := range set {
		out = append(out, dto.MessageTemplateDTO{
			ID:      t.ID,
			Channel: channel,
			Name:    t.Name,
			Subject: t.Subject,
			Text:    t.Text,
		})
	}
	return out
}
