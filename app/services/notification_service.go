package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/amirphl/debt-collection-crm/utils"
)

// Outbound channels
const (
	ChannelSMS       = "sms"
	ChannelEmail     = "email"
	ChannelWhatsApp  = "whatsapp"
	ChannelSoftphone = "softphone"
)

// NotificationService is the single entry point for debtor outreach
type NotificationService interface {
	SendSMS(ctx context.Context, to, message string) (*SMSResult, error)
	SendEmail(ctx context.Context, to, subject, body string) error
	WhatsAppLink(phone, message string) (string, error)
	SoftphoneURL(number string) (string, error)
}

// NotificationServiceImpl implements NotificationService
type NotificationServiceImpl struct {
	sms          SMSService
	email        EmailService
	softphoneURL string
}

// NewNotificationService creates a new notification service
func NewNotificationService(sms SMSService, email EmailService, softphoneURL string) NotificationService {
	return &NotificationServiceImpl{
		sms:          sms,
		email:        email,
		softphoneURL: softphoneURL,
	}
}

func (s *NotificationServiceImpl) SendSMS(ctx context.Context, to, message string) (*SMSResult, error) {
	if s.sms == nil {
		return nil, fmt.Errorf("sms: %w", ErrProviderNotConfigured)
	}
	res, err := s.sms.SendSMS(ctx, to, message)
	recordOutbound(ChannelSMS, err)
	return res, err
}

func (s *NotificationServiceImpl) SendEmail(ctx context.Context, to, subject, body string) error {
	if s.email == nil {
		return fmt.Errorf("email: %w", ErrProviderNotConfigured)
	}
	err := s.email.SendEmail(ctx, to, subject, body)
	recordOutbound(ChannelEmail, err)
	return err
}

// WhatsAppLink builds https://wa.me/<digits>?text=<message>
func (s *NotificationServiceImpl) WhatsAppLink(phone, message string) (string, error) {
	digits := utils.DigitsOnly(phone)
	if len(digits) < 7 {
		recordOutbound(ChannelWhatsApp, ErrInvalidRecipient)
		return "", ErrInvalidRecipient
	}
	link := "https://wa.me/" + digits
	if message != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	}
	recordOutbound(ChannelWhatsApp, nil)
	return link, nil
}

// SoftphoneURL builds the popup URL of the browser phone. The softphone dials
// local numbers, so a +254 prefix becomes a leading zero.
func (s *NotificationServiceImpl) SoftphoneURL(number string) (string, error) {
	number = strings.TrimSpace(number)
	if len(utils.DigitsOnly(number)) < 7 {
		recordOutbound(ChannelSoftphone, ErrInvalidRecipient)
		return "", ErrInvalidRecipient
	}
	if rest, ok := strings.CutPrefix(number, "+254"); ok {
		number = "0" + rest
	}
	if s.softphoneURL == "" {
		return "", fmt.Errorf("softphone: %w", ErrProviderNotConfigured)
	}
	u, err := url.Parse(s.softphoneURL)
	if err != nil {
		return "", fmt.Errorf("invalid softphone url: %w", err)
	}
	q := u.Query()
	q.Set("mobile", number)
	u.RawQuery = q.Encode()
	recordOutbound(ChannelSoftphone, nil)
	return u.String(), nil
}
