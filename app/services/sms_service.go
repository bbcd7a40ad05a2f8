package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/debt-collection-crm/config"
	"github.com/amirphl/debt-collection-crm/utils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SMSService sends text messages through the SMS Leopard gateway
type SMSService interface {
	SendSMS(ctx context.Context, recipient, message string) (*SMSResult, error)
}

// SMSResult is the gateway's answer to an accepted send
type SMSResult struct {
	Recipient string          `json:"recipient"`
	Response  json.RawMessage `json:"response,omitempty"`
}

// SMSServiceImpl implements SMSService
type SMSServiceImpl struct {
	config  *config.SMSConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// SMSRequest is the SMS Leopard send payload
type SMSRequest struct {
	Source       string           `json:"source"`
	Message      string           `json:"message"`
	Destination  []SMSDestination `json:"destination"`
	StatusURL    string           `json:"status_url"`
	StatusSecret string           `json:"status_secret"`
}

type SMSDestination struct {
	Number string `json:"number"`
}

// NewSMSService creates a new SMS service instance
func NewSMSService(cfg *config.SMSConfig, logger *zap.Logger) SMSService {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &SMSServiceImpl{
		config:  cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// SendSMS posts one message. A non-2xx answer is returned as an *UpstreamError
// carrying the gateway's status code.
func (s *SMSServiceImpl) SendSMS(ctx context.Context, recipient, message string) (*SMSResult, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, ErrInvalidRecipient
	}
	if s.config.APIKey == "" || s.config.APISecret == "" {
		return nil, fmt.Errorf("sms gateway credentials: %w", ErrProviderNotConfigured)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("sms rate limiter: %w", err)
	}

	requestBody, err := json.Marshal(SMSRequest{
		Source:      s.config.Sender,
		Message:     message,
		Destination: []SMSDestination{{Number: recipient}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal SMS request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.config.APIKey, s.config.APISecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read SMS response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("sms gateway rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("recipient", recipient),
			zap.ByteString("body", body),
		)
		return nil, &UpstreamError{Service: "sms_leopard", StatusCode: resp.StatusCode, Body: upstreamMessage(body)}
	}

	result := &SMSResult{Recipient: recipient}
	if json.Valid(body) {
		result.Response = body
	}
	return result, nil
}

// upstreamMessage prefers the gateway's "message" field over the raw body
func upstreamMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(body))
}

// MockSMSService implements SMSService for development and tests
type MockSMSService struct {
	mu           sync.Mutex
	SentMessages []MockSMSMessage
}

// MockSMSMessage represents a mock SMS message
type MockSMSMessage struct {
	Recipient string
	Message   string
	SentAt    time.Time
}

// NewMockSMSService creates a new mock SMS service
func NewMockSMSService() *MockSMSService {
	return &MockSMSService{SentMessages: make([]MockSMSMessage, 0)}
}

func (m *MockSMSService) SendSMS(ctx context.Context, recipient, message string) (*SMSResult, error) {
	if strings.TrimSpace(recipient) == "" {
		return nil, ErrInvalidRecipient
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentMessages = append(m.SentMessages, MockSMSMessage{
		Recipient: recipient,
		Message:   message,
		SentAt:    utils.UTCNow(),
	})
	return &SMSResult{Recipient: recipient}, nil
}

// GetSentMessages returns a copy of the recorded messages
func (m *MockSMSService) GetSentMessages() []MockSMSMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockSMSMessage, len(m.SentMessages))
	copy(out, m.SentMessages)
	return out
}
