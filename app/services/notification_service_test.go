package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_Links(t *testing.T) {
	svc := NewNotificationService(nil, nil, "https://phone.example.com/index.php")

	link, err := svc.WhatsAppLink("+254 700-000-001", "Pay KES 1,000 & call")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/254700000001?text=Pay%20KES%201%2C000%20%26%20call", link)

	_, err = svc.WhatsAppLink("abc", "x")
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	popup, err := svc.SoftphoneURL("+254700000001")
	require.NoError(t, err)
	assert.Equal(t, "https://phone.example.com/index.php?mobile=0700000001", popup)
}

func TestNotificationService_Delegates(t *testing.T) {
	sms := NewMockSMSService()
	email := NewMockEmailService()
	svc := NewNotificationService(sms, email, "")

	_, err := svc.SendSMS(context.Background(), "0700000001", "hello")
	require.NoError(t, err)
	require.NoError(t, svc.SendEmail(context.Background(), "debtor@example.com", "Balance", "Dear debtor"))
	assert.ErrorIs(t, svc.SendEmail(context.Background(), "not-an-email", "s", "b"), ErrInvalidRecipient)

	assert.Len(t, sms.GetSentMessages(), 1)
	assert.Len(t, email.SentEmails(), 1)

	_, err = NewNotificationService(nil, nil, "").SendSMS(context.Background(), "0700000001", "x")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestRenderLetterhead(t *testing.T) {
	out, err := RenderLetterhead("Collections Desk", "Line one\n<script>x</script>", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, out, "Line one<br>&lt;script&gt;")
	assert.Contains(t, out, "&copy; 2025 Collections Desk")
	assert.False(t, strings.Contains(out, "<script>"))
}
