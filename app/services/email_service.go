package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"html/template"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/debt-collection-crm/config"
	"github.com/amirphl/debt-collection-crm/utils"
	"go.uber.org/zap"
)

// EmailService sends letterhead emails to debtors
type EmailService interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMTPEmailService delivers over SMTP: implicit TLS on port 465, STARTTLS elsewhere
type SMTPEmailService struct {
	config *config.EmailConfig
	logger *zap.Logger
}

func NewSMTPEmailService(cfg *config.EmailConfig, logger *zap.Logger) EmailService {
	return &SMTPEmailService{config: cfg, logger: logger}
}

func (s *SMTPEmailService) SendEmail(ctx context.Context, to, subject, body string) error {
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRecipient, to)
	}
	if s.config.Host == "" || s.config.Username == "" {
		return fmt.Errorf("smtp: %w", ErrProviderNotConfigured)
	}

	from := s.fromAddress()
	msg, err := buildMessage(from, to, subject, s.config.FromName, body, utils.UTCNow())
	if err != nil {
		return err
	}

	client, err := s.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("AUTH"); ok {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}
	if err := client.Mail(from.Address); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT TO failed: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp server rejected message: %w", err)
	}

	s.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return client.Quit()
}

func (s *SMTPEmailService) fromAddress() *mail.Address {
	addr := s.config.FromEmail
	if addr == "" {
		addr = s.config.Username
	}
	return &mail.Address{Name: s.config.FromName, Address: addr}
}

func (s *SMTPEmailService) dial(ctx context.Context) (*smtp.Client, error) {
	timeout := s.config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	dialer := &net.Dialer{Deadline: deadline}
	tlsConfig := &tls.Config{ServerName: s.config.Host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	var err error
	if s.config.Port == 465 {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if s.config.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				client.Close()
				return nil, fmt.Errorf("starttls failed: %w", err)
			}
		}
	}
	return client, nil
}

var letterhead = template.Must(template.New("letterhead").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { font-family: Arial, sans-serif; }
.content { padding: 20px; }
</style>
</head>
<body>
<div class="letterhead"><h2>{{.Sender}}</h2></div>
<div class="content"><p>{{.Body}}</p></div>
<div class="footer"><p>&copy; {{.Year}} {{.Sender}}. All rights reserved.</p></div>
</body>
</html>
`))

// RenderLetterhead wraps a plain-text body in the HTML letterhead. Line breaks are kept.
func RenderLetterhead(sender, body string, now time.Time) (string, error) {
	escaped := strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")
	var buf bytes.Buffer
	err := letterhead.Execute(&buf, struct {
		Sender string
		Body   template.HTML
		Year   int
	}{Sender: sender, Body: template.HTML(escaped), Year: now.Year()})
	if err != nil {
		return "", fmt.Errorf("failed to render letterhead: %w", err)
	}
	return buf.String(), nil
}

func buildMessage(from *mail.Address, to, subject, sender, body string, now time.Time) ([]byte, error) {
	htmlBody, err := RenderLetterhead(sender, body, now)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(htmlBody)
	return buf.Bytes(), nil
}

// MockEmailService records emails instead of sending them
type MockEmailService struct {
	mu   sync.Mutex
	Sent []MockEmail
}

type MockEmail struct {
	To      string
	Subject string
	Body    string
}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

func (m *MockEmailService) SendEmail(ctx context.Context, to, subject, body string) error {
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRecipient, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, MockEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *MockEmailService) SentEmails() []MockEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockEmail, len(m.Sent))
	copy(out, m.Sent)
	return out
}
