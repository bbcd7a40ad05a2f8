package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/amirphl/debt-collection-crm/config"
)

// RecaptchaService verifies browser reCAPTCHA tokens with Google
type RecaptchaService interface {
	Verify(ctx context.Context, token, remoteIP string) (*RecaptchaResult, error)
}

// RecaptchaResult is the siteverify verdict
type RecaptchaResult struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname,omitempty"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

type recaptchaServiceImpl struct {
	config *config.RecaptchaConfig
	client *http.Client
}

func NewRecaptchaService(cfg *config.RecaptchaConfig) RecaptchaService {
	return &recaptchaServiceImpl{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *recaptchaServiceImpl) Verify(ctx context.Context, token, remoteIP string) (*RecaptchaResult, error) {
	if s.config.SecretKey == "" {
		return nil, fmt.Errorf("recaptcha: %w", ErrProviderNotConfigured)
	}

	form := url.Values{}
	form.Set("secret", s.config.SecretKey)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create recaptcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify recaptcha: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &UpstreamError{Service: "recaptcha", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var result RecaptchaResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode recaptcha response: %w", err)
	}
	return &result, nil
}
