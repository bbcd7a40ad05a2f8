package services

import (
	"errors"
	"fmt"
)

var (
	ErrCaptchaUnavailable    = errors.New("captcha generation failed")
	ErrProviderNotConfigured = errors.New("provider not configured")
	ErrInvalidRecipient      = errors.New("invalid recipient")
	ErrUnsupportedUpload     = errors.New("unsupported upload type")
)

// UpstreamError is a non-success answer from a third-party API
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s responded with status %d: %s", e.Service, e.StatusCode, e.Body)
}

// IsUpstream reports whether err carries an upstream response
func IsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
