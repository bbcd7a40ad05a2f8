// Package businessflow contains the use cases of the debt-collection CRM
package businessflow

import (
	"errors"
	"fmt"
)

// Error classes. Every sentinel below wraps exactly one of them so the
// transport layer can map an error to a status without knowing each case.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// Business flow error constants
var (
	// Session and identity errors
	ErrUnknownRole         = fmt.Errorf("%w: unknown role", ErrUnauthorized)
	ErrSessionUserNotFound = fmt.Errorf("%w: session user not found", ErrUnauthorized)
	ErrAccountInactive     = fmt.Errorf("%w: account is inactive", ErrUnauthorized)
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrInvalidCaptcha      = fmt.Errorf("%w: captcha verification failed", ErrUnauthorized)
	ErrInvalidRefreshToken = fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)

	// Authorization errors
	ErrAdminOnly          = fmt.Errorf("%w: admin access required", ErrForbidden)
	ErrReadOnlyRole       = fmt.Errorf("%w: role is read-only", ErrForbidden)
	ErrDebtorAccessDenied = fmt.Errorf("%w: debtor is not assigned to you", ErrForbidden)
	ErrAdminUndeletable   = fmt.Errorf("%w: admin users cannot be deleted", ErrForbidden)

	// Lookup errors
	ErrUserNotFound    = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrDebtorNotFound  = fmt.Errorf("%w: debtor not found", ErrNotFound)
	ErrPaymentNotFound = fmt.Errorf("%w: payment not found", ErrNotFound)
	ErrPTPNotFound     = fmt.Errorf("%w: PTP not found", ErrNotFound)
	ErrAgentNotFound   = fmt.Errorf("%w: agent not found", ErrNotFound)

	// Conflict errors
	ErrEmailAlreadyExists = fmt.Errorf("%w: User with this email already exists", ErrConflict)

	// Validation errors
	ErrInvalidRole            = fmt.Errorf("%w: role must be one of admin, agent, client", ErrValidation)
	ErrPasswordTooShort       = fmt.Errorf("%w: password is too short", ErrValidation)
	ErrInvalidDealStage       = fmt.Errorf("%w: unknown deal stage", ErrValidation)
	ErrFollowUpDateRequired   = fmt.Errorf("%w: next follow-up date is required", ErrValidation)
	ErrFollowUpDateInPast     = fmt.Errorf("%w: next follow-up date cannot be in the past", ErrValidation)
	ErrFollowUpDateTooFar     = fmt.Errorf("%w: next follow-up date is beyond the allowed window for this stage", ErrValidation)
	ErrInvalidAmount          = fmt.Errorf("%w: amount must be a positive number", ErrValidation)
	ErrInvalidDate            = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidPeriod          = fmt.Errorf("%w: period must be one of week, month, this_week, this_month", ErrValidation)
	ErrInvalidPTPStatus       = fmt.Errorf("%w: invalid PTP status", ErrValidation)
	ErrInvalidFileType        = fmt.Errorf("%w: file type not allowed", ErrValidation)
	ErrFileTooLarge           = fmt.Errorf("%w: file is too large", ErrValidation)
	ErrFileRequired           = fmt.Errorf("%w: file is required", ErrValidation)
	ErrMissingCallFields      = fmt.Errorf("%w: Missing CallSid or StartTime", ErrValidation)
	ErrUnsupportedFormat      = fmt.Errorf("%w: format must be csv or xlsx", ErrValidation)
	ErrMissingRequiredFields  = fmt.Errorf("%w: Missing required fields", ErrValidation)
	ErrRecaptchaTokenRequired = fmt.Errorf("%w: recaptcha token is required", ErrValidation)
	ErrEmptySelection         = fmt.Errorf("%w: at least one id is required", ErrValidation)
	ErrInvalidRecipient       = fmt.Errorf("%w: invalid recipient", ErrValidation)
	ErrMessageRequired        = fmt.Errorf("%w: message is required", ErrValidation)
	ErrUnknownTemplate        = fmt.Errorf("%w: unknown template", ErrValidation)
	ErrInvalidStatusFilter    = fmt.Errorf("%w: status must be verified or pending", ErrValidation)
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// NewValidationError reports a rejected input field
func NewValidationError(code, message string) *BusinessError {
	return &BusinessError{Code: code, Message: message, Err: ErrValidation}
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsUnknownRole(err error) bool {
	return errors.Is(err, ErrUnknownRole)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsDebtorNotFound(err error) bool {
	return errors.Is(err, ErrDebtorNotFound)
}

func IsAdminCannotBeDeleted(err error) bool {
	return errors.Is(err, ErrAdminUndeletable)
}

// ErrorCode returns the machine-readable code for an error, falling back to its class
func ErrorCode(err error) string {
	var be *BusinessError
	if errors.As(err, &be) && be.Code != "" {
		return be.Code
	}
	switch {
	case errors.Is(err, ErrUnknownRole):
		return "UNKNOWN_ROLE"
	case errors.Is(err, ErrAccountInactive):
		return "ACCOUNT_INACTIVE"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrAdminUndeletable):
		return "ADMIN_UNDELETABLE"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// ErrorMessage returns the user-facing message for an error
func ErrorMessage(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Message
	}
	for _, class := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrUnauthorized, ErrConflict} {
		if errors.Is(err, class) {
			return trimClass(err.Error(), class)
		}
	}
	return "An internal server error occurred"
}

func trimClass(msg string, class error) string {
	prefix := class.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
