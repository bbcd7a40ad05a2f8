// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/app/services"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// Locals keys set by Authenticate
const (
	LocalUserID      = "user_id"
	LocalScope       = "access_scope"
	LocalAccessToken = "access_token"
	LocalRequestID   = "request_id"
)

// SessionResolver turns a bearer token into the user it belongs to
type SessionResolver interface {
	Session(ctx context.Context, accessToken string) (*models.User, *models.AccessScope, error)
}

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	sessions SessionResolver
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

func unauthorized(c fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: code},
	})
}

// BearerToken extracts the token of an "Authorization: Bearer" header
func BearerToken(c fiber.Ctx) (string, string, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", "Authorization header is required", "MISSING_AUTHORIZATION_HEADER"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "Invalid authorization header format. Expected 'Bearer <token>'", "INVALID_AUTHORIZATION_FORMAT"
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", "Access token is required", "MISSING_ACCESS_TOKEN"
	}
	return token, "", ""
}

// Authenticate validates the access token and loads the current user and scope
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, message, code := BearerToken(c)
		if token == "" {
			return unauthorized(c, message, code)
		}

		user, scope, err := m.sessions.Session(c.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				return unauthorized(c, "Access token has expired", "TOKEN_EXPIRED")
			case errors.Is(err, services.ErrTokenRevoked):
				return unauthorized(c, "Access token has been revoked", "TOKEN_REVOKED")
			case errors.Is(err, services.ErrTokenInvalid):
				return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
			case businessflow.IsAccountInactive(err):
				return unauthorized(c, "Account is inactive", "ACCOUNT_INACTIVE")
			case businessflow.IsUnauthorized(err):
				return unauthorized(c, businessflow.ErrorMessage(err), businessflow.ErrorCode(err))
			default:
				logger.FromContext(c.Context()).Error("session lookup failed", zap.Error(err))
				return unauthorized(c, "Token validation failed", "TOKEN_VALIDATION_FAILED")
			}
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalScope, scope)
		c.Locals(LocalAccessToken, token)
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals(LocalRequestID, requestID)
		}

		return c.Next()
	}
}

// RequireRoles rejects users whose current role is not listed
func RequireRoles(roles ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		scope, ok := GetScopeFromContext(c)
		if !ok {
			return unauthorized(c, "Authentication required", "AUTHENTICATION_REQUIRED")
		}
		if !slices.Contains(roles, scope.Role) {
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "You do not have access to this resource",
				Error:   dto.ErrorDetail{Code: "FORBIDDEN"},
			})
		}
		return c.Next()
	}
}

// GetUserIDFromContext extracts the authenticated user ID
func GetUserIDFromContext(c fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals(LocalUserID).(uint)
	return userID, ok && userID != 0
}

// GetScopeFromContext extracts the access scope of the authenticated user
func GetScopeFromContext(c fiber.Ctx) (*models.AccessScope, bool) {
	scope, ok := c.Locals(LocalScope).(*models.AccessScope)
	return scope, ok && scope != nil
}

// GetAccessTokenFromContext returns the bearer token of the request
func GetAccessTokenFromContext(c fiber.Ctx) string {
	token, _ := c.Locals(LocalAccessToken).(string)
	return token
}
