package handlers

import (
	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/app/middleware"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Captcha(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	Refresh(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
	Me(c fiber.Ctx) error
	VerifyRecaptcha(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	baseHandler
	authFlow businessflow.AuthFlow
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authFlow businessflow.AuthFlow) *AuthHandler {
	return &AuthHandler{baseHandler: newBaseHandler(), authFlow: authFlow}
}

// Captcha issues a rotate captcha challenge
// @Summary Login captcha
// @Description Generate a rotate captcha that must be solved before login
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CaptchaResponse} "Captcha generated"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/captcha [get]
func (h *AuthHandler) Captcha(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/captcha")
	defer cancel()

	result, err := h.authFlow.Captcha(ctx)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Captcha generation failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Captcha generated", result)
}

// Login authenticates a user by email and password
// @Summary User Login
// @Description Authenticate with email and password and receive a token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/login")
	defer cancel()

	result, err := h.authFlow.Login(ctx, &req, h.clientMetadata(c))
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Login failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// Refresh exchanges a refresh token for a new token pair
// @Summary Refresh tokens
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Tokens refreshed"
// @Failure 401 {object} dto.APIResponse "Invalid refresh token"
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/refresh")
	defer cancel()

	result, err := h.authFlow.Refresh(ctx, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Token refresh failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Tokens refreshed", result)
}

// Logout revokes the current access token and, when given, the refresh token
// @Summary Logout
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RefreshTokenRequest false "Refresh token to revoke"
// @Success 200 {object} dto.APIResponse "Logged out"
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/logout")
	defer cancel()

	if err := h.authFlow.Logout(ctx, middleware.GetAccessTokenFromContext(c), req.RefreshToken); err != nil {
		return h.handleFlowError(c, ctx, err, "Logout failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Logged out", nil)
}

// Me returns the authenticated user
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserDTO} "Current user"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/me")
	defer cancel()

	result, err := h.authFlow.Me(ctx, userID)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to load user")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Current user", result)
}

// VerifyRecaptcha checks a browser reCAPTCHA token
// @Summary Verify reCAPTCHA
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RecaptchaVerifyRequest true "reCAPTCHA token"
// @Success 200 {object} dto.APIResponse{data=dto.RecaptchaVerifyResponse} "Verification result"
// @Failure 400 {object} dto.APIResponse "Missing token"
// @Router /api/v1/auth/verify-recaptcha [post]
func (h *AuthHandler) VerifyRecaptcha(c fiber.Ctx) error {
	var req dto.RecaptchaVerifyRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/verify-recaptcha")
	defer cancel()

	result, err := h.authFlow.VerifyRecaptcha(ctx, &req, h.clientMetadata(c))
	if err != nil {
		return h.handleFlowError(c, ctx, err, "reCAPTCHA verification failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "reCAPTCHA verified", result)
}
