// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/app/middleware"
	"github.com/amirphl/debt-collection-crm/app/services"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 30 * time.Second

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "len":
		return err.Field() + " must be exactly " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "deal_stage":
		return err.Field() + " is not a known deal stage"
	case "numeric":
		return err.Field() + " must contain only numbers"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

// newValidator returns a validator with the CRM's custom tags registered
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("deal_stage", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || models.IsKnownDealStage(value)
	})
	return v
}

// baseHandler carries the response helpers shared by every handler
type baseHandler struct {
	validator *validator.Validate
	timeout   time.Duration
}

func newBaseHandler() baseHandler {
	return baseHandler{validator: newValidator(), timeout: defaultRequestTimeout}
}

func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// createRequestContext derives a bounded context carrying request-scoped values
func (h *baseHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, h.timeout)

	return ctx, cancel
}

func (h *baseHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))
	return metadata
}

// validate writes a 400 response for an invalid req. ok is false when a response has been written.
func (h *baseHandler) validate(c fiber.Ctx, req any) (bool, error) {
	err := h.validator.Struct(req)
	if err == nil {
		return true, nil
	}
	var validationErrors []string
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			validationErrors = append(validationErrors, getValidationErrorMessage(fe))
		}
	}
	return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
}

// bindJSON parses and validates a JSON body
func (h *baseHandler) bindJSON(c fiber.Ctx, req any) (bool, error) {
	if err := c.Bind().JSON(req); err != nil {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	return h.validate(c, req)
}

// bindQuery parses and validates query parameters
func (h *baseHandler) bindQuery(c fiber.Ctx, req any) (bool, error) {
	if err := c.Bind().Query(req); err != nil {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", err.Error())
	}
	return h.validate(c, req)
}

// currentUser returns the authenticated user ID. A zero ID means a 401 has been written.
func (h *baseHandler) currentUser(c fiber.Ctx) (uint, error) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return 0, h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	return userID, nil
}

// pathID parses a numeric route parameter. A zero ID means a 400 has been written.
func (h *baseHandler) pathID(c fiber.Ctx, name string) (uint, error) {
	id, err := utils.ParseUint(c.Params(name))
	if err != nil || id == 0 {
		return 0, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid "+name, "INVALID_ID", nil)
	}
	return id, nil
}

func readFormFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// handleFlowError maps a business flow error onto an HTTP response
func (h *baseHandler) handleFlowError(c fiber.Ctx, ctx context.Context, err error, fallback string) error {
	code := businessflow.ErrorCode(err)
	message := businessflow.ErrorMessage(err)

	switch {
	case businessflow.IsValidation(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, message, code, nil)
	case businessflow.IsNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, message, code, nil)
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, message, code, nil)
	case businessflow.IsUnauthorized(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, message, code, nil)
	case businessflow.IsConflict(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, message, code, nil)
	}

	if errors.Is(err, services.ErrProviderNotConfigured) {
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Provider is not configured", "PROVIDER_NOT_CONFIGURED", nil)
	}
	if ue, ok := services.IsUpstream(err); ok {
		status := fiber.StatusBadGateway
		if ue.StatusCode >= 400 && ue.StatusCode < 600 {
			status = ue.StatusCode
		}
		logger.FromContext(ctx).Warn("upstream provider failed", zap.String("service", ue.Service), zap.Int("status", ue.StatusCode))
		return h.ErrorResponse(c, status, fallback, "UPSTREAM_ERROR", ue.Body)
	}

	logger.FromContext(ctx).Error(fallback, zap.Error(err), zap.String("path", c.Path()))
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallback, "INTERNAL_ERROR", nil)
}
