package handlers

import (
	"github.com/amirphl/debt-collection-crm/app/dto"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// UserHandler serves the admin user management endpoints
type UserHandler struct {
	baseHandler
	userFlow businessflow.UserFlow
}

func NewUserHandler(userFlow businessflow.UserFlow) *UserHandler {
	return &UserHandler{baseHandler: newBaseHandler(), userFlow: userFlow}
}

// CreateUser adds an admin, agent or client account
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "New user"
// @Success 201 {object} dto.APIResponse{data=dto.UserDTO} "User created"
// @Failure 400 {object} dto.APIResponse "Validation error or duplicate email"
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Router /api/v1/users [post]
func (h *UserHandler) CreateUser(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.CreateUserRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/users")
	defer cancel()

	result, err := h.userFlow.CreateUser(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to create user")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "User created successfully", result)
}

// ListUsers lists CRM users, optionally filtered by role
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param role query string false "admin, agent or client"
// @Success 200 {object} dto.APIResponse{data=dto.ListUsersResponse} "Users"
// @Router /api/v1/users [get]
func (h *UserHandler) ListUsers(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.ListUsersRequest
	if ok, err := h.bindQuery(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/users")
	defer cancel()

	result, err := h.userFlow.ListUsers(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to list users")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Users retrieved successfully", result)
}

// UpdateUser edits a user's profile, role, status or password
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=dto.UserDTO} "User updated"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /api/v1/users/{id} [put]
func (h *UserHandler) UpdateUser(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	targetID, err := h.pathID(c, "id")
	if targetID == 0 {
		return err
	}
	var req dto.UpdateUserRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/users/:id")
	defer cancel()

	result, err := h.userFlow.UpdateUser(ctx, userID, targetID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to update user")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "User updated successfully", result)
}

// DeleteUser removes a non-admin user and unassigns their debtors
// @Summary Delete user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteUserResponse} "User deleted"
// @Failure 403 {object} dto.APIResponse "Admins cannot be deleted"
// @Router /api/v1/users/{id} [delete]
func (h *UserHandler) DeleteUser(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	targetID, err := h.pathID(c, "id")
	if targetID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/users/:id")
	defer cancel()

	result, err := h.userFlow.DeleteUser(ctx, userID, targetID)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to delete user")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "User deleted successfully", result)
}
