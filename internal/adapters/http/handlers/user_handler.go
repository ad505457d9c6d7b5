package handlers

import (
	"microloan/internal/adapters/http/middleware"
	"microloan/internal/core/services"
	"microloan/internal/pkg/pagination"
	"microloan/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers handles listing all users (Admin only)
// @Summary List all users
// @Description Get a paginated list of all users (Admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param search query string false "Match on email or display name"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	result, err := h.userService.ListUsers(c.Context(), pagination.GetParams(c), c.Query("search"))
	if err != nil {
		return handleError(c, err, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", result)
}

// GetRole returns the stored role for an email
// @Summary Get role by email
// @Description Unknown emails report the default user role
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param email path string true "User email"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users/{email}/role [get]
func (h *UserHandler) GetRole(c *fiber.Ctx) error {
	role, err := h.userService.GetRole(c.Context(), c.Params("email"))
	if err != nil {
		return handleError(c, err, "Failed to get role")
	}

	return response.Success(c, "Role retrieved successfully", fiber.Map{
		"role": role,
	})
}

// UpdateRole handles a role change (Admin only)
// @Summary Update user role
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateRoleInput true "New role"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/role [patch]
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	var req services.UpdateRoleInput
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	user, err := h.userService.UpdateRole(c.Context(), id, actor(c).Email, &req)
	if err != nil {
		return handleError(c, err, "Failed to update role")
	}

	return response.Success(c, "Role updated successfully", fiber.Map{
		"user": user,
	})
}

// Suspend handles suspending a user (Admin only)
// @Summary Suspend user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.SuspendInput true "Suspension reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/suspend [patch]
func (h *UserHandler) Suspend(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	var req services.SuspendInput
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	user, err := h.userService.Suspend(c.Context(), id, actor(c).Email, &req)
	if err != nil {
		return handleError(c, err, "Failed to suspend user")
	}

	return response.Success(c, "User suspended successfully", fiber.Map{
		"user": user,
	})
}

// DeleteUser handles deleting a user (Admin only)
// @Summary Delete user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	if err := h.userService.DeleteUser(c.Context(), id, actor(c).Email); err != nil {
		return handleError(c, err, "Failed to delete user")
	}

	return response.Success(c, "User deleted successfully", nil)
}

// GetProfile returns the caller's profile
// @Summary Get my profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetProfile(c.Context(), middleware.CurrentEmail(c))
	if err != nil {
		return handleError(c, err, "Failed to get profile")
	}

	return response.Success(c, "Profile retrieved successfully", fiber.Map{
		"user": user,
	})
}

// UpdateProfile updates the caller's display fields
// @Summary Update my profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile [patch]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req services.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	user, err := h.userService.UpdateProfile(c.Context(), middleware.CurrentEmail(c), &req)
	if err != nil {
		return handleError(c, err, "Failed to update profile")
	}

	return response.Success(c, "Profile updated successfully", fiber.Map{
		"user": user,
	})
}
