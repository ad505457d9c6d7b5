package handlers

import (
	"microloan/internal/adapters/http/middleware"
	"microloan/internal/core/services"
	"microloan/internal/pkg/pagination"
	"microloan/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles loan application endpoints
type ApplicationHandler struct {
	appService *services.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(appService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

// CreateApplication submits an application for the caller
// @Summary Apply for a loan
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateApplicationInput true "Application"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /applications [post]
func (h *ApplicationHandler) CreateApplication(c *fiber.Ctx) error {
	var req services.CreateApplicationInput
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	app, err := h.appService.Create(c.Context(), middleware.CurrentEmail(c), &req)
	if err != nil {
		return handleError(c, err, "Failed to submit application")
	}

	return response.Created(c, "Application submitted successfully", fiber.Map{
		"application": app,
	})
}

// ListMyApplications lists the caller's applications
// @Summary My applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /applications/me [get]
func (h *ApplicationHandler) ListMyApplications(c *fiber.Ctx) error {
	result, err := h.appService.ListMine(c.Context(), middleware.CurrentEmail(c), pagination.GetParams(c))
	if err != nil {
		return handleError(c, err, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved successfully", result)
}

// CancelApplication deletes the caller's pending application
// @Summary Cancel my application
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) CancelApplication(c *fiber.Ctx) error {
	if err := h.appService.Cancel(c.Context(), middleware.CurrentEmail(c), c.Params("id")); err != nil {
		return handleError(c, err, "Failed to cancel application")
	}

	return response.Success(c, "Application cancelled successfully", nil)
}

// ListApplications lists every application (Admin only)
// @Summary All applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /applications [get]
func (h *ApplicationHandler) ListApplications(c *fiber.Ctx) error {
	result, err := h.appService.List(c.Context(), pagination.GetParams(c), c.Query("status"))
	if err != nil {
		return handleError(c, err, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved successfully", result)
}

// ListManagerApplications lists applications on the caller's loans (Manager only)
// @Summary Applications on my loans
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /manager/applications [get]
func (h *ApplicationHandler) ListManagerApplications(c *fiber.Ctx) error {
	result, err := h.appService.ListForManager(c.Context(), actor(c).Email, pagination.GetParams(c), c.Query("status"))
	if err != nil {
		return handleError(c, err, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved successfully", result)
}

// UpdateStatus records a review decision (Admin, or the owning manager)
// @Summary Update application status
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param body body services.UpdateStatusInput true "Decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	var req services.UpdateStatusInput
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	app, err := h.appService.UpdateStatus(c.Context(), actor(c), c.Params("id"), &req)
	if err != nil {
		return handleError(c, err, "Failed to update application")
	}

	return response.Success(c, "Application updated successfully", fiber.Map{
		"application": app,
	})
}
