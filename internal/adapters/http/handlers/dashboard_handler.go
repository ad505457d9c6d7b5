package handlers

import (
	"microloan/internal/core/services"
	"microloan/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetAdminDashboard returns admin dashboard data
// @Summary Admin Dashboard
// @Description Whole-dataset overview (Admin only)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/dashboard-stats [get]
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetAdminDashboard(c.Context())
	if err != nil {
		return handleError(c, err, "Failed to get admin dashboard")
	}

	return response.Success(c, "Admin dashboard retrieved successfully", data)
}

// GetManagerDashboard returns manager dashboard data
// @Summary Manager Dashboard
// @Description Overview restricted to loans owned by the caller (Manager only)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /manager/dashboard-stats [get]
func (h *DashboardHandler) GetManagerDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetManagerDashboard(c.Context(), actor(c).Email)
	if err != nil {
		return handleError(c, err, "Failed to get manager dashboard")
	}

	return response.Success(c, "Manager dashboard retrieved successfully", data)
}
