package handlers

import (
	"microloan/internal/config"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db   *gorm.DB
	mode string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, mode string) *HealthHandler {
	return &HealthHandler{db: db, mode: mode}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "Microloan API is running",
		"mode":    h.mode,
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API and database health
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	status := fiber.StatusOK
	dbStatus := "healthy"
	if err := config.HealthCheck(h.db); err != nil {
		status = fiber.StatusServiceUnavailable
		dbStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"api":      "healthy",
			"database": dbStatus,
		},
	})
}
