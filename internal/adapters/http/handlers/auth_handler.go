package handlers

import (
	"microloan/internal/adapters/http/middleware"
	"microloan/internal/core/services"
	"microloan/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create an account with the default user role
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	result, err := h.authService.Register(c.Context(), &req)
	if err != nil {
		return handleError(c, err, "Failed to register user")
	}

	return response.Created(c, "User registered successfully", result)
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with email and password and return an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	result, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		return handleError(c, err, "Failed to login")
	}

	return response.Success(c, "Login successful", result)
}

// Me returns the current user
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.authService.Me(c.Context(), middleware.CurrentEmail(c))
	if err != nil {
		return handleError(c, err, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user,
	})
}

