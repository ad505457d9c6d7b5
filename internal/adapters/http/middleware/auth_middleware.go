package middleware

import (
	"context"
	"errors"
	"strings"

	"microloan/internal/adapters/persistence/models"
	"microloan/internal/core/domain"
	"microloan/internal/pkg/jwt"
	"microloan/internal/pkg/logger"
	"microloan/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Locals keys set by the gate
const (
	LocalEmail = "email"
	LocalUser  = "user"
)

// TokenVerifier verifies a bearer token and returns its claims
type TokenVerifier interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// UserLookup loads the record behind a verified email
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Authenticate requires an "Authorization: Bearer <token>" header and stores
// the verified email in locals. It never touches the user store.
func Authenticate(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return response.Unauthorized(c)
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return response.Unauthorized(c)
		}

		claims, err := verifier.ValidateAccessToken(token)
		if err != nil {
			return response.Unauthorized(c)
		}

		c.Locals(LocalEmail, claims.Email)
		return c.Next()
	}
}

// RequireRole re-reads the caller's record on every request and admits only
// roles in allowed. It must run after Authenticate.
func RequireRole(users UserLookup, allowed domain.RoleSet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := CurrentEmail(c)
		if email == "" {
			return response.Unauthorized(c)
		}

		user, err := users.GetByEmail(c.Context(), email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.Forbidden(c)
			}
			logger.Error(c.Context(), "role lookup failed", zap.String("email", email), zap.Error(err))
			return response.InternalServerError(c, "Failed to verify access")
		}

		if !allowed.Contains(user.RoleValue()) {
			return response.Forbidden(c)
		}

		c.Locals(LocalUser, user)
		return c.Next()
	}
}

// AdminOnly allows only the admin role
func AdminOnly(users UserLookup) fiber.Handler {
	return RequireRole(users, domain.AdminOnly)
}

// ManagerOnly allows only the manager role
func ManagerOnly(users UserLookup) fiber.Handler {
	return RequireRole(users, domain.ManagerOnly)
}

// AdminOrManager allows the admin and manager roles
func AdminOrManager(users UserLookup) fiber.Handler {
	return RequireRole(users, domain.AdminOrManager)
}

// CurrentEmail returns the email stored by Authenticate
func CurrentEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalEmail).(string)
	return email
}

// CurrentUser returns the record loaded by RequireRole, or nil
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalUser).(*models.User)
	return user
}
