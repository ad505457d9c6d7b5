package handlers

import (
	"errors"
	"strconv"

	"microloan/internal/adapters/http/middleware"
	"microloan/internal/core/domain"
	"microloan/internal/core/services"
	"microloan/internal/pkg/logger"
	"microloan/internal/pkg/response"
	"microloan/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var errInvalidBody = errors.New("invalid request body")

// paramError reports a malformed path parameter
type paramError struct {
	name string
}

func (e *paramError) Error() string {
	return "invalid " + e.name
}

// parseBody parses the JSON body into dst and validates its struct tags
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody
	}
	return validate.Struct(dst)
}

// paramID parses a numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, &paramError{name: name}
	}
	return uint(id), nil
}

// badRequest renders a body or path-parameter error for the client
func badRequest(c *fiber.Ctx, err error) error {
	var pe *paramError
	switch {
	case errors.Is(err, errInvalidBody):
		return response.BadRequest(c, "Invalid request body")
	case errors.As(err, &pe):
		return response.BadRequest(c, "Invalid "+pe.name)
	default:
		return response.BadRequest(c, err.Error())
	}
}

// actor returns the caller resolved by the role gate
func actor(c *fiber.Ctx) services.Actor {
	user := middleware.CurrentUser(c)
	if user == nil {
		return services.Actor{Email: middleware.CurrentEmail(c)}
	}
	return services.Actor{Email: user.Email, Role: user.RoleValue()}
}

// handleError maps domain errors onto the response envelope
func handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, domain.ErrLoanNotFound):
		return response.NotFound(c, "Loan not found")
	case errors.Is(err, domain.ErrApplicationNotFound):
		return response.NotFound(c, "Application not found")
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return response.Conflict(c, "Email already registered")
	case errors.Is(err, domain.ErrAlreadyPaid):
		return response.Conflict(c, "Application fee already paid")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return response.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, domain.ErrNotLoanOwner),
		errors.Is(err, domain.ErrNotApplicationOwner):
		return response.Forbidden(c)
	case errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrCannotChangeOwnRole),
		errors.Is(err, domain.ErrCannotDeleteSelf),
		errors.Is(err, domain.ErrApplicationLocked),
		errors.Is(err, domain.ErrPaymentNotPaid):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrUpstream):
		logger.Error(c.Context(), fallback, zap.Error(err))
		return response.BadGateway(c, "Payment provider unavailable")
	default:
		logger.Error(c.Context(), fallback, zap.Error(err))
		return response.InternalServerError(c, fallback)
	}
}
