package handlers

import (
	"microloan/internal/adapters/http/middleware"
	"microloan/internal/core/services"
	"microloan/internal/pkg/pagination"
	"microloan/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles application-fee payment endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateCheckoutSession opens a checkout session for an application fee
// @Summary Start fee checkout
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CheckoutInput true "Application"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /payments/checkout-session [post]
func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	var req services.CheckoutInput
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	out, err := h.paymentService.CreateCheckoutSession(c.Context(), middleware.CurrentEmail(c), &req)
	if err != nil {
		return handleError(c, err, "Failed to create checkout session")
	}

	return response.Success(c, "Checkout session created", out)
}

// ConfirmPayment records the payment behind a settled session
// @Summary Confirm fee payment
// @Description Idempotent: repeated calls return alreadyExists with the original payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ConfirmInput true "Session"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /payments/confirm [post]
func (h *PaymentHandler) ConfirmPayment(c *fiber.Ctx) error {
	var req services.ConfirmInput
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	out, err := h.paymentService.Confirm(c.Context(), middleware.CurrentEmail(c), &req)
	if err != nil {
		return handleError(c, err, "Failed to confirm payment")
	}

	if out.AlreadyExists {
		return response.Success(c, "Payment already recorded", out)
	}
	return response.Created(c, "Payment recorded successfully", out)
}

// ListMyPayments lists the caller's payments
// @Summary My payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /payments/me [get]
func (h *PaymentHandler) ListMyPayments(c *fiber.Ctx) error {
	payments, err := h.paymentService.ListMine(c.Context(), middleware.CurrentEmail(c))
	if err != nil {
		return handleError(c, err, "Failed to list payments")
	}

	return response.Success(c, "Payments retrieved successfully", fiber.Map{
		"payments": payments,
	})
}

// ListPayments lists every payment (Admin only)
// @Summary All payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /payments [get]
func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	result, err := h.paymentService.List(c.Context(), pagination.GetParams(c))
	if err != nil {
		return handleError(c, err, "Failed to list payments")
	}

	return response.Success(c, "Payments retrieved successfully", result)
}
