package handlers

import (
	"microloan/internal/core/services"
	"microloan/internal/pkg/pagination"
	"microloan/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan catalogue endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// ShowOnHomeRequest toggles the home page flag
type ShowOnHomeRequest struct {
	ShowOnHome *bool `json:"showOnHome" validate:"required"`
}

// ListLoans lists loans
// @Summary List loans
// @Description Public listing. email narrows to loans owned by that manager.
// @Tags Loans
// @Produce json
// @Param email query string false "Owner email"
// @Param search query string false "Title search"
// @Param category query string false "Category"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) ListLoans(c *fiber.Ctx) error {
	result, err := h.loanService.List(c.Context(), pagination.GetParams(c), services.ListLoansInput{
		Email:    c.Query("email"),
		Search:   c.Query("search"),
		Category: c.Query("category"),
	})
	if err != nil {
		return handleError(c, err, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", result)
}

// ListHomeLoans lists loans flagged for the home page
// @Summary Home page loans
// @Tags Loans
// @Produce json
// @Success 200 {object} response.Response
// @Router /loans/home [get]
func (h *LoanHandler) ListHomeLoans(c *fiber.Ctx) error {
	loans, err := h.loanService.ListHome(c.Context())
	if err != nil {
		return handleError(c, err, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", fiber.Map{
		"loans": loans,
	})
}

// GetLoan gets a loan by loanId
// @Summary Get loan
// @Tags Loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) GetLoan(c *fiber.Ctx) error {
	loan, err := h.loanService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", fiber.Map{
		"loan": loan,
	})
}

// CreateLoan creates a loan (Manager only)
// @Summary Create loan
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateLoanInput true "Loan"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) CreateLoan(c *fiber.Ctx) error {
	var req services.CreateLoanInput
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	loan, err := h.loanService.Create(c.Context(), actor(c).Email, &req)
	if err != nil {
		return handleError(c, err, "Failed to create loan")
	}

	return response.Created(c, "Loan created successfully", fiber.Map{
		"loan": loan,
	})
}

// UpdateLoan updates a loan (Admin, or the owning manager)
// @Summary Update loan
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Param body body services.UpdateLoanInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [patch]
func (h *LoanHandler) UpdateLoan(c *fiber.Ctx) error {
	var req services.UpdateLoanInput
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	loan, err := h.loanService.Update(c.Context(), actor(c), c.Params("id"), &req)
	if err != nil {
		return handleError(c, err, "Failed to update loan")
	}

	return response.Success(c, "Loan updated successfully", fiber.Map{
		"loan": loan,
	})
}

// DeleteLoan deletes a loan (Admin, or the owning manager)
// @Summary Delete loan
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [delete]
func (h *LoanHandler) DeleteLoan(c *fiber.Ctx) error {
	if err := h.loanService.Delete(c.Context(), actor(c), c.Params("id")); err != nil {
		return handleError(c, err, "Failed to delete loan")
	}

	return response.Success(c, "Loan deleted successfully", nil)
}

// SetShowOnHome toggles the home page flag (Admin only)
// @Summary Toggle home page flag
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Param body body ShowOnHomeRequest true "Flag"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/show-on-home [patch]
func (h *LoanHandler) SetShowOnHome(c *fiber.Ctx) error {
	var req ShowOnHomeRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}

	loan, err := h.loanService.SetShowOnHome(c.Context(), c.Params("id"), *req.ShowOnHome)
	if err != nil {
		return handleError(c, err, "Failed to update loan")
	}

	return response.Success(c, "Loan updated successfully", fiber.Map{
		"loan": loan,
	})
}
