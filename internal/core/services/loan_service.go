package services

import (
	"context"
	"errors"
	"strings"

	"microloan/internal/adapters/persistence/models"
	"microloan/internal/adapters/persistence/repositories"
	"microloan/internal/core/domain"
	"microloan/internal/pkg/logger"
	"microloan/internal/pkg/pagination"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HomeLoansLimit caps the home page listing
const HomeLoansLimit = 6

// Actor is the caller of a gated operation, as resolved by the role gate
type Actor struct {
	Email string
	Role  domain.Role
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// LoanService handles the loan catalogue
type LoanService struct {
	loanRepo repositories.LoanRepository
}

// NewLoanService creates a new loan service
func NewLoanService(loanRepo repositories.LoanRepository) *LoanService {
	return &LoanService{loanRepo: loanRepo}
}

// CreateLoanInput represents a new loan posted by a manager
type CreateLoanInput struct {
	LoanTitle         string   `json:"loanTitle" validate:"required,max=200"`
	Description       string   `json:"description"`
	Category          string   `json:"category" validate:"max=100"`
	InterestRate      *float64 `json:"interestRate" validate:"omitempty,gte=0"`
	MaxLoanLimit      *float64 `json:"maxLoanLimit" validate:"omitempty,gte=0"`
	RequiredDocuments string   `json:"requiredDocuments"`
	EMIPlans          string   `json:"emiPlans"`
	ImageURL          string   `json:"imageUrl" validate:"max=500"`
	ShowOnHome        *bool    `json:"showOnHome"`
}

// UpdateLoanInput represents a partial loan update
type UpdateLoanInput struct {
	LoanTitle         *string  `json:"loanTitle" validate:"omitempty,min=1,max=200"`
	Description       *string  `json:"description"`
	Category          *string  `json:"category" validate:"omitempty,max=100"`
	InterestRate      *float64 `json:"interestRate" validate:"omitempty,gte=0"`
	MaxLoanLimit      *float64 `json:"maxLoanLimit" validate:"omitempty,gte=0"`
	RequiredDocuments *string  `json:"requiredDocuments"`
	EMIPlans          *string  `json:"emiPlans"`
	ImageURL          *string  `json:"imageUrl" validate:"omitempty,max=500"`
	ShowOnHome        *bool    `json:"showOnHome"`
}

// ListLoansInput filters the public listing. Email selects loans owned by that manager.
type ListLoansInput struct {
	Email    string
	Search   string
	Category string
}

// List lists loans newest first
func (s *LoanService) List(ctx context.Context, params *pagination.Params, input ListLoansInput) (*pagination.Page[*models.Loan], error) {
	filter := repositories.LoanFilter{
		OwnerEmail: normalizeEmail(input.Email),
		Search:     strings.TrimSpace(input.Search),
		Category:   strings.TrimSpace(input.Category),
	}
	loans, total, err := s.loanRepo.List(ctx, filter, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(loans, params, total), nil
}

// ListHome lists the loans flagged for the home page
func (s *LoanService) ListHome(ctx context.Context) ([]*models.Loan, error) {
	return s.loanRepo.ListHome(ctx, HomeLoansLimit)
}

// Get gets a loan by loanId
func (s *LoanService) Get(ctx context.Context, loanID string) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// Create creates a loan owned by the calling manager
func (s *LoanService) Create(ctx context.Context, managerEmail string, input *CreateLoanInput) (*models.Loan, error) {
	loan := &models.Loan{
		LoanID:            uuid.New().String(),
		LoanTitle:         strings.TrimSpace(input.LoanTitle),
		Description:       input.Description,
		Category:          strings.TrimSpace(input.Category),
		InterestRate:      input.InterestRate,
		MaxLoanLimit:      input.MaxLoanLimit,
		RequiredDocuments: input.RequiredDocuments,
		EMIPlans:          input.EMIPlans,
		ImageURL:          input.ImageURL,
		ShowOnHome:        input.ShowOnHome,
		ManagerEmail:      managerEmail,
		CreatedBy:         managerEmail,
	}
	if loan.ShowOnHome == nil {
		off := false
		loan.ShowOnHome = &off
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	logger.Info(ctx, "loan created", zap.String("loanId", loan.LoanID), zap.String("manager", managerEmail))
	return loan, nil
}

// Update applies a partial update. Managers may only update loans they own.
func (s *LoanService) Update(ctx context.Context, actor Actor, loanID string, input *UpdateLoanInput) (*models.Loan, error) {
	loan, err := s.authorize(ctx, actor, loanID)
	if err != nil {
		return nil, err
	}

	if input.LoanTitle != nil {
		loan.LoanTitle = strings.TrimSpace(*input.LoanTitle)
	}
	if input.Description != nil {
		loan.Description = *input.Description
	}
	if input.Category != nil {
		loan.Category = strings.TrimSpace(*input.Category)
	}
	if input.InterestRate != nil {
		loan.InterestRate = input.InterestRate
	}
	if input.MaxLoanLimit != nil {
		loan.MaxLoanLimit = input.MaxLoanLimit
	}
	if input.RequiredDocuments != nil {
		loan.RequiredDocuments = *input.RequiredDocuments
	}
	if input.EMIPlans != nil {
		loan.EMIPlans = *input.EMIPlans
	}
	if input.ImageURL != nil {
		loan.ImageURL = *input.ImageURL
	}
	if input.ShowOnHome != nil {
		loan.ShowOnHome = input.ShowOnHome
	}

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// Delete removes a loan. Managers may only delete loans they own.
func (s *LoanService) Delete(ctx context.Context, actor Actor, loanID string) error {
	if _, err := s.authorize(ctx, actor, loanID); err != nil {
		return err
	}
	if err := s.loanRepo.Delete(ctx, loanID); err != nil {
		return err
	}

	logger.Info(ctx, "loan deleted", zap.String("loanId", loanID), zap.String("by", actor.Email))
	return nil
}

// SetShowOnHome toggles the home page flag
func (s *LoanService) SetShowOnHome(ctx context.Context, loanID string, show bool) (*models.Loan, error) {
	loan, err := s.Get(ctx, loanID)
	if err != nil {
		return nil, err
	}
	loan.ShowOnHome = &show
	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *LoanService) authorize(ctx context.Context, actor Actor, loanID string) (*models.Loan, error) {
	loan, err := s.Get(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !loan.IsOwnedBy(actor.Email) {
		return nil, domain.ErrNotLoanOwner
	}
	return loan, nil
}
