package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"microloan/internal/adapters/persistence/models"
	"microloan/internal/adapters/persistence/repositories"
	"microloan/internal/core/domain"
	"microloan/internal/pkg/logger"
	"microloan/internal/pkg/pagination"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApplicationService handles the loan application workflow
type ApplicationService struct {
	appRepo  repositories.ApplicationRepository
	loanRepo repositories.LoanRepository
	now      func() time.Time
}

// NewApplicationService creates a new application service
func NewApplicationService(appRepo repositories.ApplicationRepository, loanRepo repositories.LoanRepository) *ApplicationService {
	return &ApplicationService{
		appRepo:  appRepo,
		loanRepo: loanRepo,
		now:      time.Now,
	}
}

// CreateApplicationInput represents an application submitted by a borrower
type CreateApplicationInput struct {
	LoanID        string            `json:"loanId" validate:"required,max=64"`
	LoanTitle     string            `json:"loanTitle" validate:"max=200"`
	FirstName     string            `json:"firstName" validate:"required,max=100"`
	LastName      string            `json:"lastName" validate:"max=100"`
	ContactNumber string            `json:"contactNumber" validate:"max=50"`
	NationalID    string            `json:"nationalId" validate:"max=50"`
	IncomeSource  string            `json:"incomeSource" validate:"max=100"`
	MonthlyIncome string            `json:"monthlyIncome" validate:"max=50"`
	LoanAmount    models.TextAmount `json:"loanAmount" validate:"required,max=64,amount"`
	Reason        string            `json:"reason"`
	Address       string            `json:"address"`
	ExtraNotes    string            `json:"extraNotes"`
}

// UpdateStatusInput represents a review decision
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// Create records a pending, unpaid application for the caller. The loanId is
// a weak reference: it is not checked, only used to snapshot the title.
func (s *ApplicationService) Create(ctx context.Context, email string, input *CreateApplicationInput) (*models.Application, error) {
	app := &models.Application{
		ApplicationID:        uuid.New().String(),
		LoanID:               strings.TrimSpace(input.LoanID),
		LoanTitle:            strings.TrimSpace(input.LoanTitle),
		Email:                email,
		FirstName:            strings.TrimSpace(input.FirstName),
		LastName:             strings.TrimSpace(input.LastName),
		ContactNumber:        input.ContactNumber,
		NationalID:           input.NationalID,
		IncomeSource:         input.IncomeSource,
		MonthlyIncome:        input.MonthlyIncome,
		LoanAmount:           input.LoanAmount,
		Reason:               input.Reason,
		Address:              input.Address,
		ExtraNotes:           input.ExtraNotes,
		Status:               string(domain.StatusPending),
		ApplicationFeeStatus: string(domain.FeeUnpaid),
	}

	loan, err := s.loanRepo.GetByLoanID(ctx, app.LoanID)
	switch {
	case err == nil:
		app.LoanTitle = loan.LoanTitle
	case errors.Is(err, gorm.ErrRecordNotFound):
		logger.Warn(ctx, "application references unknown loan", zap.String("loanId", app.LoanID))
	default:
		return nil, err
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	logger.Info(ctx, "application submitted",
		zap.String("applicationId", app.ApplicationID),
		zap.String("loanId", app.LoanID),
		zap.String("email", email),
	)
	return app, nil
}

// ListMine lists the caller's applications newest first
func (s *ApplicationService) ListMine(ctx context.Context, email string, params *pagination.Params) (*pagination.Page[*models.Application], error) {
	return s.list(ctx, repositories.ApplicationFilter{Email: email}, params)
}

// Cancel deletes the caller's own application while it is still pending
func (s *ApplicationService) Cancel(ctx context.Context, email, applicationID string) error {
	app, err := s.get(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.Email != email {
		return domain.ErrNotApplicationOwner
	}
	if app.Status != string(domain.StatusPending) {
		return domain.ErrApplicationLocked
	}
	return s.appRepo.Delete(ctx, applicationID)
}

// List lists every application, optionally narrowed to one status
func (s *ApplicationService) List(ctx context.Context, params *pagination.Params, status string) (*pagination.Page[*models.Application], error) {
	filter, err := statusFilter(status)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, filter, params)
}

// ListForManager lists applications on loans owned by managerEmail
func (s *ApplicationService) ListForManager(ctx context.Context, managerEmail string, params *pagination.Params, status string) (*pagination.Page[*models.Application], error) {
	filter, err := statusFilter(status)
	if err != nil {
		return nil, err
	}
	filter.OwnerEmail = managerEmail
	return s.list(ctx, filter, params)
}

// UpdateStatus records a review decision. Managers may only decide on
// applications against loans they own.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor Actor, applicationID string, input *UpdateStatusInput) (*models.Application, error) {
	status := domain.ApplicationStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	app, err := s.get(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		loan, err := s.loanRepo.GetByLoanID(ctx, app.LoanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrNotLoanOwner
			}
			return nil, err
		}
		if !loan.IsOwnedBy(actor.Email) {
			return nil, domain.ErrNotLoanOwner
		}
	}

	now := s.now().UTC()
	app.Status = string(status)
	app.StatusUpdatedAt = &now
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	logger.Info(ctx, "application status changed",
		zap.String("applicationId", app.ApplicationID),
		zap.String("status", app.Status),
		zap.String("by", actor.Email),
	)
	return app, nil
}

func (s *ApplicationService) get(ctx context.Context, applicationID string) (*models.Application, error) {
	app, err := s.appRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

func (s *ApplicationService) list(ctx context.Context, filter repositories.ApplicationFilter, params *pagination.Params) (*pagination.Page[*models.Application], error) {
	apps, total, err := s.appRepo.List(ctx, filter, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(apps, params, total), nil
}

func statusFilter(status string) (repositories.ApplicationFilter, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !domain.ApplicationStatus(status).Valid() {
		return repositories.ApplicationFilter{}, domain.ErrInvalidStatus
	}
	return repositories.ApplicationFilter{Status: status}, nil
}
