package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"microloan/internal/adapters/persistence/models"
	"microloan/internal/adapters/persistence/repositories"
	"microloan/internal/config"
	"microloan/internal/core/domain"
	"microloan/internal/pkg/logger"
	"microloan/internal/pkg/pagination"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionPaid is the payment status of a settled checkout session
const SessionPaid = "paid"

// CheckoutSessionParams describes the application fee to collect
type CheckoutSessionParams struct {
	ApplicationID string
	LoanID        string
	LoanTitle     string
	CustomerEmail string
	AmountCents   int64
	Currency      string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the provider's view of a checkout session
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   string
	AmountTotal     int64
	Currency        string
	CustomerEmail   string
	PaymentIntentID string
	Metadata        map[string]string
}

// CheckoutProvider creates and retrieves hosted checkout sessions
type CheckoutProvider interface {
	CreateSession(ctx context.Context, params *CheckoutSessionParams) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// PaymentService handles application-fee payments
type PaymentService struct {
	paymentRepo repositories.PaymentRepository
	appRepo     repositories.ApplicationRepository
	provider    CheckoutProvider
	cfg         config.StripeConfig
	now         func() time.Time
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	appRepo repositories.ApplicationRepository,
	provider CheckoutProvider,
	cfg config.StripeConfig,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		appRepo:     appRepo,
		provider:    provider,
		cfg:         cfg,
		now:         time.Now,
	}
}

// CheckoutInput represents a checkout request
type CheckoutInput struct {
	ApplicationID string `json:"applicationId" validate:"required"`
}

// ConfirmInput represents a confirmation request
type ConfirmInput struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// CheckoutOutput is returned to the client to redirect to
type CheckoutOutput struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// ConfirmOutput reports the recorded payment
type ConfirmOutput struct {
	AlreadyExists bool            `json:"alreadyExists"`
	Payment       *models.Payment `json:"payment"`
}

// CreateCheckoutSession opens a checkout session for the caller's application fee
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, email string, input *CheckoutInput) (*CheckoutOutput, error) {
	app, err := s.appRepo.GetByApplicationID(ctx, input.ApplicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	if app.Email != email {
		return nil, domain.ErrNotApplicationOwner
	}
	if app.ApplicationFeeStatus == string(domain.FeePaid) {
		return nil, domain.ErrAlreadyPaid
	}

	base := strings.TrimRight(s.cfg.ClientURL, "/")
	session, err := s.provider.CreateSession(ctx, &CheckoutSessionParams{
		ApplicationID: app.ApplicationID,
		LoanID:        app.LoanID,
		LoanTitle:     app.LoanTitle,
		CustomerEmail: email,
		AmountCents:   s.cfg.FeeCents,
		Currency:      s.cfg.FeeCurrency,
		SuccessURL:    base + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     base + "/dashboard/my-loans",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %v", domain.ErrUpstream, err)
	}

	logger.Info(ctx, "checkout session created",
		zap.String("sessionId", session.ID),
		zap.String("applicationId", app.ApplicationID),
	)
	return &CheckoutOutput{SessionID: session.ID, URL: session.URL}, nil
}

// Confirm records the payment behind a settled session. The transaction id is
// unique in the store, so repeated confirmations return the original payment.
func (s *PaymentService) Confirm(ctx context.Context, email string, input *ConfirmInput) (*ConfirmOutput, error) {
	session, err := s.provider.RetrieveSession(ctx, input.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve checkout session: %v", domain.ErrUpstream, err)
	}
	if session.PaymentStatus != SessionPaid {
		return nil, domain.ErrPaymentNotPaid
	}

	transactionID := session.PaymentIntentID
	if transactionID == "" {
		transactionID = session.ID
	}
	customer := session.CustomerEmail
	if customer == "" {
		customer = email
	}

	payment := &models.Payment{
		TransactionID: transactionID,
		ApplicationID: session.Metadata["applicationId"],
		LoanID:        session.Metadata["loanId"],
		Amount:        decimal.New(session.AmountTotal, -2),
		Currency:      strings.ToLower(session.Currency),
		CustomerEmail: normalizeEmail(customer),
		PaidAt:        s.now().UTC(),
	}

	created, err := s.paymentRepo.CreateIfAbsent(ctx, payment)
	if err != nil {
		return nil, err
	}
	if !created {
		payment, err = s.paymentRepo.GetByTransactionID(ctx, transactionID)
		if err != nil {
			return nil, err
		}
	}

	// also on replays, in case an earlier confirmation stopped after the insert
	if err := s.markFeePaid(ctx, payment.ApplicationID); err != nil {
		return nil, err
	}

	if created {
		logger.Info(ctx, "payment recorded",
			zap.String("transactionId", transactionID),
			zap.String("applicationId", payment.ApplicationID),
		)
	}
	return &ConfirmOutput{AlreadyExists: !created, Payment: payment}, nil
}

// ListMine lists the caller's payments
func (s *PaymentService) ListMine(ctx context.Context, email string) ([]*models.Payment, error) {
	return s.paymentRepo.ListByEmail(ctx, email)
}

// List lists every payment
func (s *PaymentService) List(ctx context.Context, params *pagination.Params) (*pagination.Page[*models.Payment], error) {
	payments, total, err := s.paymentRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(payments, params, total), nil
}

func (s *PaymentService) markFeePaid(ctx context.Context, applicationID string) error {
	if applicationID == "" {
		return nil
	}
	app, err := s.appRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn(ctx, "payment for unknown application", zap.String("applicationId", applicationID))
			return nil
		}
		return err
	}
	if app.ApplicationFeeStatus == string(domain.FeePaid) {
		return nil
	}
	app.ApplicationFeeStatus = string(domain.FeePaid)
	return s.appRepo.Update(ctx, app)
}
