package services

import (
	"context"
	"errors"
	"testing"

	"microloan/internal/adapters/persistence/models"
	"microloan/internal/adapters/persistence/repositories"
	"microloan/internal/adapters/persistence/testdb"
	"microloan/internal/config"
	"microloan/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProvider struct {
	sessions map[string]*CheckoutSession
	created  []*CheckoutSessionParams
	err      error
}

func (f *fakeProvider) CreateSession(_ context.Context, p *CheckoutSessionParams) (*CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, p)
	return &CheckoutSession{ID: "cs_new", URL: "https://checkout.test/cs_new"}, nil
}

func (f *fakeProvider) RetrieveSession(_ context.Context, id string) (*CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, errors.New("no such session")
	}
	return s, nil
}

func newPaymentService(t *testing.T, provider CheckoutProvider) (*PaymentService, *gorm.DB) {
	t.Helper()
	db := testdb.New(t)
	s := NewPaymentService(
		repositories.NewPaymentRepository(db),
		repositories.NewApplicationRepository(db),
		provider,
		config.StripeConfig{ClientURL: "https://app.test/", FeeCents: 1000, FeeCurrency: "usd"},
	)
	return s, db
}

func TestPaymentService_ConfirmIsIdempotent(t *testing.T) {
	provider := &fakeProvider{sessions: map[string]*CheckoutSession{
		"cs_1": {
			ID:              "cs_1",
			PaymentStatus:   SessionPaid,
			AmountTotal:     1000,
			Currency:        "USD",
			CustomerEmail:   "b@x.io",
			PaymentIntentID: "pi_1",
			Metadata:        map[string]string{"applicationId": "a1", "loanId": "L1"},
		},
	}}
	s, db := newPaymentService(t, provider)
	ctx := context.Background()
	testdb.MustCreate(t, db, &models.Application{ApplicationID: "a1", LoanID: "L1", Email: "b@x.io", Status: "pending", ApplicationFeeStatus: "unpaid"})

	first, err := s.Confirm(ctx, "b@x.io", &ConfirmInput{SessionID: "cs_1"})
	require.NoError(t, err)
	require.False(t, first.AlreadyExists)
	require.Equal(t, "pi_1", first.Payment.TransactionID)
	require.True(t, decimal.NewFromInt(10).Equal(first.Payment.Amount))
	require.Equal(t, "usd", first.Payment.Currency)

	second, err := s.Confirm(ctx, "b@x.io", &ConfirmInput{SessionID: "cs_1"})
	require.NoError(t, err)
	require.True(t, second.AlreadyExists)
	require.Equal(t, first.Payment.TransactionID, second.Payment.TransactionID)
	require.Equal(t, first.Payment.ApplicationID, second.Payment.ApplicationID)
	require.True(t, first.Payment.PaidAt.Equal(second.Payment.PaidAt))

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var app models.Application
	require.NoError(t, db.Where("application_id = ?", "a1").First(&app).Error)
	require.Equal(t, string(domain.FeePaid), app.ApplicationFeeStatus)
}

func TestPaymentService_ConfirmUnpaid(t *testing.T) {
	provider := &fakeProvider{sessions: map[string]*CheckoutSession{
		"cs_open": {ID: "cs_open", PaymentStatus: "unpaid"},
	}}
	s, _ := newPaymentService(t, provider)

	_, err := s.Confirm(context.Background(), "b@x.io", &ConfirmInput{SessionID: "cs_open"})
	require.ErrorIs(t, err, domain.ErrPaymentNotPaid)

	_, err = s.Confirm(context.Background(), "b@x.io", &ConfirmInput{SessionID: "cs_missing"})
	require.ErrorIs(t, err, domain.ErrUpstream)
}

func TestPaymentService_CreateCheckoutSession(t *testing.T) {
	provider := &fakeProvider{}
	s, db := newPaymentService(t, provider)
	ctx := context.Background()
	testdb.MustCreate(t, db,
		&models.Application{ApplicationID: "a1", LoanID: "L1", LoanTitle: "Home", Email: "b@x.io", ApplicationFeeStatus: "unpaid"},
		&models.Application{ApplicationID: "a2", LoanID: "L1", Email: "b@x.io", ApplicationFeeStatus: "paid"},
	)

	out, err := s.CreateCheckoutSession(ctx, "b@x.io", &CheckoutInput{ApplicationID: "a1"})
	require.NoError(t, err)
	require.Equal(t, "https://checkout.test/cs_new", out.URL)
	require.Len(t, provider.created, 1)
	p := provider.created[0]
	require.Equal(t, int64(1000), p.AmountCents)
	require.Equal(t, "L1", p.LoanID)
	require.Equal(t, "https://app.test/dashboard/my-loans", p.CancelURL)

	_, err = s.CreateCheckoutSession(ctx, "b@x.io", &CheckoutInput{ApplicationID: "a2"})
	require.ErrorIs(t, err, domain.ErrAlreadyPaid)

	_, err = s.CreateCheckoutSession(ctx, "other@x.io", &CheckoutInput{ApplicationID: "a1"})
	require.ErrorIs(t, err, domain.ErrNotApplicationOwner)

	provider.err = errors.New("stripe down")
	_, err = s.CreateCheckoutSession(ctx, "b@x.io", &CheckoutInput{ApplicationID: "a1"})
	require.ErrorIs(t, err, domain.ErrUpstream)
}
