// Package checkout adapts hosted payment checkout providers to the payment service.
package checkout

import (
	"context"
	"fmt"
	"strings"

	"microloan/internal/core/services"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider creates Stripe Checkout sessions for application fees
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider creates a provider bound to secretKey
func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{api: client.New(secretKey, nil)}
}

// NewStripeProviderWithBackends points the client at the given backends
func NewStripeProviderWithBackends(secretKey string, backends *stripe.Backends) *StripeProvider {
	return &StripeProvider{api: client.New(secretKey, backends)}
}

// CreateSession opens a one-item payment session for the fee
func (p *StripeProvider) CreateSession(ctx context.Context, in *services.CheckoutSessionParams) (*services.CheckoutSession, error) {
	name := "Loan application fee"
	if in.LoanTitle != "" {
		name = fmt.Sprintf("Application fee: %s", in.LoanTitle)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(in.CustomerEmail),
		SuccessURL:    stripe.String(in.SuccessURL),
		CancelURL:     stripe.String(in.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(in.Currency)),
					UnitAmount: stripe.Int64(in.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("applicationId", in.ApplicationID)
	params.AddMetadata("loanId", in.LoanID)

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return toSession(s), nil
}

// RetrieveSession reads back a session by id
func (p *StripeProvider) RetrieveSession(ctx context.Context, sessionID string) (*services.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: retrieve checkout session: %w", err)
	}
	return toSession(s), nil
}

func toSession(s *stripe.CheckoutSession) *services.CheckoutSession {
	out := &services.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		CustomerEmail: s.CustomerEmail,
		Metadata:      s.Metadata,
	}
	if out.CustomerEmail == "" && s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return out
}

var _ services.CheckoutProvider = (*StripeProvider)(nil)
