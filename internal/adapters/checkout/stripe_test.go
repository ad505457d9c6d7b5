package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"microloan/internal/core/services"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func TestToSession(t *testing.T) {
	s := toSession(&stripe.CheckoutSession{
		ID:              "cs_1",
		URL:             "https://checkout.stripe.com/c/cs_1",
		PaymentStatus:   stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal:     1000,
		Currency:        stripe.CurrencyUSD,
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{Email: "b@x.io"},
		PaymentIntent:   &stripe.PaymentIntent{ID: "pi_1"},
		Metadata:        map[string]string{"applicationId": "a1"},
	})

	require.Equal(t, "paid", s.PaymentStatus)
	require.Equal(t, "usd", s.Currency)
	require.Equal(t, "b@x.io", s.CustomerEmail)
	require.Equal(t, "pi_1", s.PaymentIntentID)
	require.Equal(t, "a1", s.Metadata["applicationId"])
}

func TestToSession_Unpaid(t *testing.T) {
	s := toSession(&stripe.CheckoutSession{ID: "cs_2", PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid})

	require.Equal(t, "unpaid", s.PaymentStatus)
	require.Empty(t, s.PaymentIntentID)
	require.NotNil(t, s.Metadata)
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *StripeProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
	})
	return NewStripeProviderWithBackends("sk_test_123", &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
}

func TestStripeProvider_CreateSession(t *testing.T) {
	var form url.Values
	var path, method string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_1","object":"checkout.session","url":"https://checkout.test/cs_1",` +
			`"payment_status":"unpaid","amount_total":1000,"currency":"usd",` +
			`"metadata":{"applicationId":"app-1","loanId":"L1"}}`))
	})

	s, err := p.CreateSession(context.Background(), &services.CheckoutSessionParams{
		ApplicationID: "app-1",
		LoanID:        "L1",
		LoanTitle:     "Home Loan",
		CustomerEmail: "b@x.io",
		AmountCents:   1000,
		Currency:      "USD",
		SuccessURL:    "https://app.test/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "https://app.test/dashboard/my-loans",
	})
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "/v1/checkout/sessions", path)
	require.Equal(t, "payment", form.Get("mode"))
	require.Equal(t, "b@x.io", form.Get("customer_email"))
	require.Equal(t, "https://app.test/dashboard/my-loans", form.Get("cancel_url"))
	require.Equal(t, "usd", form.Get("line_items[0][price_data][currency]"))
	require.Equal(t, "1000", form.Get("line_items[0][price_data][unit_amount]"))
	require.Equal(t, "Application fee: Home Loan", form.Get("line_items[0][price_data][product_data][name]"))
	require.Equal(t, "1", form.Get("line_items[0][quantity]"))
	require.Equal(t, "app-1", form.Get("metadata[applicationId]"))
	require.Equal(t, "L1", form.Get("metadata[loanId]"))

	require.Equal(t, "cs_1", s.ID)
	require.Equal(t, "https://checkout.test/cs_1", s.URL)
	require.Equal(t, "unpaid", s.PaymentStatus)
	require.Equal(t, "app-1", s.Metadata["applicationId"])
}

func TestStripeProvider_RetrieveSession(t *testing.T) {
	var path, method string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_1","object":"checkout.session","payment_status":"paid",` +
			`"amount_total":1000,"currency":"usd","payment_intent":"pi_9",` +
			`"customer_details":{"email":"b@x.io"},"metadata":{"applicationId":"app-1"}}`))
	})

	s, err := p.RetrieveSession(context.Background(), "cs_1")
	require.NoError(t, err)

	require.Equal(t, http.MethodGet, method)
	require.Equal(t, "/v1/checkout/sessions/cs_1", path)
	require.Equal(t, services.SessionPaid, s.PaymentStatus)
	require.Equal(t, int64(1000), s.AmountTotal)
	require.Equal(t, "pi_9", s.PaymentIntentID)
	require.Equal(t, "b@x.io", s.CustomerEmail)
	require.Equal(t, "app-1", s.Metadata["applicationId"])
}

func TestStripeProvider_PassesContext(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.RetrieveSession(ctx, "cs_1")
	require.Error(t, err)
	require.Zero(t, calls)
}

func TestStripeProvider_UpstreamError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such checkout.session"}}`))
	})

	_, err := p.RetrieveSession(context.Background(), "cs_missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "retrieve checkout session")
}
