package topup

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/skillswap-api/internal/pkg/payment"
	"github.com/skillswap/skillswap-api/internal/pkg/response"
)

// fakeStripe stands in for the real provider so webhook handling can be
// exercised without Stripe signatures.
type fakeStripe struct {
	event *payment.WebhookEvent
	err   error
}

func (f *fakeStripe) Name() string { return payment.ProviderStripe }

func (f *fakeStripe) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	return &payment.CheckoutSession{SessionID: "cs_test", PaymentURL: "https://checkout.test/cs_test"}, nil
}

func (f *fakeStripe) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func newWebhookHandler(t *testing.T, fake *fakeStripe) *Handler {
	t.Helper()

	registry := payment.NewRegistry()
	registry.Register(fake)

	svc := NewService(nil, nil, registry, nil, Limits{MinCredits: 1, MaxCredits: 500}, 50, "BDT", "", "")
	return NewHandler(svc, registry)
}

func postWebhook(h *Handler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", signature)
	rec := httptest.NewRecorder()
	h.StripeWebhook(rec, req)
	return rec
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	h := newWebhookHandler(t, &fakeStripe{err: payment.ErrSignatureVerification})

	rec := postWebhook(h, []byte(`{}`), "bad-signature")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "SIGNATURE_VERIFICATION_FAILED", resp.Error.Code)
}

func TestStripeWebhookIgnoresEventsWithoutIntent(t *testing.T) {
	h := newWebhookHandler(t, &fakeStripe{event: &payment.WebhookEvent{
		Provider:  payment.ProviderStripe,
		EventType: "payment_intent.created",
		Paid:      false,
	}})

	rec := postWebhook(h, []byte(`{}`), "sig")

	// Nothing to reconcile, but the event is acknowledged so the
	// provider doesn't redeliver it forever.
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStripeWebhookIgnoresMalformedIntentReference(t *testing.T) {
	h := newWebhookHandler(t, &fakeStripe{event: &payment.WebhookEvent{
		Provider:   payment.ProviderStripe,
		EventType:  "checkout.session.completed",
		IntentID:   "not-a-uuid",
		ExternalID: "cs_123",
		Paid:       true,
	}})

	rec := postWebhook(h, []byte(`{}`), "sig")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStripeWebhookUnparseablePayload(t *testing.T) {
	h := newWebhookHandler(t, &fakeStripe{err: assertableErr("malformed payload")})

	rec := postWebhook(h, []byte(`not-json`), "sig")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type assertableErr string

func (e assertableErr) Error() string { return string(e) }
