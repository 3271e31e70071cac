package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBkashCheckoutIsManual(t *testing.T) {
	p := NewBkashProvider()

	session, err := p.CreateCheckout(context.Background(), CheckoutRequest{
		IntentID: "abc",
		Amount:   2500,
		Currency: "BDT",
	})
	require.NoError(t, err)
	assert.Empty(t, session.PaymentURL, "manual provider has no hosted checkout")
}

func TestBkashRejectsWebhooks(t *testing.T) {
	p := NewBkashProvider()

	_, err := p.ParseWebhook([]byte(`{}`), "sig")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestBkashVerifyManual(t *testing.T) {
	p := NewBkashProvider()

	ok, err := p.VerifyManual(context.Background(), "TRX9H7F2K1")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.VerifyManual(context.Background(), "   ")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(NewBkashProvider())

	p, err := r.Get(ProviderBkash)
	require.NoError(t, err)
	assert.Equal(t, ProviderBkash, p.Name())

	_, err = r.Get("paypal")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}
