package payment

import (
	"context"
	"strings"
)

// BkashProvider is a manual settlement channel: the user pays through their
// bKash wallet outside the platform and then confirms with the wallet
// transaction id. There is no hosted checkout and no webhook.
type BkashProvider struct{}

// NewBkashProvider creates the bKash manual provider
func NewBkashProvider() *BkashProvider {
	return &BkashProvider{}
}

// Name returns the provider identifier
func (p *BkashProvider) Name() string { return ProviderBkash }

// CreateCheckout records the intent without initiating an external session.
// The returned session carries no URL; the frontend shows payment
// instructions and the user confirms manually afterwards.
func (p *BkashProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	return &CheckoutSession{}, nil
}

// ParseWebhook always fails: bKash settlement is confirmed manually
func (p *BkashProvider) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	return nil, ErrUnsupportedProvider
}

// VerifyManual accepts the confirmation when the user supplied a wallet
// transaction id. The id is kept on the intent for back-office reconciliation
// against the bKash merchant statement.
func (p *BkashProvider) VerifyManual(ctx context.Context, externalRef string) (bool, error) {
	return strings.TrimSpace(externalRef) != "", nil
}
