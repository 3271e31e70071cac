package payment

import (
	"context"
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

// StripeConfig configures the Stripe provider
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// StripeProvider creates Checkout Sessions and verifies Stripe webhooks
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

// NewStripeProvider creates a Stripe payment provider
func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeProvider{api: api, webhookSecret: cfg.WebhookSecret}
}

// Name returns the provider identifier
func (p *StripeProvider) Name() string { return ProviderStripe }

// CreateCheckout creates a hosted Checkout Session for the given amount.
// The intent id travels in ClientReferenceID and metadata so the webhook
// can be tied back to the originating top-up intent.
func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.IntentID),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(MinorUnits(req.Amount, req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("intent_id", req.IntentID)
	params.AddMetadata("user_id", req.UserID)

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessorUnavailable, err)
	}

	return &CheckoutSession{SessionID: sess.ID, PaymentURL: sess.URL}, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts a
// standardized event. Only checkout.session.completed carries payment state;
// other event types come back with Paid=false and an empty intent id.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureVerification, err)
	}

	evt := &WebhookEvent{
		Provider:  ProviderStripe,
		EventType: string(event.Type),
	}

	if event.Type != "checkout.session.completed" {
		return evt, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("payment: malformed checkout session payload: %w", err)
	}

	evt.ExternalID = sess.ID
	evt.Paid = sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
	evt.IntentID = sess.ClientReferenceID
	if evt.IntentID == "" {
		evt.IntentID = sess.Metadata["intent_id"]
	}
	return evt, nil
}
