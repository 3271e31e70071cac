package payment

import (
	"context"
	"errors"
)

// Provider names
const (
	ProviderStripe = "stripe"
	ProviderBkash  = "bkash"
)

var (
	// ErrUnsupportedProvider is returned when no provider is registered under the requested name
	ErrUnsupportedProvider = errors.New("payment: unsupported provider")

	// ErrSignatureVerification is returned when a webhook payload fails signature verification
	ErrSignatureVerification = errors.New("payment: webhook signature verification failed")

	// ErrProcessorUnavailable is returned when the external processor rejects or times out
	// during checkout creation. Callers may retry.
	ErrProcessorUnavailable = errors.New("payment: processor unavailable")
)

// CheckoutRequest is a standardized checkout creation request
type CheckoutRequest struct {
	IntentID    string  // internal top-up intent id, round-tripped through the processor
	UserID      string  // paying user
	Description string  // statement / checkout page description
	Amount      float64 // amount in major currency units
	Currency    string  // ISO code, e.g. "BDT"
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is a standardized checkout creation response
type CheckoutSession struct {
	SessionID  string // processor-side session/payment id
	PaymentURL string // URL to redirect the user to, empty for manual providers
}

// WebhookEvent is a standardized webhook event across providers
type WebhookEvent struct {
	Provider   string // provider name
	EventType  string // provider event type, e.g. "checkout.session.completed"
	IntentID   string // internal intent id recovered from the payload
	ExternalID string // processor-side session/payment id
	Paid       bool   // whether the processor reports the payment as settled
}

// Provider is the interface every payment channel implements.
// Checkout creation is the only outbound call; webhook parsing must verify
// the payload signature before trusting any field.
type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// ManualVerifier is implemented by providers whose payments are confirmed by
// the paying user rather than by a webhook.
type ManualVerifier interface {
	VerifyManual(ctx context.Context, externalRef string) (bool, error)
}

// Registry holds the payment providers configured for this deployment
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a payment provider to the registry
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get retrieves a payment provider by name
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, ErrUnsupportedProvider
	}
	return p, nil
}

// List returns all registered provider names
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
