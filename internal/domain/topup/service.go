package topup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/skillswap/skillswap-api/internal/domain/ledger"
	"github.com/skillswap/skillswap-api/internal/pkg/payment"
)

// Notifier delivers best-effort event notifications to users
type Notifier interface {
	Notify(ctx context.Context, userIDs []uuid.UUID, event string, payload map[string]interface{})
}

// Limits bound the size of a single top-up, in credits
type Limits struct {
	MinCredits int64
	MaxCredits int64
}

// Service owns the top-up lifecycle. Confirmation is reconciled through a
// single path regardless of whether it arrives from a webhook, a manual
// verification, or a retried client; the database claim guarantees the
// ledger credit happens exactly once per intent.
type Service struct {
	repo       *Repository
	ledger     *ledger.Service
	registry   *payment.Registry
	notifier   Notifier
	limits     Limits
	creditRate float64
	currency   string
	successURL string
	cancelURL  string
}

func NewService(repo *Repository, ledgerSvc *ledger.Service, registry *payment.Registry, notifier Notifier, limits Limits, creditRate float64, currency, successURL, cancelURL string) *Service {
	return &Service{
		repo:       repo,
		ledger:     ledgerSvc,
		registry:   registry,
		notifier:   notifier,
		limits:     limits,
		creditRate: creditRate,
		currency:   currency,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// ConfirmResult reports the outcome of a confirmation attempt.
// AlreadyConfirmed distinguishes a replay from the first delivery; both are
// success to the caller.
type ConfirmResult struct {
	Intent           *Intent `json:"intent"`
	CreditsAdded     int64   `json:"credits_added"`
	Balance          int64   `json:"balance"`
	AlreadyConfirmed bool    `json:"already_confirmed"`
}

// Start creates a top-up intent and hands off to the provider's checkout.
// Retrying the same purchase on the same day returns the open intent
// instead of creating a duplicate.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, provider string, credits int64) (*Intent, error) {
	if credits < s.limits.MinCredits || credits > s.limits.MaxCredits {
		return nil, fmt.Errorf("%w: %d credits (allowed %d-%d)", ErrInvalidCredits, credits, s.limits.MinCredits, s.limits.MaxCredits)
	}

	prov, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	key := IdempotencyKey(userID, provider, credits, time.Now())
	if existing, err := s.repo.FindActiveByKey(ctx, key); err != nil {
		return nil, err
	} else if existing != nil {
		log.Info().Str("intent_id", existing.ID.String()).Msg("reusing open top-up intent")
		return existing, nil
	}

	in := &Intent{
		UserID:         userID,
		Provider:       provider,
		Credits:        credits,
		AmountFiat:     payment.RoundMoney(float64(credits) * s.creditRate),
		Currency:       s.currency,
		Status:         StatusInitiated,
		IdempotencyKey: key,
	}
	if err := s.repo.Create(ctx, in); err != nil {
		return nil, err
	}

	session, err := prov.CreateCheckout(ctx, payment.CheckoutRequest{
		IntentID:    in.ID.String(),
		UserID:      userID.String(),
		Description: fmt.Sprintf("%d credits", credits),
		Amount:      in.AmountFiat,
		Currency:    in.Currency,
		SuccessURL:  s.successURL,
		CancelURL:   s.cancelURL,
	})
	if err != nil {
		// Intent stays initiated; the client can retry and reuse it.
		return nil, err
	}

	if session.SessionID != "" {
		if err := s.repo.MarkPending(ctx, in.ID, session.SessionID, session.PaymentURL); err != nil {
			return nil, err
		}
		in.Status = StatusPending
		in.ExternalID.String, in.ExternalID.Valid = session.SessionID, true
		in.PaymentURL = session.PaymentURL
	}

	return in, nil
}

// Confirm verifies a manual payment reference and reconciles the intent.
// Providers that settle via webhook reject this path.
func (s *Service) Confirm(ctx context.Context, userID, intentID uuid.UUID, externalRef string) (*ConfirmResult, error) {
	in, err := s.repo.GetByID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if in.UserID != userID {
		return nil, ErrForbidden
	}
	if in.Status == StatusConfirmed {
		return s.confirmedResult(ctx, in, true)
	}
	if in.Status == StatusFailed {
		return nil, ErrAlreadyFailed
	}

	prov, err := s.registry.Get(in.Provider)
	if err != nil {
		return nil, err
	}
	verifier, ok := prov.(payment.ManualVerifier)
	if !ok {
		return nil, payment.ErrUnsupportedProvider
	}

	verified, err := verifier.VerifyManual(ctx, externalRef)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, ErrVerificationFailed
	}

	return s.reconcileConfirm(ctx, in.ID, externalRef)
}

// HandleWebhookEvent reconciles an intent from a verified provider webhook.
// Events without an intent reference are acknowledged and dropped.
func (s *Service) HandleWebhookEvent(ctx context.Context, event *payment.WebhookEvent) error {
	if event.IntentID == "" {
		log.Warn().Str("provider", event.Provider).Str("event", event.EventType).Msg("webhook event without intent reference")
		return nil
	}

	intentID, err := uuid.Parse(event.IntentID)
	if err != nil {
		log.Warn().Str("intent_id", event.IntentID).Msg("webhook event with malformed intent reference")
		return nil
	}

	if !event.Paid {
		return s.reconcileFail(ctx, intentID)
	}

	_, err = s.reconcileConfirm(ctx, intentID, event.ExternalID)
	return err
}

// Get returns an intent visible to the user (status polling)
func (s *Service) Get(ctx context.Context, userID, intentID uuid.UUID) (*Intent, error) {
	in, err := s.repo.GetByID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if in.UserID != userID {
		return nil, ErrForbidden
	}
	return in, nil
}

// List returns the user's intents, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Intent, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// reconcileConfirm is the single confirmation path. The status claim and
// the ledger credit commit together; a replay loses the claim and returns
// AlreadyConfirmed without touching the balance.
func (s *Service) reconcileConfirm(ctx context.Context, intentID uuid.UUID, externalRef string) (*ConfirmResult, error) {
	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	in, err := s.repo.GetByIDForUpdateTx(ctx, tx, intentID)
	if err != nil {
		return nil, err
	}
	if in.Status == StatusConfirmed {
		return s.confirmedResult(ctx, in, true)
	}
	if in.Status == StatusFailed {
		return nil, ErrAlreadyFailed
	}

	won, err := s.repo.ClaimConfirmTx(ctx, tx, in.ID, externalRef)
	if err != nil {
		return nil, err
	}
	if !won {
		return s.confirmedResult(ctx, in, true)
	}

	if err := s.ledger.CreditTx(ctx, tx, in.UserID, in.Credits, ledger.TopUpRef(in.ID), in.Provider+" top-up"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Str("intent_id", in.ID.String()).
		Str("user_id", in.UserID.String()).
		Int64("credits", in.Credits).
		Msg("top-up confirmed")

	in, err = s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	result, err := s.confirmedResult(ctx, in, false)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, []uuid.UUID{in.UserID}, "topup.confirmed", map[string]interface{}{
			"intent_id": in.ID,
			"credits":   in.Credits,
			"balance":   result.Balance,
		})
	}
	return result, nil
}

func (s *Service) reconcileFail(ctx context.Context, intentID uuid.UUID) error {
	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	flipped, err := s.repo.MarkFailedTx(ctx, tx, intentID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if flipped {
		log.Info().Str("intent_id", intentID.String()).Msg("top-up marked failed")
	}
	return nil
}

func (s *Service) confirmedResult(ctx context.Context, in *Intent, replay bool) (*ConfirmResult, error) {
	balance, err := s.ledger.Balance(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{
		Intent:           in,
		CreditsAdded:     in.Credits,
		Balance:          balance,
		AlreadyConfirmed: replay,
	}, nil
}
