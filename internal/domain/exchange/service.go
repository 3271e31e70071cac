package exchange

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/skillswap/skillswap-api/internal/domain/ledger"
	"github.com/skillswap/skillswap-api/internal/domain/user"
	"github.com/skillswap/skillswap-api/internal/pkg/payment"
)

// Notifier delivers best-effort event notifications to users.
// Failures must never affect the settlement outcome.
type Notifier interface {
	Notify(ctx context.Context, userIDs []uuid.UUID, event string, payload map[string]interface{})
}

// Service drives the exchange lifecycle. Every status move that touches
// money runs the conditional claim and the ledger movement in one database
// transaction; losing the claim surfaces as ErrInvalidTransition.
type Service struct {
	repo       *Repository
	users      *user.Repository
	ledger     *ledger.Service
	notifier   Notifier
	creditRate float64
	currency   string
}

func NewService(repo *Repository, users *user.Repository, ledgerSvc *ledger.Service, notifier Notifier, creditRate float64, currency string) *Service {
	return &Service{
		repo:       repo,
		users:      users,
		ledger:     ledgerSvc,
		notifier:   notifier,
		creditRate: creditRate,
		currency:   currency,
	}
}

// Create requests a new exchange from a provider. The receiver's balance
// is checked up front so the client gets a priced top-up hint, but no
// credits move until the provider confirms.
func (s *Service) Create(ctx context.Context, receiverID uuid.UUID, req CreateRequest) (*Exchange, error) {
	if req.ProviderID == receiverID {
		return nil, ErrSelfExchange
	}

	provider, err := s.users.GetByID(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.IsAvailable {
		return nil, ErrProviderUnavailable
	}

	balance, err := s.ledger.Balance(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if balance < req.Credits {
		missing := req.Credits - balance
		return nil, &InsufficientCreditsError{
			Required:   req.Credits,
			Available:  balance,
			Missing:    missing,
			AmountFiat: payment.RoundMoney(float64(missing) * s.creditRate),
			Currency:   s.currency,
		}
	}

	e := &Exchange{
		ProviderID:      req.ProviderID,
		ReceiverID:      receiverID,
		SkillName:       req.SkillName,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Credits:         req.Credits,
		Currency:        s.currency,
		Status:          StatusPending,
	}
	if req.Currency != "" {
		e.Currency = req.Currency
	}
	if req.Amount > 0 {
		final := payment.RoundMoney(req.Amount - req.Discount)
		if final < 0 {
			final = 0
		}
		e.Amount = sql.NullFloat64{Float64: payment.RoundMoney(req.Amount), Valid: true}
		e.Discount = sql.NullFloat64{Float64: payment.RoundMoney(req.Discount), Valid: true}
		e.FinalAmount = sql.NullFloat64{Float64: final, Valid: true}
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.notify(ctx, []uuid.UUID{req.ProviderID}, "exchange.requested", e)
	return e, nil
}

// Confirm accepts a pending exchange. Only the provider may confirm; the
// receiver's credits are escrowed atomically with the status claim.
func (s *Service) Confirm(ctx context.Context, actorID, exchangeID uuid.UUID, note string) (*Exchange, error) {
	e, err := s.transition(ctx, actorID, exchangeID, "confirm", func(ctx context.Context, tx txCtx, e *Exchange) error {
		if e.ProviderID != actorID {
			return ErrForbidden
		}

		ok, err := s.repo.ConfirmTx(ctx, tx.tx, e.ID, e.ReceiverID, e.Credits)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}

		if err := s.ledger.HoldTx(ctx, tx.tx, e.ReceiverID, e.Credits, ledger.ExchangeRef(e.ID), "escrow for "+e.SkillName); err != nil {
			return err
		}

		tx.audit(StatusPending, StatusConfirmed, note)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, []uuid.UUID{e.ReceiverID}, "exchange.confirmed", e)
	return e, nil
}

// Start moves a confirmed exchange to in_progress. Either participant may start.
func (s *Service) Start(ctx context.Context, actorID, exchangeID uuid.UUID, note string) (*Exchange, error) {
	e, err := s.transition(ctx, actorID, exchangeID, "start", func(ctx context.Context, tx txCtx, e *Exchange) error {
		if !e.IsParticipant(actorID) {
			return ErrForbidden
		}

		ok, err := s.repo.StartTx(ctx, tx.tx, e.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}

		tx.audit(StatusConfirmed, StatusInProgress, note)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, []uuid.UUID{e.OtherParty(actorID)}, "exchange.started", e)
	return e, nil
}

// Complete settles an in_progress exchange: the escrow held from the
// receiver is paid out to the provider in the same transaction that claims
// the terminal status.
func (s *Service) Complete(ctx context.Context, actorID, exchangeID uuid.UUID, note string) (*Exchange, error) {
	e, err := s.transition(ctx, actorID, exchangeID, "complete", func(ctx context.Context, tx txCtx, e *Exchange) error {
		if !e.IsParticipant(actorID) {
			return ErrForbidden
		}

		ok, err := s.repo.CompleteTx(ctx, tx.tx, e.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}

		if e.CreditsHeld > 0 && e.HeldBy.Valid {
			err = s.ledger.ReleaseToTx(ctx, tx.tx, e.HeldBy.UUID, e.ProviderID, e.CreditsHeld, ledger.ExchangeRef(e.ID), "payout for "+e.SkillName)
			if err != nil {
				return err
			}
		}

		tx.audit(StatusInProgress, StatusCompleted, note)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, []uuid.UUID{e.ProviderID, e.ReceiverID}, "exchange.completed", e)
	return e, nil
}

// Cancel aborts a pending or confirmed exchange. Any escrow already taken
// is returned to the receiver atomically with the status claim.
func (s *Service) Cancel(ctx context.Context, actorID, exchangeID uuid.UUID, note string) (*Exchange, error) {
	e, err := s.transition(ctx, actorID, exchangeID, "cancel", func(ctx context.Context, tx txCtx, e *Exchange) error {
		if !e.IsParticipant(actorID) {
			return ErrForbidden
		}
		if !CanTransition(e.Status, StatusCancelled) {
			return ErrInvalidTransition
		}

		ok, err := s.repo.CancelTx(ctx, tx.tx, e.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}

		if e.CreditsHeld > 0 && e.HeldBy.Valid {
			err = s.ledger.ReleaseBackTx(ctx, tx.tx, e.HeldBy.UUID, e.CreditsHeld, ledger.ExchangeRef(e.ID), "escrow returned")
			if err != nil {
				return err
			}
		}

		tx.audit(e.Status, StatusCancelled, note)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, []uuid.UUID{e.OtherParty(actorID)}, "exchange.cancelled", e)
	return e, nil
}

// Get returns an exchange visible to the actor
func (s *Service) Get(ctx context.Context, actorID, exchangeID uuid.UUID) (*Exchange, error) {
	e, err := s.repo.GetByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if !e.IsParticipant(actorID) {
		return nil, ErrForbidden
	}
	return e, nil
}

// List returns the actor's exchanges
func (s *Service) List(ctx context.Context, actorID uuid.UUID, filter ListFilter) ([]Exchange, error) {
	return s.repo.ListByUser(ctx, actorID, filter)
}

// Audit returns the audit log of an exchange visible to the actor
func (s *Service) Audit(ctx context.Context, actorID, exchangeID uuid.UUID) ([]AuditRecord, error) {
	e, err := s.repo.GetByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if !e.IsParticipant(actorID) {
		return nil, ErrForbidden
	}
	return s.repo.Audit(ctx, exchangeID)
}

// txCtx carries the open transaction plus a deferred audit record the
// transition closure fills in once it knows the statuses.
type txCtx struct {
	tx    *sqlx.Tx
	audit func(from, to Status, note string)
}

// transition loads the exchange under a row lock and runs fn inside one
// transaction. The audit record is written before commit.
func (s *Service) transition(ctx context.Context, actorID, exchangeID uuid.UUID, action string, fn func(context.Context, txCtx, *Exchange) error) (*Exchange, error) {
	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback()

	e, err := s.repo.GetByIDForUpdateTx(ctx, tx, exchangeID)
	if err != nil {
		return nil, err
	}

	var rec *AuditRecord
	tc := txCtx{
		tx: tx,
		audit: func(from, to Status, note string) {
			rec = &AuditRecord{
				ExchangeID: exchangeID,
				ActorID:    actorID,
				Action:     action,
				FromStatus: from,
				ToStatus:   to,
				Note:       note,
			}
		},
	}

	if err := fn(ctx, tc, e); err != nil {
		return nil, err
	}
	if rec != nil {
		if err := s.repo.AppendAuditTx(ctx, tx, rec); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}

	return s.repo.GetByID(ctx, exchangeID)
}

func (s *Service) notify(ctx context.Context, userIDs []uuid.UUID, event string, e *Exchange) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userIDs, event, map[string]interface{}{
		"exchange_id": e.ID,
		"skill_name":  e.SkillName,
		"status":      e.Status,
		"credits":     e.Credits,
	})
	log.Debug().Str("event", event).Str("exchange_id", e.ID.String()).Msg("exchange notification sent")
}
