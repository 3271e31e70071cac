package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Service is the only place balances are mutated. It enforces the
// arithmetic invariants and appends one ledger entry per affected account;
// deciding when to hold or release is the escrow state machine's job.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Account returns the user's balances, creating the account on first touch
func (s *Service) Account(ctx context.Context, userID uuid.UUID) (*Account, error) {
	return s.repo.GetAccount(ctx, userID)
}

// Balance returns the user's spendable balance
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	acc, err := s.repo.GetAccount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// Entries returns the user's ledger, newest first
func (s *Service) Entries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, error) {
	return s.repo.Entries(ctx, userID, limit, offset)
}

// Credit increases the spendable balance in its own transaction
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, amount int64, ref Reference, note string) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.CreditTx(ctx, tx, userID, amount, ref, note)
	})
	if err != nil {
		return err
	}
	log.Info().Str("user_id", userID.String()).Int64("amount", amount).Str("ref", ref.Type).Msg("ledger credit applied")
	return nil
}

// CreditTx increases the spendable balance within an external transaction
func (s *Service) CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, ref Reference, note string) error {
	return s.repo.CreditTx(ctx, tx, userID, amount, ref, note)
}

// Hold escrows amount from the spendable balance in its own transaction
func (s *Service) Hold(ctx context.Context, userID uuid.UUID, amount int64, ref Reference, note string) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.HoldTx(ctx, tx, userID, amount, ref, note)
	})
	if err != nil {
		return err
	}
	log.Info().Str("user_id", userID.String()).Int64("amount", amount).Str("ref", ref.Type).Msg("ledger hold applied")
	return nil
}

// HoldTx escrows amount within an external transaction
func (s *Service) HoldTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, ref Reference, note string) error {
	return s.repo.HoldTx(ctx, tx, userID, amount, ref, note)
}

// Spend consumes held credits without crediting anyone
func (s *Service) Spend(ctx context.Context, userID uuid.UUID, amount int64, ref Reference, note string) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.SpendTx(ctx, tx, userID, amount, ref, note)
	})
}

// SpendTx consumes held credits within an external transaction
func (s *Service) SpendTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, ref Reference, note string) error {
	return s.repo.SpendTx(ctx, tx, userID, amount, ref, note)
}

// ReleaseTo pays held credits out to the payee in its own transaction
func (s *Service) ReleaseTo(ctx context.Context, fromID, toID uuid.UUID, amount int64, ref Reference, note string) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.ReleaseToTx(ctx, tx, fromID, toID, amount, ref, note)
	})
	if err != nil {
		return err
	}
	log.Info().Str("from", fromID.String()).Str("to", toID.String()).Int64("amount", amount).Msg("ledger escrow released")
	return nil
}

// ReleaseToTx pays held credits out to the payee within an external transaction
func (s *Service) ReleaseToTx(ctx context.Context, tx *sqlx.Tx, fromID, toID uuid.UUID, amount int64, ref Reference, note string) error {
	return s.repo.ReleaseToTx(ctx, tx, fromID, toID, amount, ref, note)
}

// ReleaseBack returns held credits to the holder in its own transaction
func (s *Service) ReleaseBack(ctx context.Context, userID uuid.UUID, amount int64, ref Reference, note string) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.ReleaseBackTx(ctx, tx, userID, amount, ref, note)
	})
}

// ReleaseBackTx returns held credits to the holder within an external transaction
func (s *Service) ReleaseBackTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, ref Reference, note string) error {
	return s.repo.ReleaseBackTx(ctx, tx, userID, amount, ref, note)
}

func (s *Service) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
