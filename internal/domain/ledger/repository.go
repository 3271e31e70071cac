package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository provides account balance and ledger entry operations.
//
// Every mutating method comes in a Tx variant taking an external
// *sqlx.Tx so callers can make a balance movement atomic with their own
// writes (the escrow state machine and the top-up reconciler both do).
// The plain variants wrap the Tx variant in a transaction of their own.
// Account rows are locked FOR UPDATE before any arithmetic; methods never
// commit or roll back an external transaction.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// BeginTxx starts a database transaction for composed operations
func (r *Repository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// EnsureAccount creates a zero-balance account row if none exists
func (r *Repository) EnsureAccount(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, balance, held_balance)
		VALUES ($1, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

// GetAccount returns the account for a user, creating it on first touch
func (r *Repository) GetAccount(ctx context.Context, userID uuid.UUID) (*Account, error) {
	if err := r.EnsureAccount(ctx, userID); err != nil {
		return nil, err
	}

	var acc Account
	err := r.db.GetContext(ctx, &acc, `SELECT * FROM accounts WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// Entries returns the user's ledger, newest first
func (r *Repository) Entries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	entries := make([]Entry, 0)
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, kind, amount, balance_after, held_after, reference_type, reference_id, note, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list entries", ErrInternal)
	}
	return entries, nil
}

// lockAccount ensures the account row exists and locks it for the
// remainder of the transaction.
func (r *Repository) lockAccount(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*Account, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (user_id, balance, held_balance)
		VALUES ($1, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return nil, err
	}

	var acc Account
	err := tx.GetContext(ctx, &acc, `SELECT * FROM accounts WHERE user_id = $1 FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// CreditTx increases the spendable balance and appends a topup entry
func (r *Repository) CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, ref Reference, note string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	acc, err := r.lockAccount(ctx, tx, userID)
	if err != nil {
		return err
	}

	acc.Balance += amount
	if err := r.updateBalances(ctx, tx, acc); err != nil {
		return err
	}
	return r.appendEntry(ctx, tx, acc, KindTopUp, amount, ref, note)
}

// HoldTx moves amount from the spendable balance into escrow
func (r *Repository) HoldTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, ref Reference, note string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	acc, err := r.lockAccount(ctx, tx, userID)
	if err != nil {
		return err
	}
	if acc.Balance < amount {
		return ErrInsufficientBalance
	}

	acc.Balance -= amount
	acc.HeldBalance += amount
	if err := r.updateBalances(ctx, tx, acc); err != nil {
		return err
	}
	return r.appendEntry(ctx, tx, acc, KindHold, amount, ref, note)
}

// SpendTx consumes held credits without crediting anyone
func (r *Repository) SpendTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, ref Reference, note string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	acc, err := r.lockAccount(ctx, tx, userID)
	if err != nil {
		return err
	}
	if acc.HeldBalance < amount {
		return ErrInsufficientHeld
	}

	acc.HeldBalance -= amount
	if err := r.updateBalances(ctx, tx, acc); err != nil {
		return err
	}
	return r.appendEntry(ctx, tx, acc, KindSpend, amount, ref, note)
}

// ReleaseToTx pays held credits out to a different account: the holder's
// escrow is consumed (spend entry) and the payee's spendable balance is
// credited (release entry). Rows are locked in UUID order so concurrent
// releases between the same pair cannot deadlock.
func (r *Repository) ReleaseToTx(ctx context.Context, tx *sqlx.Tx, fromID, toID uuid.UUID, amount int64, ref Reference, note string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromID == toID {
		return r.ReleaseBackTx(ctx, tx, fromID, amount, ref, note)
	}

	first, second := fromID, toID
	if second.String() < first.String() {
		first, second = second, first
	}

	accounts := make(map[uuid.UUID]*Account, 2)
	for _, id := range []uuid.UUID{first, second} {
		acc, err := r.lockAccount(ctx, tx, id)
		if err != nil {
			return err
		}
		accounts[id] = acc
	}

	from, to := accounts[fromID], accounts[toID]
	if from.HeldBalance < amount {
		return ErrInsufficientHeld
	}

	from.HeldBalance -= amount
	to.Balance += amount
	for _, acc := range []*Account{from, to} {
		if err := r.updateBalances(ctx, tx, acc); err != nil {
			return err
		}
	}

	if err := r.appendEntry(ctx, tx, from, KindSpend, amount, ref, note); err != nil {
		return err
	}
	return r.appendEntry(ctx, tx, to, KindRelease, amount, ref, note)
}

// ReleaseBackTx returns held credits to the holder's own spendable balance
// (escrow reversal on cancellation).
func (r *Repository) ReleaseBackTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, ref Reference, note string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	acc, err := r.lockAccount(ctx, tx, userID)
	if err != nil {
		return err
	}
	if acc.HeldBalance < amount {
		return ErrInsufficientHeld
	}

	acc.HeldBalance -= amount
	acc.Balance += amount
	if err := r.updateBalances(ctx, tx, acc); err != nil {
		return err
	}
	return r.appendEntry(ctx, tx, acc, KindRelease, amount, ref, note)
}

// VerifyAccount compares the stored balances against the latest entry
// snapshots. Used by reconciliation tooling; a mismatch means the account
// was mutated outside the ledger.
func (r *Repository) VerifyAccount(ctx context.Context, userID uuid.UUID) (bool, error) {
	acc, err := r.GetAccount(ctx, userID)
	if err != nil {
		return false, err
	}

	var last Entry
	err = r.db.GetContext(ctx, &last, `
		SELECT id, user_id, kind, amount, balance_after, held_after, reference_type, reference_id, note, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return acc.Balance == 0 && acc.HeldBalance == 0, nil
	}
	if err != nil {
		return false, err
	}

	return acc.Balance == last.BalanceAfter && acc.HeldBalance == last.HeldAfter, nil
}

func (r *Repository) updateBalances(ctx context.Context, tx *sqlx.Tx, acc *Account) error {
	if acc.Balance < 0 || acc.HeldBalance < 0 {
		return ErrInternal
	}
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts SET balance = $2, held_balance = $3, updated_at = NOW()
		WHERE user_id = $1
	`, acc.UserID, acc.Balance, acc.HeldBalance)
	if err != nil {
		return fmt.Errorf("%w: update balances", ErrInternal)
	}
	return nil
}

func (r *Repository) appendEntry(ctx context.Context, tx *sqlx.Tx, acc *Account, kind Kind, amount int64, ref Reference, note string) error {
	refType := sql.NullString{String: ref.Type, Valid: ref.Type != ""}
	refID := uuid.NullUUID{UUID: ref.ID, Valid: ref.ID != uuid.Nil}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, user_id, kind, amount, balance_after, held_after, reference_type, reference_id, note)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8)
	`, acc.UserID, kind, amount, acc.Balance, acc.HeldBalance, refType, refID, note)
	if err != nil {
		return fmt.Errorf("%w: insert entry", ErrInternal)
	}
	return nil
}
