package topup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles top-up intent database operations.
// ClaimConfirmTx is the exactly-once gate: only the transaction that flips
// the status wins, and it credits the ledger before committing.
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

// Create inserts a new initiated intent
func (r *Repository) Create(ctx context.Context, in *Intent) error {
	query := `
		INSERT INTO topup_intents (id, user_id, provider, credits, amount_fiat, currency, status, idempotency_key)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		in.UserID, in.Provider, in.Credits, in.AmountFiat, in.Currency, in.Status, in.IdempotencyKey,
	).Scan(&in.ID, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create topup intent: %w", err)
	}
	return nil
}

// GetByID returns an intent by ID, or ErrNotFound
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Intent, error) {
	var in Intent
	err := r.db.GetContext(ctx, &in, `SELECT * FROM topup_intents WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get topup intent: %w", err)
	}
	return &in, nil
}

// GetByIDForUpdateTx loads an intent with a row lock inside tx
func (r *Repository) GetByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Intent, error) {
	var in Intent
	err := tx.GetContext(ctx, &in, `SELECT * FROM topup_intents WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get topup intent for update: %w", err)
	}
	return &in, nil
}

// FindActiveByKey returns the newest non-terminal intent with the given
// idempotency key, or nil when none is open.
func (r *Repository) FindActiveByKey(ctx context.Context, key string) (*Intent, error) {
	var in Intent
	err := r.db.GetContext(ctx, &in, `
		SELECT * FROM topup_intents
		WHERE idempotency_key = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`, key, StatusInitiated, StatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find topup intent by key: %w", err)
	}
	return &in, nil
}

// MarkPending records the checkout handoff on an initiated intent
func (r *Repository) MarkPending(ctx context.Context, id uuid.UUID, externalID, paymentURL string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE topup_intents
		SET status = $2, external_id = $3, payment_url = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5
	`, id, StatusPending, externalID, paymentURL, StatusInitiated)
	if err != nil {
		return fmt.Errorf("mark topup pending: %w", err)
	}
	return oneRow(result)
}

// ClaimConfirmTx flips an open intent to confirmed. Returns false when the
// intent was already terminal, which means another path got there first.
func (r *Repository) ClaimConfirmTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, externalID string) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE topup_intents
		SET status = $2, external_id = COALESCE(NULLIF($3, ''), external_id), confirmed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status IN ($4, $5)
	`, id, StatusConfirmed, externalID, StatusInitiated, StatusPending)
	if err != nil {
		return false, fmt.Errorf("claim topup confirm: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// MarkFailedTx flips an open intent to failed
func (r *Repository) MarkFailedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE topup_intents SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status IN ($3, $4)
	`, id, StatusFailed, StatusInitiated, StatusPending)
	if err != nil {
		return false, fmt.Errorf("mark topup failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ListByUser returns the user's intents, newest first
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Intent, error) {
	if limit <= 0 {
		limit = 20
	}

	intents := make([]Intent, 0)
	err := r.db.SelectContext(ctx, &intents, `
		SELECT * FROM topup_intents
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list topup intents: %w", err)
	}
	return intents, nil
}

func oneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
