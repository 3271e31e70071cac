package exchange

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles exchange database operations. Status moves are
// conditional UPDATEs keyed on the current status; the boolean they return
// tells the service whether this transaction won the claim.
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

// Create inserts a new pending exchange
func (r *Repository) Create(ctx context.Context, e *Exchange) error {
	query := `
		INSERT INTO exchanges (id, provider_id, receiver_id, skill_name, description,
			duration_minutes, credits, amount, discount, final_amount, currency, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		e.ProviderID, e.ReceiverID, e.SkillName, e.Description,
		e.DurationMinutes, e.Credits, e.Amount, e.Discount, e.FinalAmount, e.Currency, e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create exchange: %w", err)
	}
	return nil
}

// GetByID returns an exchange by ID, or ErrNotFound
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Exchange, error) {
	var e Exchange
	err := r.db.GetContext(ctx, &e, `SELECT * FROM exchanges WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get exchange: %w", err)
	}
	return &e, nil
}

// GetByIDForUpdateTx loads an exchange with a row lock inside tx
func (r *Repository) GetByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Exchange, error) {
	var e Exchange
	err := tx.GetContext(ctx, &e, `SELECT * FROM exchanges WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get exchange for update: %w", err)
	}
	return &e, nil
}

// ConfirmTx claims pending -> confirmed and records the escrow taken.
// Returns false when the exchange was no longer pending.
func (r *Repository) ConfirmTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, heldBy uuid.UUID, creditsHeld int64) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE exchanges
		SET status = $2, credits_held = $3, held_by = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5
	`, id, StatusConfirmed, creditsHeld, heldBy, StatusPending)
	if err != nil {
		return false, fmt.Errorf("confirm exchange: %w", err)
	}
	return claimed(result)
}

// StartTx claims confirmed -> in_progress
func (r *Repository) StartTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE exchanges SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, id, StatusInProgress, StatusConfirmed)
	if err != nil {
		return false, fmt.Errorf("start exchange: %w", err)
	}
	return claimed(result)
}

// CompleteTx claims in_progress -> completed and stamps completed_at
func (r *Repository) CompleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE exchanges SET status = $2, completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, id, StatusCompleted, StatusInProgress)
	if err != nil {
		return false, fmt.Errorf("complete exchange: %w", err)
	}
	return claimed(result)
}

// CancelTx claims pending|confirmed -> cancelled and clears the escrow fields
func (r *Repository) CancelTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE exchanges
		SET status = $2, credits_held = 0, held_by = NULL, updated_at = NOW()
		WHERE id = $1 AND status IN ($3, $4)
	`, id, StatusCancelled, StatusPending, StatusConfirmed)
	if err != nil {
		return false, fmt.Errorf("cancel exchange: %w", err)
	}
	return claimed(result)
}

// AppendAuditTx records a status change in the audit log
func (r *Repository) AppendAuditTx(ctx context.Context, tx *sqlx.Tx, rec *AuditRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO exchange_audits (id, exchange_id, actor_id, action, from_status, to_status, note)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
	`, rec.ExchangeID, rec.ActorID, rec.Action, rec.FromStatus, rec.ToStatus, rec.Note)
	if err != nil {
		return fmt.Errorf("append exchange audit: %w", err)
	}
	return nil
}

// Audit returns the audit log of an exchange, oldest first
func (r *Repository) Audit(ctx context.Context, exchangeID uuid.UUID) ([]AuditRecord, error) {
	records := make([]AuditRecord, 0)
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM exchange_audits
		WHERE exchange_id = $1
		ORDER BY created_at ASC, id ASC
	`, exchangeID)
	if err != nil {
		return nil, fmt.Errorf("list exchange audits: %w", err)
	}
	return records, nil
}

// ListByUser returns the user's exchanges, newest first, with optional
// status and role filters.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Exchange, error) {
	query := `SELECT * FROM exchanges WHERE (provider_id = $1 OR receiver_id = $1)`
	args := []interface{}{userID}

	switch filter.Role {
	case "provider":
		query = `SELECT * FROM exchanges WHERE provider_id = $1`
	case "receiver":
		query = `SELECT * FROM exchanges WHERE receiver_id = $1`
	}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	exchanges := make([]Exchange, 0)
	if err := r.db.SelectContext(ctx, &exchanges, query, args...); err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	return exchanges, nil
}

func claimed(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
