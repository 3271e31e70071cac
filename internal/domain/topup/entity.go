package topup

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a top-up intent
type Status string

const (
	// StatusInitiated means the intent exists but checkout hasn't been handed off
	StatusInitiated Status = "initiated"
	// StatusPending means the user was sent to the payment processor
	StatusPending Status = "pending"
	// StatusConfirmed is terminal; the credits were added exactly once
	StatusConfirmed Status = "confirmed"
	// StatusFailed is terminal; the processor reported the payment failed
	StatusFailed Status = "failed"
)

// IsTerminal reports whether the intent can no longer be confirmed
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// Intent is one attempt to buy credits through a payment provider.
// IdempotencyKey deduplicates retries of the same purchase within a day;
// ExternalID is the processor-side reference (checkout session, trx ID).
type Intent struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	UserID         uuid.UUID      `db:"user_id" json:"user_id"`
	Provider       string         `db:"provider" json:"provider"`
	Credits        int64          `db:"credits" json:"credits"`
	AmountFiat     float64        `db:"amount_fiat" json:"amount_fiat"`
	Currency       string         `db:"currency" json:"currency"`
	Status         Status         `db:"status" json:"status"`
	IdempotencyKey string         `db:"idempotency_key" json:"-"`
	ExternalID     sql.NullString `db:"external_id" json:"external_id,omitempty"`
	PaymentURL     string         `db:"payment_url" json:"payment_url,omitempty"`
	ConfirmedAt    sql.NullTime   `db:"confirmed_at" json:"confirmed_at,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// IdempotencyKey derives the dedup key for a purchase. Same user, provider,
// credit amount and calendar day map to the same key, so a double-submitted
// form reuses the open intent instead of creating a second one.
func IdempotencyKey(userID uuid.UUID, provider string, credits int64, day time.Time) string {
	raw := fmt.Sprintf("%s|%s|%d|%s", userID, provider, credits, day.UTC().Format("2006-01-02"))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
