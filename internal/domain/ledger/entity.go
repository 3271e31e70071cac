package ledger

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a ledger entry by the balance movement it records.
type Kind string

const (
	// KindTopUp credits the spendable balance from an external payment
	KindTopUp Kind = "topup"
	// KindHold moves credits from the spendable balance into escrow
	KindHold Kind = "hold"
	// KindRelease credits the spendable balance out of escrow, either the
	// payee's share of a completed exchange or the holder's own escrow
	// returned on cancellation
	KindRelease Kind = "release"
	// KindSpend consumes held credits without crediting the same account
	KindSpend Kind = "spend"
)

// Account carries a user's spendable and escrowed credit balances.
// Both are maintained redundantly with the entries; every mutation writes
// the balance update and its entry in one database transaction.
type Account struct {
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Balance     int64     `db:"balance" json:"balance"`
	HeldBalance int64     `db:"held_balance" json:"held_balance"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Entry is an immutable audit record of one balance-affecting operation.
// BalanceAfter and HeldAfter snapshot the account at append time.
type Entry struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	UserID        uuid.UUID      `db:"user_id" json:"user_id"`
	Kind          Kind           `db:"kind" json:"kind"`
	Amount        int64          `db:"amount" json:"amount"`
	BalanceAfter  int64          `db:"balance_after" json:"balance_after"`
	HeldAfter     int64          `db:"held_after" json:"held_after"`
	ReferenceType sql.NullString `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID   uuid.NullUUID  `db:"reference_id" json:"reference_id,omitempty"`
	Note          string         `db:"note" json:"note"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// Reference attributes a ledger entry to the document that caused it
type Reference struct {
	Type string
	ID   uuid.UUID
}

// ExchangeRef references an escrow exchange
func ExchangeRef(id uuid.UUID) Reference {
	return Reference{Type: "exchange", ID: id}
}

// TopUpRef references a top-up intent
func TopUpRef(id uuid.UUID) Reference {
	return Reference{Type: "topup_intent", ID: id}
}
