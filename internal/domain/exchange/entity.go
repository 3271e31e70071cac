package exchange

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an exchange
type Status string

const (
	// StatusPending means the receiver requested the exchange; no escrow yet
	StatusPending Status = "pending"
	// StatusConfirmed means the provider accepted; receiver's credits are escrowed
	StatusConfirmed Status = "confirmed"
	// StatusInProgress means the work has started
	StatusInProgress Status = "in_progress"
	// StatusCompleted is terminal; escrow has been paid out to the provider
	StatusCompleted Status = "completed"
	// StatusCancelled is terminal; any escrow was returned to the receiver
	StatusCancelled Status = "cancelled"
)

// transitions is the full set of allowed status moves. Everything not
// listed here is rejected, including transitions out of terminal states.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

// CanTransition reports whether an exchange may move from one status to another
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Exchange is a peer-to-peer skill exchange settled in credits.
// The receiver pays, the provider delivers. CreditsHeld and HeldBy are set
// when the provider confirms and the escrow is taken.
// Amount, Discount and FinalAmount are an optional cash component shown
// alongside the credit price; cash settles off-platform, so only the
// credit leg ever touches the ledger.
type Exchange struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	ProviderID      uuid.UUID       `db:"provider_id" json:"provider_id"`
	ReceiverID      uuid.UUID       `db:"receiver_id" json:"receiver_id"`
	SkillName       string          `db:"skill_name" json:"skill_name"`
	Description     string          `db:"description" json:"description"`
	DurationMinutes int             `db:"duration_minutes" json:"duration_minutes"`
	Credits         int64           `db:"credits" json:"credits"`
	Amount          sql.NullFloat64 `db:"amount" json:"amount,omitempty"`
	Discount        sql.NullFloat64 `db:"discount" json:"discount,omitempty"`
	FinalAmount     sql.NullFloat64 `db:"final_amount" json:"final_amount,omitempty"`
	Currency        string          `db:"currency" json:"currency"`
	Status          Status          `db:"status" json:"status"`
	CreditsHeld     int64           `db:"credits_held" json:"credits_held"`
	HeldBy          uuid.NullUUID   `db:"held_by" json:"held_by,omitempty"`
	CompletedAt     sql.NullTime    `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// IsParticipant reports whether the user is the provider or receiver
func (e *Exchange) IsParticipant(userID uuid.UUID) bool {
	return e.ProviderID == userID || e.ReceiverID == userID
}

// OtherParty returns the counterpart of the given participant
func (e *Exchange) OtherParty(userID uuid.UUID) uuid.UUID {
	if e.ProviderID == userID {
		return e.ReceiverID
	}
	return e.ProviderID
}

// AuditRecord is an append-only log line of a status change
type AuditRecord struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ExchangeID uuid.UUID `db:"exchange_id" json:"exchange_id"`
	ActorID    uuid.UUID `db:"actor_id" json:"actor_id"`
	Action     string    `db:"action" json:"action"`
	FromStatus Status    `db:"from_status" json:"from_status"`
	ToStatus   Status    `db:"to_status" json:"to_status"`
	Note       string    `db:"note" json:"note"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
