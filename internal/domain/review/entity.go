package review

import (
	"time"

	"github.com/google/uuid"
)

// Review is one participant's rating of the other after a completed exchange
type Review struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ExchangeID uuid.UUID `db:"exchange_id" json:"exchange_id"`
	ReviewerID uuid.UUID `db:"reviewer_id" json:"reviewer_id"`
	TargetID   uuid.UUID `db:"target_id" json:"target_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Aggregate is the recomputed rating summary for a user.
// Distribution maps each star value 1-5 to its count, zeroes included.
type Aggregate struct {
	Average      float64     `json:"average"`
	Count        int         `json:"count"`
	Distribution map[int]int `json:"distribution"`
}
