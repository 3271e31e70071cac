package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User is the account directory entry the settlement core needs:
// identity, availability for new exchanges, and the aggregated rating
// maintained by the review domain.
type User struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Email       string         `db:"email" json:"email"`
	DisplayName string         `db:"display_name" json:"display_name"`
	IsAvailable bool           `db:"is_available" json:"is_available"`
	RatingAvg   float64        `db:"rating_avg" json:"rating_avg"`
	RatingCount int            `db:"rating_count" json:"rating_count"`
	RatingDist  sql.NullString `db:"rating_dist" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
