package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles user database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new user repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetByID returns a user by ID, or ErrNotFound
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// UpdateRating writes the recomputed rating aggregate onto the user row
func (r *Repository) UpdateRating(ctx context.Context, id uuid.UUID, avg float64, count int, dist map[int]int) error {
	distJSON, err := json.Marshal(dist)
	if err != nil {
		return fmt.Errorf("marshal rating distribution: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET rating_avg = $2, rating_count = $3, rating_dist = $4, updated_at = NOW()
		WHERE id = $1
	`, id, avg, count, distJSON)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
