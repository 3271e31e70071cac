package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles review database operations
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new review
func (r *Repository) Create(ctx context.Context, rev *Review) error {
	query := `
		INSERT INTO reviews (id, exchange_id, reviewer_id, target_id, rating, comment)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		rev.ExchangeID, rev.ReviewerID, rev.TargetID, rev.Rating, rev.Comment,
	).Scan(&rev.ID, &rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// Update changes the rating and comment of an existing review
func (r *Repository) Update(ctx context.Context, id uuid.UUID, rating int, comment string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reviews SET rating = $2, comment = $3, updated_at = NOW()
		WHERE id = $1
	`, id, rating, comment)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return oneRow(result)
}

// Delete removes a review
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return oneRow(result)
}

// GetByID returns a review by ID, or ErrNotFound
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	var rev Review
	err := r.db.GetContext(ctx, &rev, `SELECT * FROM reviews WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &rev, nil
}

// GetByExchangeAndReviewer returns the reviewer's review of an exchange, or nil
func (r *Repository) GetByExchangeAndReviewer(ctx context.Context, exchangeID, reviewerID uuid.UUID) (*Review, error) {
	var rev Review
	err := r.db.GetContext(ctx, &rev, `
		SELECT * FROM reviews WHERE exchange_id = $1 AND reviewer_id = $2
	`, exchangeID, reviewerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review by exchange: %w", err)
	}
	return &rev, nil
}

// ListByTarget returns reviews received by a user, newest first
func (r *Repository) ListByTarget(ctx context.Context, targetID uuid.UUID, limit, offset int) ([]Review, error) {
	if limit <= 0 {
		limit = 20
	}

	reviews := make([]Review, 0)
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT * FROM reviews
		WHERE target_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, targetID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// RatingsByTarget returns every rating value received by a user
func (r *Repository) RatingsByTarget(ctx context.Context, targetID uuid.UUID) ([]int, error) {
	ratings := make([]int, 0)
	err := r.db.SelectContext(ctx, &ratings, `
		SELECT rating FROM reviews WHERE target_id = $1
	`, targetID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
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
