package review

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/skillswap/skillswap-api/internal/domain/exchange"
	"github.com/skillswap/skillswap-api/internal/domain/user"
)

// Service owns reviews and the rating aggregate they roll up into.
// Recomputation is best effort: a failed aggregate write is logged and the
// review operation still succeeds, since the reviews table stays the
// source of truth and the next write recomputes from scratch.
type Service struct {
	repo      *Repository
	exchanges *exchange.Repository
	users     *user.Repository
}

func NewService(repo *Repository, exchanges *exchange.Repository, users *user.Repository) *Service {
	return &Service{repo: repo, exchanges: exchanges, users: users}
}

// Create adds a review of the other party on a completed exchange
func (s *Service) Create(ctx context.Context, reviewerID, exchangeID uuid.UUID, rating int, comment string) (*Review, error) {
	e, err := s.exchanges.GetByID(ctx, exchangeID)
	if err != nil {
		if err == exchange.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !e.IsParticipant(reviewerID) {
		return nil, ErrForbidden
	}
	if e.Status != exchange.StatusCompleted {
		return nil, ErrNotCompleted
	}

	existing, err := s.repo.GetByExchangeAndReviewer(ctx, exchangeID, reviewerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyReviewed
	}

	rev := &Review{
		ExchangeID: exchangeID,
		ReviewerID: reviewerID,
		TargetID:   e.OtherParty(reviewerID),
		Rating:     rating,
		Comment:    comment,
	}
	if err := s.repo.Create(ctx, rev); err != nil {
		return nil, err
	}

	s.recompute(ctx, rev.TargetID)
	return rev, nil
}

// Update edits the reviewer's own review
func (s *Service) Update(ctx context.Context, reviewerID, reviewID uuid.UUID, rating int, comment string) (*Review, error) {
	rev, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rev.ReviewerID != reviewerID {
		return nil, ErrForbidden
	}

	if err := s.repo.Update(ctx, reviewID, rating, comment); err != nil {
		return nil, err
	}

	s.recompute(ctx, rev.TargetID)
	return s.repo.GetByID(ctx, reviewID)
}

// Delete removes the reviewer's own review
func (s *Service) Delete(ctx context.Context, reviewerID, reviewID uuid.UUID) error {
	rev, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if rev.ReviewerID != reviewerID {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return err
	}

	s.recompute(ctx, rev.TargetID)
	return nil
}

// ListByTarget returns reviews received by a user
func (s *Service) ListByTarget(ctx context.Context, targetID uuid.UUID, limit, offset int) ([]Review, error) {
	return s.repo.ListByTarget(ctx, targetID, limit, offset)
}

// AggregateFor recomputes a user's rating summary from the reviews table
func (s *Service) AggregateFor(ctx context.Context, targetID uuid.UUID) (*Aggregate, error) {
	ratings, err := s.repo.RatingsByTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return ComputeAggregate(ratings), nil
}

// ComputeAggregate rolls ratings up into average (one decimal), count and
// per-star distribution. Out-of-range values are skipped.
func ComputeAggregate(ratings []int) *Aggregate {
	agg := &Aggregate{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}

	var sum int
	for _, r := range ratings {
		if r < 1 || r > 5 {
			continue
		}
		agg.Distribution[r]++
		agg.Count++
		sum += r
	}
	if agg.Count > 0 {
		agg.Average = math.Round(float64(sum)/float64(agg.Count)*10) / 10
	}
	return agg
}

// recompute refreshes the target's denormalized rating columns.
// Best effort; the caller's operation already succeeded.
func (s *Service) recompute(ctx context.Context, targetID uuid.UUID) {
	agg, err := s.AggregateFor(ctx, targetID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", targetID.String()).Msg("rating recompute failed")
		return
	}

	if err := s.users.UpdateRating(ctx, targetID, agg.Average, agg.Count, agg.Distribution); err != nil {
		log.Warn().Err(err).Str("user_id", targetID.String()).Msg("rating aggregate write failed")
	}
}
