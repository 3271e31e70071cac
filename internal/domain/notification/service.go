package notification

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Service stores notifications and publishes them for real-time delivery.
// Everything here is best effort: settlement outcomes must never depend on
// notification delivery, so errors are logged and swallowed.
type Service struct {
	repo  *Repository
	redis *redis.Client
}

func NewService(repo *Repository, redisClient *redis.Client) *Service {
	return &Service{repo: repo, redis: redisClient}
}

// Notify fans an event out to the given users
func (s *Service) Notify(ctx context.Context, userIDs []uuid.UUID, event string, payload map[string]interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("notification payload marshal failed")
		return
	}

	for _, userID := range userIDs {
		n := &Notification{
			UserID:  userID,
			Event:   event,
			Payload: body,
		}
		if err := s.repo.Create(ctx, n); err != nil {
			log.Warn().Err(err).Str("event", event).Str("user_id", userID.String()).Msg("notification store failed")
			continue
		}

		s.publish(ctx, userID, n)
	}
}

// List returns the user's notifications
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// MarkRead stamps a notification as read
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// publish pushes the notification onto the user's channel for any
// connected real-time consumer. No-op when redis isn't configured.
func (s *Service) publish(ctx context.Context, userID uuid.UUID, n *Notification) {
	if s.redis == nil {
		return
	}

	msg, err := json.Marshal(n)
	if err != nil {
		return
	}
	if err := s.redis.Publish(ctx, "notifications:"+userID.String(), msg).Err(); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("notification publish failed")
	}
}
