package topup

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIdempotencyKeyDeterministic(t *testing.T) {
	userID := uuid.New()
	day := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	a := IdempotencyKey(userID, "stripe", 50, day)
	b := IdempotencyKey(userID, "stripe", 50, day)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "sha256 hex digest")
}

func TestIdempotencyKeySensitivity(t *testing.T) {
	userID := uuid.New()
	day := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	base := IdempotencyKey(userID, "stripe", 50, day)

	assert.NotEqual(t, base, IdempotencyKey(uuid.New(), "stripe", 50, day), "different user")
	assert.NotEqual(t, base, IdempotencyKey(userID, "bkash", 50, day), "different provider")
	assert.NotEqual(t, base, IdempotencyKey(userID, "stripe", 51, day), "different amount")
	assert.NotEqual(t, base, IdempotencyKey(userID, "stripe", 50, day.AddDate(0, 0, 1)), "different day")
}

func TestIdempotencyKeyScopedToCalendarDayNotTime(t *testing.T) {
	userID := uuid.New()
	morning := time.Date(2025, 3, 14, 0, 0, 1, 0, time.UTC)
	evening := time.Date(2025, 3, 14, 23, 59, 59, 0, time.UTC)

	assert.Equal(t, IdempotencyKey(userID, "stripe", 50, morning), IdempotencyKey(userID, "stripe", 50, evening))
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusInitiated.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}
