package exchange

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"confirmed to in_progress", StatusConfirmed, StatusInProgress, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"in_progress to completed", StatusInProgress, StatusCompleted, true},

		{"pending to in_progress", StatusPending, StatusInProgress, false},
		{"pending to completed", StatusPending, StatusCompleted, false},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, false},
		{"in_progress to cancelled", StatusInProgress, StatusCancelled, false},
		{"completed to anything", StatusCompleted, StatusCancelled, false},
		{"cancelled to anything", StatusCancelled, StatusConfirmed, false},
		{"completed is frozen", StatusCompleted, StatusInProgress, false},
		{"no self loop", StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
}

func TestExchangeParticipants(t *testing.T) {
	provider := uuid.New()
	receiver := uuid.New()
	stranger := uuid.New()

	e := &Exchange{ProviderID: provider, ReceiverID: receiver}

	assert.True(t, e.IsParticipant(provider))
	assert.True(t, e.IsParticipant(receiver))
	assert.False(t, e.IsParticipant(stranger))

	assert.Equal(t, receiver, e.OtherParty(provider))
	assert.Equal(t, provider, e.OtherParty(receiver))
}
