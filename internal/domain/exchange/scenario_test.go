package exchange

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/skillswap-api/internal/domain/ledger"
	"github.com/skillswap/skillswap-api/internal/domain/user"
)

// These tests run against a migrated database pointed to by
// TEST_DATABASE_URL and exercise the full settlement flows end to end.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sqlx.DB) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(`
		INSERT INTO users (id, email, display_name) VALUES ($1, $2, $3)
	`, id, fmt.Sprintf("%s@test.local", id), "Test User")
	require.NoError(t, err)
	return id
}

func newTestService(t *testing.T, db *sqlx.DB) (*Service, *ledger.Service) {
	t.Helper()

	ledgerSvc := ledger.NewService(ledger.NewRepository(db))
	svc := NewService(NewRepository(db), user.NewRepository(db), ledgerSvc, nil, 50, "BDT")
	return svc, ledgerSvc
}

func balances(t *testing.T, ledgerSvc *ledger.Service, userID uuid.UUID) (int64, int64) {
	t.Helper()

	acc, err := ledgerSvc.Account(context.Background(), userID)
	require.NoError(t, err)
	return acc.Balance, acc.HeldBalance
}

func TestHappyPathSettlement(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	svc, ledgerSvc := newTestService(t, db)

	provider := createTestUser(t, db)
	receiver := createTestUser(t, db)

	require.NoError(t, ledgerSvc.Credit(ctx, receiver, 100, ledger.Reference{}, "seed"))

	e, err := svc.Create(ctx, receiver, CreateRequest{
		ProviderID:      provider,
		SkillName:       "Guitar lessons",
		DurationMinutes: 60,
		Credits:         30,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, e.Status)

	// No escrow until the provider confirms
	balance, held := balances(t, ledgerSvc, receiver)
	assert.Equal(t, int64(100), balance)
	assert.Equal(t, int64(0), held)

	e, err = svc.Confirm(ctx, provider, e.ID, "")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, e.Status)

	balance, held = balances(t, ledgerSvc, receiver)
	assert.Equal(t, int64(70), balance)
	assert.Equal(t, int64(30), held)

	_, err = svc.Start(ctx, receiver, e.ID, "")
	require.NoError(t, err)

	e, err = svc.Complete(ctx, provider, e.ID, "")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, e.Status)
	assert.True(t, e.CompletedAt.Valid)

	// Escrow settled to the provider; total credits conserved
	balance, held = balances(t, ledgerSvc, receiver)
	assert.Equal(t, int64(70), balance)
	assert.Equal(t, int64(0), held)

	balance, held = balances(t, ledgerSvc, provider)
	assert.Equal(t, int64(30), balance)
	assert.Equal(t, int64(0), held)
}

func TestCancellationReturnsEscrow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	svc, ledgerSvc := newTestService(t, db)

	provider := createTestUser(t, db)
	receiver := createTestUser(t, db)

	require.NoError(t, ledgerSvc.Credit(ctx, receiver, 50, ledger.Reference{}, "seed"))

	e, err := svc.Create(ctx, receiver, CreateRequest{ProviderID: provider, SkillName: "Cooking", DurationMinutes: 60, Credits: 20})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, provider, e.ID, "")
	require.NoError(t, err)

	balance, held := balances(t, ledgerSvc, receiver)
	require.Equal(t, int64(30), balance)
	require.Equal(t, int64(20), held)

	e, err = svc.Cancel(ctx, receiver, e.ID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, e.Status)

	balance, held = balances(t, ledgerSvc, receiver)
	assert.Equal(t, int64(50), balance)
	assert.Equal(t, int64(0), held)

	balance, _ = balances(t, ledgerSvc, provider)
	assert.Equal(t, int64(0), balance)
}

func TestInsufficientCreditsBlocksRequest(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	svc, ledgerSvc := newTestService(t, db)

	provider := createTestUser(t, db)
	receiver := createTestUser(t, db)

	require.NoError(t, ledgerSvc.Credit(ctx, receiver, 10, ledger.Reference{}, "seed"))

	_, err := svc.Create(ctx, receiver, CreateRequest{ProviderID: provider, SkillName: "Chess", DurationMinutes: 45, Credits: 30})

	var insufficient *InsufficientCreditsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(30), insufficient.Required)
	assert.Equal(t, int64(10), insufficient.Available)
	assert.Equal(t, int64(20), insufficient.Missing)
	assert.Equal(t, 1000.0, insufficient.AmountFiat, "20 credits at 50 BDT each")
}

func TestInvalidTransitionLeavesBalancesUntouched(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	svc, ledgerSvc := newTestService(t, db)

	provider := createTestUser(t, db)
	receiver := createTestUser(t, db)

	require.NoError(t, ledgerSvc.Credit(ctx, receiver, 100, ledger.Reference{}, "seed"))

	e, err := svc.Create(ctx, receiver, CreateRequest{ProviderID: provider, SkillName: "Yoga", DurationMinutes: 60, Credits: 40})
	require.NoError(t, err)

	// Completing straight from pending must fail and move nothing
	_, err = svc.Complete(ctx, provider, e.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	balance, held := balances(t, ledgerSvc, receiver)
	assert.Equal(t, int64(100), balance)
	assert.Equal(t, int64(0), held)

	// Cancelling twice: second attempt loses the claim
	_, err = svc.Cancel(ctx, receiver, e.ID, "")
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, receiver, e.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStrangerCannotDriveExchange(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	svc, ledgerSvc := newTestService(t, db)

	provider := createTestUser(t, db)
	receiver := createTestUser(t, db)
	stranger := createTestUser(t, db)

	require.NoError(t, ledgerSvc.Credit(ctx, receiver, 100, ledger.Reference{}, "seed"))

	e, err := svc.Create(ctx, receiver, CreateRequest{ProviderID: provider, SkillName: "Painting", DurationMinutes: 90, Credits: 10})
	require.NoError(t, err)

	// Only the provider confirms
	_, err = svc.Confirm(ctx, receiver, e.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Confirm(ctx, stranger, e.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, stranger, e.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
