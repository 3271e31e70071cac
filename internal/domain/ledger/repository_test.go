package ledger

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return NewRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func expectLockAccount(mock sqlmock.Sqlmock, userID uuid.UUID, balance, held int64) {
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM accounts WHERE user_id = $1 FOR UPDATE")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "balance", "held_balance", "updated_at"}).
			AddRow(userID, balance, held, time.Now()))
}

func TestCreditTx(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()
	ref := TopUpRef(uuid.New())

	mock.ExpectBegin()
	expectLockAccount(mock, userID, 10, 0)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET balance = $2, held_balance = $3")).
		WithArgs(userID, int64(60), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger_entries")).
		WithArgs(userID, KindTopUp, int64(50), int64(60), int64(0), sqlmock.AnyArg(), sqlmock.AnyArg(), "top-up").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.BeginTxx(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.CreditTx(context.Background(), tx, userID, 50, ref, "top-up"))
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditTxRejectsNonPositiveAmount(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := repo.BeginTxx(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	assert.ErrorIs(t, repo.CreditTx(context.Background(), tx, uuid.New(), 0, Reference{}, ""), ErrInvalidAmount)
	assert.ErrorIs(t, repo.CreditTx(context.Background(), tx, uuid.New(), -5, Reference{}, ""), ErrInvalidAmount)
}

func TestHoldTxMovesBalanceIntoEscrow(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()
	ref := ExchangeRef(uuid.New())

	mock.ExpectBegin()
	expectLockAccount(mock, userID, 100, 0)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET balance = $2, held_balance = $3")).
		WithArgs(userID, int64(70), int64(30)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger_entries")).
		WithArgs(userID, KindHold, int64(30), int64(70), int64(30), sqlmock.AnyArg(), sqlmock.AnyArg(), "escrow").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.BeginTxx(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.HoldTx(context.Background(), tx, userID, 30, ref, "escrow"))
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldTxInsufficientBalance(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	mock.ExpectBegin()
	expectLockAccount(mock, userID, 20, 0)
	mock.ExpectRollback()

	tx, err := repo.BeginTxx(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	err = repo.HoldTx(context.Background(), tx, userID, 30, ExchangeRef(uuid.New()), "")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestSpendTxInsufficientHeld(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	mock.ExpectBegin()
	expectLockAccount(mock, userID, 100, 10)
	mock.ExpectRollback()

	tx, err := repo.BeginTxx(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	err = repo.SpendTx(context.Background(), tx, userID, 30, ExchangeRef(uuid.New()), "")
	assert.ErrorIs(t, err, ErrInsufficientHeld)
}

func TestReleaseBackTxReturnsEscrow(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()
	ref := ExchangeRef(uuid.New())

	mock.ExpectBegin()
	expectLockAccount(mock, userID, 70, 30)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET balance = $2, held_balance = $3")).
		WithArgs(userID, int64(100), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger_entries")).
		WithArgs(userID, KindRelease, int64(30), int64(100), int64(0), sqlmock.AnyArg(), sqlmock.AnyArg(), "escrow returned").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.BeginTxx(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.ReleaseBackTx(context.Background(), tx, userID, 30, ref, "escrow returned"))
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}
