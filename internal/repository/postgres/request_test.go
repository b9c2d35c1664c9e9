package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeevanrakshak/donor-api/internal/model"
	apperrors "github.com/jeevanrakshak/donor-api/pkg/errors"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func beginTx(t *testing.T, db *sqlx.DB, mock sqlmock.Sqlmock) *sqlx.Tx {
	t.Helper()
	mock.ExpectBegin()
	tx, err := db.Beginx()
	require.NoError(t, err)
	return tx
}

func TestMarkAcceptedTxWinner(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(NewBaseRepository(db))

	requestID := uuid.New()
	donorID := uuid.New()
	donationID := uuid.New()

	tx := beginTx(t, db, mock)
	mock.ExpectExec("UPDATE requests").
		WithArgs(
			string(model.RequestStatusPendingFulfillment),
			donorID,
			"Asha",
			donationID,
			sqlmock.AnyArg(),
			requestID,
			string(model.RequestStatusOpen),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	accepted, err := repo.MarkAcceptedTx(context.Background(), tx, requestID, donorID, "Asha", donationID)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAcceptedTxLoserSeesNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(NewBaseRepository(db))

	tx := beginTx(t, db, mock)
	mock.ExpectExec("UPDATE requests").
		WillReturnResult(sqlmock.NewResult(0, 0))

	accepted, err := repo.MarkAcceptedTx(context.Background(), tx, uuid.New(), uuid.New(), "Asha", uuid.New())
	require.NoError(t, err)
	assert.False(t, accepted, "request no longer open must not be claimed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFulfilledTxGuardsRepeatTransition(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(NewBaseRepository(db))

	tx := beginTx(t, db, mock)
	mock.ExpectExec("UPDATE requests").
		WillReturnResult(sqlmock.NewResult(0, 0))

	fulfilled, err := repo.MarkFulfilledTx(context.Background(), tx, uuid.New())
	require.NoError(t, err)
	assert.False(t, fulfilled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReturnsNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(NewBaseRepository(db))

	id := uuid.New()
	mock.ExpectQuery("(?s)SELECT .+ FROM requests WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), id)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountOpenSince(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRequestRepository(NewBaseRepository(db))

	since := time.Now().Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM requests")).
		WithArgs("Telangana", string(model.RequestStatusOpen), since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountOpenSince(context.Background(), "Telangana", since)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
