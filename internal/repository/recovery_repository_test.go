package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryConsumeMarksTokenUsed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecoveryRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM recovery_tokens")).
		WithArgs("hash-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("ath-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE recovery_tokens SET used_at = UTC_TIMESTAMP() WHERE token_hash = ?")).
		WithArgs("hash-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	userID, err := repo.Consume(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "ath-1", userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecoveryConsumeRejectsUsedOrExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecoveryRepo(db)

	// The SELECT filters out used and expired rows, so both cases look
	// like a missing token.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM recovery_tokens")).
		WithArgs("hash-9").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Consume(context.Background(), "hash-9")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecoveryStore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecoveryRepo(db)

	exp := time.Now().Add(30 * time.Minute)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recovery_tokens (id, user_id, token_hash, expires_at) VALUES (?,?,?,?)")).
		WithArgs(sqlmock.AnyArg(), "ath-1", "hash-1", exp.UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Store(context.Background(), "ath-1", "hash-1", exp))
	assert.NoError(t, mock.ExpectationsWereMet())
}
