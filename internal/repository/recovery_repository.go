package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RecoveryRepo stores password recovery tokens. Only the SHA-256 hash of
// the token mailed to the user ever reaches this table, so a leaked dump
// cannot be replayed against the reset endpoint.
type RecoveryRepo struct {
	db *sql.DB
}

// NewRecoveryRepo constructs a RecoveryRepo with the provided DB handle.
func NewRecoveryRepo(db *sql.DB) *RecoveryRepo { return &RecoveryRepo{db: db} }

// Store saves a token hash for a user with the given expiry.
func (r *RecoveryRepo) Store(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO recovery_tokens (id, user_id, token_hash, expires_at) VALUES (?,?,?,?)",
		uuid.NewString(), userID, tokenHash, expiresAt.UTC())
	return err
}

// Consume validates a token hash and marks it used in one statement,
// returning the owning user id. A token that is unknown, expired or
// already used yields ErrNotFound.
func (r *RecoveryRepo) Consume(ctx context.Context, tokenHash string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var userID string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM recovery_tokens
		 WHERE token_hash = ? AND used_at IS NULL AND expires_at > UTC_TIMESTAMP()`,
		tokenHash).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return "", err
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE recovery_tokens SET used_at = UTC_TIMESTAMP() WHERE token_hash = ?",
		tokenHash); err != nil {
		return "", err
	}
	return userID, nil
}
