package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Password reset tokens live on the users row (reset_token_hash,
// reset_token_expires_at).  Only the SHA-256 digest of a token is stored.

// SetResetToken stores a reset token digest, replacing any pending one.
func (r *UserRepo) SetResetToken(ctx context.Context, id uint64, tokenHash string, expiresAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=?, reset_token_expires_at=? WHERE id=?",
		tokenHash, expiresAt.UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeResetToken validates a token digest and, in the same transaction,
// replaces the password hash and clears the token so it cannot be reused.
// Unknown and expired tokens both yield ErrResetTokenInvalid; an expired
// token is cleared as a side effect.
func (r *UserRepo) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		userID    uint64
		expiresAt sql.NullTime
	)
	err = tx.QueryRowContext(ctx,
		"SELECT id, reset_token_expires_at FROM users WHERE reset_token_hash=? LIMIT 1 FOR UPDATE",
		tokenHash).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrResetTokenInvalid
	}
	if err != nil {
		return 0, err
	}

	if !expiresAt.Valid || !now.UTC().Before(expiresAt.Time.UTC()) {
		if _, err := tx.ExecContext(ctx,
			"UPDATE users SET reset_token_hash=NULL, reset_token_expires_at=NULL WHERE id=?",
			userID); err != nil {
			return 0, err
		}
		if err := tx.Commit(); err != nil {
			return 0, err
		}
		committed = true
		return 0, ErrResetTokenInvalid
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash=?, reset_token_hash=NULL, reset_token_expires_at=NULL, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		passwordHash, userID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return userID, nil
}
