package repository

import (
	"context"
	"errors"
	"time"

	"stockroom/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PasswordResetRepository struct {
	db *pgxpool.Pool
}

func NewPasswordResetRepository(db *pgxpool.Pool) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// Create stores a token hash after discarding any live token for the user.
// At most one reset token per user can be outstanding.
func (r *PasswordResetRepository) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID); err != nil {
		logger.Log.Error("purge prior reset token failed (repo)", zap.Error(err), zap.Int64("user_id", userID))
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO password_reset_tokens (user_id, token_hash, expires_at) VALUES ($1, $2, $3)`,
		userID, tokenHash, expiresAt,
	); err != nil {
		logger.Log.Error("create reset token failed (repo)", zap.Error(err), zap.Int64("user_id", userID))
		return err
	}

	return tx.Commit(ctx)
}

// Consume atomically deletes a valid row by hash and returns its owner.
// Of two concurrent presenters of the same token, exactly one succeeds.
func (r *PasswordResetRepository) Consume(ctx context.Context, tokenHash string) (int64, error) {
	var userID int64
	err := r.db.QueryRow(ctx, `
		DELETE FROM password_reset_tokens
		WHERE token_hash = $1 AND expires_at > now()
		RETURNING user_id
	`, tokenHash).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return userID, nil
}

// DeleteExpired drops rows past their expiry; run periodically.
func (r *PasswordResetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE expires_at <= now()`)
	if err != nil {
		logger.Log.Error("reset token sweep failed (repo)", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
