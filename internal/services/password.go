package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stockroom/internal/logger"
	"stockroom/internal/utils"
	"stockroom/internal/utils/helpers"

	"go.uber.org/zap"
)

var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

type PasswordResetRepo interface {
	Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	Consume(ctx context.Context, tokenHash string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, name, resetLink string) error
}

type PasswordService struct {
	repo     PasswordResetRepo
	userRepo UserRepo
	mailer   ResetMailer
	appURL   string
	tokenTTL time.Duration
}

func NewPasswordService(repo PasswordResetRepo, userRepo UserRepo, mailer ResetMailer, appURL string, tokenTTL time.Duration) *PasswordService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &PasswordService{
		repo:     repo,
		userRepo: userRepo,
		mailer:   mailer,
		appURL:   strings.TrimRight(appURL, "/"),
		tokenTTL: tokenTTL,
	}
}

// hashToken derives the stored form of a raw token. The raw value itself is
// never persisted.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// RequestReset issues a single-use token and mails the reset link. It returns
// nil even when the email is unknown so account existence cannot be probed.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	logger.Log.Info("password reset requested", zap.String("email_masked", helpers.MaskEmail(email)))

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		logger.Log.Warn("reset requested for unknown email",
			zap.String("email_masked", helpers.MaskEmail(email)), zap.Error(err))
		return nil
	}

	raw, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		logger.Log.Error("reset token issue failed", zap.Error(err), zap.Int64("user_id", user.ID))
		return nil
	}

	resetLink := fmt.Sprintf("%s/resetpassword/%s", s.appURL, raw)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, resetLink); err != nil {
		// Delivery failure is logged only; failing here would leak existence.
		logger.Log.Error("reset mail enqueue failed", zap.Error(err), zap.Int64("user_id", user.ID))
	}

	logger.Log.Info("reset link queued",
		zap.Int64("user_id", user.ID),
		zap.Time("expires_at", time.Now().Add(s.tokenTTL)),
	)
	return nil
}

// IssueToken invalidates any prior token for the user and returns a fresh raw
// token. The raw value is recoverable only from the reset link.
func (s *PasswordService) IssueToken(ctx context.Context, userID int64) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	// The user id suffix guarantees uniqueness across users even in the
	// astronomically unlikely event of a random collision.
	raw := hex.EncodeToString(buf) + strconv.FormatInt(userID, 10)

	expires := time.Now().Add(s.tokenTTL)
	if err := s.repo.Create(ctx, userID, hashToken(raw), expires); err != nil {
		return "", err
	}
	return raw, nil
}

// ResetPassword consumes a raw token and sets the new password. The row is
// deleted before the password write, so a concurrent presenter of the same
// token loses cleanly instead of silently overwriting the winner's change.
func (s *PasswordService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	logger.Log.Info("password reset attempt")

	if strings.TrimSpace(newPassword) == "" {
		return &ErrValidation{Missing: []string{"password"}}
	}
	if len(newPassword) < minPasswordLen {
		return &ErrValidation{Reason: fmt.Sprintf("password must be at least %d characters", minPasswordLen)}
	}

	userID, err := s.repo.Consume(ctx, hashToken(rawToken))
	if err != nil {
		logger.Log.Warn("invalid or expired reset token", zap.Error(err))
		return ErrResetTokenInvalid
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Log.Error("password hashing failed", zap.Error(err), zap.Int64("user_id", userID))
		return err
	}

	if err := s.userRepo.UpdateUserPassword(ctx, userID, hashed); err != nil {
		logger.Log.Error("password update failed", zap.Error(err), zap.Int64("user_id", userID))
		return err
	}

	logger.Log.Info("password reset completed", zap.Int64("user_id", userID))
	return nil
}

// SweepExpired removes expired ledger rows; wired to the cron scheduler.
func (s *PasswordService) SweepExpired(ctx context.Context) {
	n, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return
	}
	if n > 0 {
		logger.Log.Info("expired reset tokens purged", zap.Int64("count", n))
	}
}
