package middleware

import (
	"context"
	"errors"
	"net/http"

	"stockroom/internal/logger"
	"stockroom/internal/models"
	"stockroom/internal/reqctx"
	"stockroom/internal/utils"
	"stockroom/internal/utils/helpers"

	"go.uber.org/zap"
)

// CookieName is the session cookie the gate reads.
const CookieName = "token"

type userResolver interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Auth authenticates the request from the token cookie and attaches the
// resolved user to the context. Every failure branch answers 401; the
// internal reason is only logged.
func Auth(secret string, users userResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				logger.WithCtx(r.Context()).Warn("auth: missing session cookie")
				helpers.Error(w, http.StatusUnauthorized, "not authorized, please log in")
				return
			}

			userID, err := utils.ParseToken(secret, cookie.Value)
			if err != nil {
				reason := "invalid signature"
				if errors.Is(err, utils.ErrTokenExpired) {
					reason = "expired"
				}
				logger.WithCtx(r.Context()).Warn("auth: token rejected", zap.String("reason", reason))
				helpers.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("auth: token subject does not resolve",
					zap.Int64("user_id", userID), zap.Error(err))
				helpers.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := WithUser(r.Context(), user)
			ctx = reqctx.WithUserID(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
