package middleware

import (
	"context"

	"stockroom/internal/models"
)

type ctxKey string

const contextUser ctxKey = "principal"

// WithUser attaches the resolved principal to the request context.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, contextUser, u)
}

// UserFromContext returns the principal the auth gate resolved, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(contextUser).(*models.User)
	return u, ok
}
