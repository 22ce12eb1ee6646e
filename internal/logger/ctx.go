package logger

import (
	"context"

	"stockroom/internal/reqctx"

	"go.uber.org/zap"
)

// WithCtx returns the global logger annotated with request-scoped fields.
func WithCtx(ctx context.Context) *zap.Logger {
	l := Log
	if l == nil {
		return zap.NewNop()
	}
	if rid, ok := reqctx.GetRequestID(ctx); ok {
		l = l.With(zap.String("request_id", rid))
	}
	if uid, ok := reqctx.GetUserID(ctx); ok {
		l = l.With(zap.Int64("user_id", uid))
	}
	return l
}
