package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"stockroom/internal/logger"
	"stockroom/internal/reqctx"

	"go.uber.org/zap"
)

// Recoverer is the terminal handler for anything unhandled below it. The
// response carries the message, and the stack only outside production.
func Recoverer(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					stack := debug.Stack()
					fields := []zap.Field{
						zap.Any("panic", rec),
						zap.ByteString("stack", stack),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					}
					if rid, ok := reqctx.GetRequestID(r.Context()); ok {
						fields = append(fields, zap.String("request_id", rid))
					}
					logger.Log.Error("panic recovered", fields...)

					body := map[string]interface{}{
						"message": fmt.Sprintf("%v", rec),
					}
					if env != "prod" {
						body["stack"] = string(stack)
					}
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(body)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
