// file: internal/middleware/recovery.go
package middleware

import (
	"net/http"
	"runtime/debug"

	"visualverse/internal/contextutils"
	"visualverse/internal/response"
	"visualverse/internal/services"

	"go.uber.org/zap"
)

// Recovery converts panics into 500 responses and logs the stack
func Recovery(builder *response.Builder, logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("Panic recovered",
						zap.Any("panic", rec),
						zap.String("request_id", contextutils.GetRequestID(r.Context())),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.ByteString("stack", debug.Stack()),
					)
					builder.WriteError(w, r, services.NewInternalError("internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
