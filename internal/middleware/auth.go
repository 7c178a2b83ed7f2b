// file: internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"visualverse/internal/contextutils"
	"visualverse/internal/models"
	"visualverse/internal/response"
	"visualverse/internal/services"
)

// Auth verifies the bearer token and injects the user identity into the
// request context.
func Auth(auth services.AuthService, builder *response.Builder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				builder.WriteError(w, r, services.NewUnauthorizedError("missing authorization token"))
				return
			}

			claims, err := auth.VerifyToken(r.Context(), token)
			if err != nil {
				builder.WriteError(w, r, err)
				return
			}

			ctx := contextutils.WithUserID(r.Context(), claims.UserID)
			ctx = contextutils.WithUserRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests from non-admin users. Must run inside
// Auth.
func RequireAdmin(builder *response.Builder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if contextutils.GetUserRole(r.Context()) != models.RoleAdmin {
				builder.WriteError(w, r, services.NewForbiddenError("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
