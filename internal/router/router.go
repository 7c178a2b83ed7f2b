package router

import (
	"net/http"

	"visualverse/internal/handlers/api/v1/auth"
	"visualverse/internal/handlers/api/v1/badges"
	"visualverse/internal/handlers/api/v1/challenges"
	"visualverse/internal/handlers/api/v1/doodles"
	"visualverse/internal/handlers/api/v1/users"
	"visualverse/internal/middleware"
	"visualverse/internal/response"
	"visualverse/internal/services"

	"go.uber.org/zap"
)

// New configures all HTTP routes and wraps them in the middleware stack
func New(sc *services.ServiceCollection, builder *response.Builder, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	authController := auth.NewController(sc.AuthService, builder, logger)
	badgeController := badges.NewController(sc.BadgeService, builder, logger)
	doodleController := doodles.NewController(sc.DoodleService, sc.FileService, builder, logger)
	challengeController := challenges.NewController(sc.ChallengeService, builder, logger)
	userController := users.NewController(sc.UserService, builder, logger)

	authn := middleware.Auth(sc.AuthService, builder)
	admin := func(h http.Handler) http.Handler {
		return authn(middleware.RequireAdmin(builder)(h))
	}

	// Health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := sc.Health(r.Context()); err != nil {
			builder.WriteError(w, r, services.NewInternalError("service unhealthy"))
			return
		}
		builder.WriteSuccess(w, r, map[string]string{"status": "ok"})
	})

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", authController.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authController.Login)

	// Badge catalog
	mux.HandleFunc("GET /api/v1/badges", badgeController.List)
	mux.HandleFunc("GET /api/v1/badges/{id}", badgeController.Get)
	mux.Handle("POST /api/v1/badges", admin(http.HandlerFunc(badgeController.Create)))
	mux.Handle("DELETE /api/v1/badges/{id}", admin(http.HandlerFunc(badgeController.Deactivate)))
	mux.Handle("POST /api/v1/badges/{id}/restore", admin(http.HandlerFunc(badgeController.Restore)))
	mux.Handle("POST /api/v1/badges/{id}/award", admin(http.HandlerFunc(badgeController.Award)))

	// Badge progress
	mux.Handle("GET /api/v1/me/badges", authn(http.HandlerFunc(badgeController.MyProgress)))
	mux.Handle("GET /api/v1/me/badges/unlocked", authn(http.HandlerFunc(badgeController.MyUnlocked)))
	mux.Handle("GET /api/v1/me/badges/summary", authn(http.HandlerFunc(badgeController.MySummary)))
	mux.Handle("POST /api/v1/me/badges/check", authn(http.HandlerFunc(badgeController.CheckAll)))

	// Doodles
	mux.HandleFunc("GET /api/v1/doodles", doodleController.List)
	mux.HandleFunc("GET /api/v1/doodles/{id}", doodleController.Get)
	mux.Handle("POST /api/v1/doodles", authn(http.HandlerFunc(doodleController.Submit)))
	mux.Handle("DELETE /api/v1/doodles/{id}", authn(http.HandlerFunc(doodleController.Delete)))
	mux.Handle("POST /api/v1/doodles/upload", authn(http.HandlerFunc(doodleController.UploadImage)))
	mux.Handle("POST /api/v1/doodles/{id}/like", authn(http.HandlerFunc(doodleController.Like)))
	mux.Handle("DELETE /api/v1/doodles/{id}/like", authn(http.HandlerFunc(doodleController.Unlike)))
	mux.Handle("POST /api/v1/doodles/{id}/rating", authn(http.HandlerFunc(doodleController.Rate)))

	// Challenges
	mux.HandleFunc("GET /api/v1/challenges", challengeController.List)
	mux.HandleFunc("GET /api/v1/challenges/{id}", challengeController.Get)
	mux.HandleFunc("GET /api/v1/challenges/{id}/doodles", doodleController.ListByChallenge)
	mux.Handle("POST /api/v1/challenges", admin(http.HandlerFunc(challengeController.Create)))

	// Users
	mux.Handle("GET /api/v1/me", authn(http.HandlerFunc(userController.Me)))
	mux.Handle("PATCH /api/v1/me", authn(http.HandlerFunc(userController.UpdateMe)))
	mux.HandleFunc("GET /api/v1/users/{id}", userController.Get)
	mux.HandleFunc("GET /api/v1/users/{id}/doodles", doodleController.ListByUser)

	return middleware.Chain(mux,
		middleware.RequestID(logger),
		middleware.StructuredLogger(logger),
		middleware.Recovery(builder, logger),
	)
}
