// file: internal/handlers/api/v1/auth/auth_controller.go
package auth

import (
	"encoding/json"
	"net/http"

	"visualverse/internal/response"
	"visualverse/internal/services"

	"go.uber.org/zap"
)

// Controller handles authentication API endpoints
type Controller struct {
	auth    services.AuthService
	builder *response.Builder
	logger  *zap.Logger
}

// NewController creates a new auth API controller
func NewController(auth services.AuthService, builder *response.Builder, logger *zap.Logger) *Controller {
	return &Controller{
		auth:    auth,
		builder: builder,
		logger:  logger,
	}
}

// Register creates an account and returns a token
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	result, err := c.auth.Register(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, result)
}

// Login authenticates and returns a token
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	result, err := c.auth.Login(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, result)
}
