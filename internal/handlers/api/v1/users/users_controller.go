// file: internal/handlers/api/v1/users/users_controller.go
package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"visualverse/internal/contextutils"
	"visualverse/internal/response"
	"visualverse/internal/services"

	"go.uber.org/zap"
)

// Controller handles user profile API endpoints
type Controller struct {
	users   services.UserService
	builder *response.Builder
	logger  *zap.Logger
}

// NewController creates a new user API controller
func NewController(users services.UserService, builder *response.Builder, logger *zap.Logger) *Controller {
	return &Controller{
		users:   users,
		builder: builder,
		logger:  logger,
	}
}

// Me returns the authenticated user's profile
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	user, err := c.users.GetUserByID(r.Context(), contextutils.GetUserID(r.Context()))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, user)
}

// UpdateMe updates the authenticated user's profile
func (c *Controller) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	user, err := c.users.UpdateProfile(r.Context(), contextutils.GetUserID(r.Context()), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, user)
}

// Get returns a user's public profile
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid user id", err))
		return
	}
	user, err := c.users.GetUserByID(r.Context(), id)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, user.PublicProfile())
}
