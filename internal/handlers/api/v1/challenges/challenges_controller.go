// file: internal/handlers/api/v1/challenges/challenges_controller.go
package challenges

import (
	"encoding/json"
	"net/http"
	"strconv"

	"visualverse/internal/models"
	"visualverse/internal/response"
	"visualverse/internal/services"

	"go.uber.org/zap"
)

// Controller handles challenge API endpoints
type Controller struct {
	challenges services.ChallengeService
	builder    *response.Builder
	logger     *zap.Logger
}

// NewController creates a new challenge API controller
func NewController(challenges services.ChallengeService, builder *response.Builder, logger *zap.Logger) *Controller {
	return &Controller{
		challenges: challenges,
		builder:    builder,
		logger:     logger,
	}
}

// List returns a page of active challenges
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	params := models.PaginationParams{Limit: limit, Offset: offset}
	params.Normalize()

	page, err := c.challenges.ListChallenges(r.Context(), params)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	response.WritePaginated(c.builder, w, r, page)
}

// Get returns one challenge
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid challenge id", err))
		return
	}
	challenge, err := c.challenges.GetChallenge(r.Context(), id)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, challenge)
}

// Create adds a challenge. Admin only.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	challenge, err := c.challenges.CreateChallenge(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, challenge)
}
