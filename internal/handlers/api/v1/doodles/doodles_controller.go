// file: internal/handlers/api/v1/doodles/doodles_controller.go
package doodles

import (
	"encoding/json"
	"net/http"
	"strconv"

	"visualverse/internal/contextutils"
	"visualverse/internal/models"
	"visualverse/internal/response"
	"visualverse/internal/services"

	"go.uber.org/zap"
)

const maxUploadMemory = 10 << 20 // 10MB

// Controller handles doodle submission and engagement API endpoints
type Controller struct {
	doodles services.DoodleService
	files   services.FileService
	builder *response.Builder
	logger  *zap.Logger
}

// NewController creates a new doodle API controller
func NewController(doodles services.DoodleService, files services.FileService, builder *response.Builder, logger *zap.Logger) *Controller {
	return &Controller{
		doodles: doodles,
		files:   files,
		builder: builder,
		logger:  logger,
	}
}

// ===============================
// SUBMISSION ENDPOINTS
// ===============================

// Submit stores a doodle for the caller. The response includes any
// badges the submission unlocked.
func (c *Controller) Submit(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitDoodleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = contextutils.GetUserID(r.Context())

	result, err := c.doodles.SubmitDoodle(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, result)
}

// UploadImage accepts a multipart image and stores it for a later
// submission.
func (c *Controller) UploadImage(w http.ResponseWriter, r *http.Request) {
	if c.files == nil {
		c.builder.WriteError(w, r, services.NewInternalError("file uploads are not configured"))
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid multipart form", err))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("image file is required", err))
		return
	}
	defer file.Close()

	result, err := c.files.UploadImage(r.Context(), &services.UploadImageRequest{
		Reader:   file,
		Filename: header.Filename,
		UserID:   contextutils.GetUserID(r.Context()),
	})
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, result)
}

// ===============================
// READ ENDPOINTS
// ===============================

// Get returns one doodle
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid doodle id", err))
		return
	}
	doodle, err := c.doodles.GetDoodle(r.Context(), id)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, doodle)
}

// List returns a page of public doodles
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	page, err := c.doodles.ListDoodles(r.Context(), paginationFromQuery(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	response.WritePaginated(c.builder, w, r, page)
}

// ListByUser returns a page of one user's doodles
func (c *Controller) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid user id", err))
		return
	}
	page, err := c.doodles.ListUserDoodles(r.Context(), userID, paginationFromQuery(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	response.WritePaginated(c.builder, w, r, page)
}

// ListByChallenge returns a page of submissions for a challenge
func (c *Controller) ListByChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid challenge id", err))
		return
	}
	page, err := c.doodles.ListChallengeDoodles(r.Context(), challengeID, paginationFromQuery(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	response.WritePaginated(c.builder, w, r, page)
}

// ===============================
// ENGAGEMENT ENDPOINTS
// ===============================

// Like records a like. Any badges the author newly unlocked are
// returned so clients can surface them.
func (c *Controller) Like(w http.ResponseWriter, r *http.Request) {
	doodleID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid doodle id", err))
		return
	}
	unlocked, err := c.doodles.LikeDoodle(r.Context(), doodleID, contextutils.GetUserID(r.Context()))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, map[string]interface{}{
		"liked":                 true,
		"author_newly_unlocked": unlocked,
	})
}

// Delete removes a doodle. The author or an admin only.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	doodleID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid doodle id", err))
		return
	}
	if err := c.doodles.DeleteDoodle(r.Context(), doodleID, contextutils.GetUserID(r.Context())); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteNoContent(w, r)
}

// Unlike removes the caller's like
func (c *Controller) Unlike(w http.ResponseWriter, r *http.Request) {
	doodleID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid doodle id", err))
		return
	}
	if err := c.doodles.UnlikeDoodle(r.Context(), doodleID, contextutils.GetUserID(r.Context())); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteNoContent(w, r)
}

// Rate records or replaces the caller's 1-5 rating
func (c *Controller) Rate(w http.ResponseWriter, r *http.Request) {
	doodleID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid doodle id", err))
		return
	}
	var req services.RateDoodleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.DoodleID = doodleID
	req.RatedByID = contextutils.GetUserID(r.Context())

	unlocked, err := c.doodles.RateDoodle(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, map[string]interface{}{
		"rated":                 true,
		"author_newly_unlocked": unlocked,
	})
}

// ===============================
// HELPERS
// ===============================

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func paginationFromQuery(r *http.Request) models.PaginationParams {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	params := models.PaginationParams{
		Limit:  limit,
		Offset: offset,
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
	}
	params.Normalize()
	return params
}
