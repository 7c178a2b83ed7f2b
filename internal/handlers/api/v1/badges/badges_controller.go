// file: internal/handlers/api/v1/badges/badges_controller.go
package badges

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

// Controller handles badge catalog and progress API endpoints
type Controller struct {
	badges  services.BadgeService
	builder *response.Builder
	logger  *zap.Logger
}

// NewController creates a new badge API controller
func NewController(badges services.BadgeService, builder *response.Builder, logger *zap.Logger) *Controller {
	return &Controller{
		badges:  badges,
		builder: builder,
		logger:  logger,
	}
}

// ===============================
// CATALOG ENDPOINTS
// ===============================

// List returns active badges, optionally filtered by query parameters
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	req := &services.ListBadgesRequest{
		Category:     r.URL.Query().Get("category"),
		Rarity:       r.URL.Query().Get("rarity"),
		CriteriaType: models.CriteriaType(r.URL.Query().Get("criteria_type")),
	}
	badges, err := c.badges.ListBadges(r.Context(), req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, badges)
}

// Get returns one badge definition
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid badge id", err))
		return
	}
	badge, err := c.badges.GetBadge(r.Context(), id)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, badge)
}

// Create adds a badge to the catalog. Admin only.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	badge, err := c.badges.CreateBadge(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, badge)
}

// ===============================
// PROGRESS ENDPOINTS
// ===============================

// MyProgress returns the caller's full progress ledger
func (c *Controller) MyProgress(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	progress, err := c.badges.GetUserProgress(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, progress)
}

// MyUnlocked returns the caller's unlocked badges, newest first
func (c *Controller) MyUnlocked(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	unlocked, err := c.badges.GetUnlockedBadges(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, unlocked)
}

// MySummary returns the caller's badge summary
func (c *Controller) MySummary(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	summary, err := c.badges.GetUserSummary(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, summary)
}

// CheckAll re-evaluates every badge category for the caller and returns
// anything newly unlocked.
func (c *Controller) CheckAll(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	result, err := c.badges.CheckAllBadges(r.Context(), userID)
	if err != nil && result == nil {
		c.builder.WriteError(w, r, err)
		return
	}
	if err != nil {
		c.logger.Warn("Badge check completed with partial failures",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
	c.builder.WriteSuccess(w, r, result)
}

// ===============================
// ADMIN ENDPOINTS
// ===============================

type awardRequest struct {
	UserID int64 `json:"user_id"`
}

// Award force-unlocks a badge for a user. Admin only.
func (c *Controller) Award(w http.ResponseWriter, r *http.Request) {
	badgeID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid badge id", err))
		return
	}
	var req awardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		c.builder.WriteError(w, r, services.NewValidationError("user_id is required", err))
		return
	}

	awarded, err := c.badges.AwardBadge(r.Context(), req.UserID, badgeID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, awarded)
}

// Deactivate retires a badge from listing and evaluation. Admin only.
func (c *Controller) Deactivate(w http.ResponseWriter, r *http.Request) {
	c.setActive(w, r, false)
}

// Restore returns a retired badge to the active catalog. Admin only.
func (c *Controller) Restore(w http.ResponseWriter, r *http.Request) {
	c.setActive(w, r, true)
}

func (c *Controller) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	badgeID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid badge id", err))
		return
	}
	badge, err := c.badges.SetBadgeActive(r.Context(), badgeID, active)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, badge)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
