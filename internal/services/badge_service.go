// file: internal/services/badge_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"visualverse/internal/cache"
	"visualverse/internal/events"
	"visualverse/internal/models"
	"visualverse/internal/repositories"
	"visualverse/internal/validation"

	"go.uber.org/zap"
)

const (
	badgeCatalogCacheKey = "badges:catalog:active"
	badgeSummaryCacheKey = "badges:summary:%d"
	badgeCatalogCacheTTL = 10 * time.Minute
	badgeSummaryCacheTTL = 5 * time.Minute
)

// badgeService implements the achievement progress engine. All state
// lives in the injected stores; the service itself is stateless and
// safe for concurrent use.
type badgeService struct {
	badges   repositories.BadgeRepository
	ledger   repositories.UserBadgeRepository
	activity repositories.ActivityRepository
	users    repositories.UserRepository
	cache    cache.Cache
	events   events.EventBus
	logger   *zap.Logger
}

// NewBadgeService creates a new badge service with explicit dependencies
func NewBadgeService(
	badges repositories.BadgeRepository,
	ledger repositories.UserBadgeRepository,
	activity repositories.ActivityRepository,
	users repositories.UserRepository,
	cacheInstance cache.Cache,
	eventBus events.EventBus,
	logger *zap.Logger,
) BadgeService {
	return &badgeService{
		badges:   badges,
		ledger:   ledger,
		activity: activity,
		users:    users,
		cache:    cacheInstance,
		events:   eventBus,
		logger:   logger,
	}
}

// ===============================
// PER-CATEGORY CHECKS
// ===============================

func (s *badgeService) CheckDoodlesCompleted(ctx context.Context, userID int64) ([]*models.UnlockedBadge, error) {
	return s.CheckCriteria(ctx, userID, models.CriteriaDoodlesCompleted)
}

func (s *badgeService) CheckChallengesParticipated(ctx context.Context, userID int64) ([]*models.UnlockedBadge, error) {
	return s.CheckCriteria(ctx, userID, models.CriteriaChallengesParticipated)
}

func (s *badgeService) CheckLikesReceived(ctx context.Context, userID int64) ([]*models.UnlockedBadge, error) {
	return s.CheckCriteria(ctx, userID, models.CriteriaLikesReceived)
}

func (s *badgeService) CheckDaysStreak(ctx context.Context, userID int64) ([]*models.UnlockedBadge, error) {
	return s.CheckCriteria(ctx, userID, models.CriteriaDaysStreak)
}

func (s *badgeService) CheckPerfectRatings(ctx context.Context, userID int64) ([]*models.UnlockedBadge, error) {
	return s.CheckCriteria(ctx, userID, models.CriteriaPerfectRatings)
}

func (s *badgeService) CheckCommunityContributor(ctx context.Context, userID int64) ([]*models.UnlockedBadge, error) {
	return s.CheckCriteria(ctx, userID, models.CriteriaCommunityContributor)
}

// CheckCriteria recomputes the activity counters for the user, then
// reconciles every active badge of the given criteria type against the
// progress ledger. Newly crossed badges are unlocked, announced on the
// event bus and folded into the refreshed summary.
func (s *badgeService) CheckCriteria(ctx context.Context, userID int64, criteria models.CriteriaType) ([]*models.UnlockedBadge, error) {
	if !criteria.Valid() {
		return nil, NewValidationError(fmt.Sprintf("unknown criteria type %q", criteria), nil)
	}

	counters, err := s.activity.GetCounters(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to compute activity counters",
			zap.Int64("user_id", userID),
			zap.String("criteria_type", criteria.String()),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to compute activity counters")
	}

	value, _ := counters.Counter(criteria)
	unlocked, evalErr := s.evaluateCriteria(ctx, userID, criteria, value)

	if len(unlocked) > 0 {
		s.finalizeUnlocks(ctx, userID, unlocked)
	}
	return unlocked, evalErr
}

// CheckAllBadges evaluates all six criteria categories from one counter
// snapshot. Categories are independent: a failure in one is collected
// and the rest still run.
func (s *badgeService) CheckAllBadges(ctx context.Context, userID int64) (*models.BadgeCheckResult, error) {
	counters, err := s.activity.GetCounters(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to compute activity counters")
	}

	result := &models.BadgeCheckResult{
		Results: make(map[models.CriteriaType][]*models.UnlockedBadge, len(models.AllCriteriaTypes)),
	}
	var evalErrs []error

	for _, criteria := range models.AllCriteriaTypes {
		value, _ := counters.Counter(criteria)
		unlocked, evalErr := s.evaluateCriteria(ctx, userID, criteria, value)
		if evalErr != nil {
			s.logger.Warn("Criteria evaluation failed, continuing with remaining categories",
				zap.Int64("user_id", userID),
				zap.String("criteria_type", criteria.String()),
				zap.Error(evalErr),
			)
			evalErrs = append(evalErrs, fmt.Errorf("%s: %w", criteria, evalErr))
		}
		result.Results[criteria] = unlocked
		result.NewlyUnlocked = append(result.NewlyUnlocked, unlocked...)
	}
	result.TotalNewlyUnlocked = len(result.NewlyUnlocked)

	if result.TotalNewlyUnlocked > 0 {
		s.finalizeUnlocks(ctx, userID, result.NewlyUnlocked)
	}
	return result, errors.Join(evalErrs...)
}

// evaluateCriteria is the rule evaluator: one upsert per active badge
// of the category, first-crossing detection against the pre-unlock
// state, then the one-way unlock. Per-badge failures never abort the
// batch; each upsert is independently idempotent so a partial failure
// is safe to re-run.
func (s *badgeService) evaluateCriteria(ctx context.Context, userID int64, criteria models.CriteriaType, counterValue int) ([]*models.UnlockedBadge, error) {
	badges, err := s.badges.GetActiveByCriteriaType(ctx, criteria)
	if err != nil {
		return nil, NewInternalError("failed to load badge catalog")
	}

	var newlyUnlocked []*models.UnlockedBadge
	var failures []*BadgeEvalError

	for _, badge := range badges {
		row, err := s.ledger.UpsertProgress(ctx, userID, badge.ID, counterValue, badge.Threshold)
		if err != nil {
			failures = append(failures, &BadgeEvalError{BadgeID: badge.ID, Err: err})
			continue
		}

		// The upsert never touches unlock state, so row.IsUnlocked is
		// the state before this evaluation. Unlocks are permanent: a
		// regressed counter lowers current but never re-locks.
		crossed := !row.IsUnlocked && row.Progress.Current >= row.Progress.Target
		if !crossed {
			continue
		}

		updated, won, err := s.ledger.Unlock(ctx, userID, badge.ID)
		if err != nil {
			failures = append(failures, &BadgeEvalError{BadgeID: badge.ID, Err: err})
			continue
		}
		if !won {
			// A concurrent evaluation unlocked the row first; it owns
			// the announcement.
			continue
		}
		updated.Badge = badge
		newlyUnlocked = append(newlyUnlocked, &models.UnlockedBadge{
			Badge:     badge,
			UserBadge: updated,
		})
	}

	if len(failures) > 0 {
		return newlyUnlocked, &PartialBatchError{Failures: failures}
	}
	return newlyUnlocked, nil
}

// finalizeUnlocks refreshes the denormalized summary and announces each
// unlock. Summary refresh is a full recompute from the ledger, which
// stays correct under concurrent unlocks.
func (s *badgeService) finalizeUnlocks(ctx context.Context, userID int64, unlocked []*models.UnlockedBadge) {
	if _, err := s.users.RefreshBadgeStats(ctx, userID); err != nil {
		s.logger.Error("Failed to refresh badge stats after unlock",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	if err := s.cache.Delete(ctx, fmt.Sprintf(badgeSummaryCacheKey, userID)); err != nil {
		s.logger.Warn("Failed to invalidate summary cache", zap.Error(err))
	}

	for _, entry := range unlocked {
		badge := entry.Badge
		s.events.PublishAsync(ctx, events.NewBadgeUnlockedEvent(
			userID, badge.ID, badge.Name, badge.Rarity, badge.UnlockMessage, badge.Points,
		))
		s.logger.Info("Badge unlocked",
			zap.Int64("user_id", userID),
			zap.Int64("badge_id", badge.ID),
			zap.String("badge_name", badge.Name),
			zap.String("rarity", badge.Rarity),
			zap.Int("points", badge.Points),
		)
	}
}

// ===============================
// PROGRESS AND SUMMARY READS
// ===============================

// GetUserProgress returns every progress row for the user joined with
// its badge definition.
func (s *badgeService) GetUserProgress(ctx context.Context, userID int64) ([]*models.UserBadge, error) {
	rows, err := s.ledger.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load badge progress")
	}
	return rows, nil
}

// GetUnlockedBadges returns the user's unlocked rows, newest first
func (s *badgeService) GetUnlockedBadges(ctx context.Context, userID int64) ([]*models.UserBadge, error) {
	rows, err := s.ledger.GetUnlocked(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load unlocked badges")
	}
	return rows, nil
}

// GetUserSummary returns the cached badge summary plus a live breakdown
func (s *badgeService) GetUserSummary(ctx context.Context, userID int64) (*UserBadgeSummary, error) {
	cacheKey := fmt.Sprintf(badgeSummaryCacheKey, userID)
	var cached UserBadgeSummary
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	stats, err := s.users.GetBadgeStats(ctx, userID)
	if err != nil {
		return nil, NewNotFoundError("user not found")
	}
	breakdown, err := s.ledger.GetProgressSummary(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load progress summary")
	}

	// Badges with no progress row yet still count as not started, so
	// the breakdown is sized against the active catalog.
	if catalogTotal, err := s.badges.CountActive(ctx); err != nil {
		s.logger.Warn("Failed to count active badges", zap.Error(err))
	} else if catalogTotal > breakdown.Total {
		breakdown.NotStarted += catalogTotal - breakdown.Total
		breakdown.Total = catalogTotal
	}

	summary := &UserBadgeSummary{Stats: stats, Breakdown: breakdown}
	if err := s.cache.Set(ctx, cacheKey, summary, badgeSummaryCacheTTL); err != nil {
		s.logger.Warn("Failed to cache badge summary", zap.Error(err))
	}
	return summary, nil
}

// ===============================
// ADMINISTRATIVE OVERRIDE
// ===============================

// AwardBadge force-unlocks a badge regardless of measured progress,
// through the same idempotent unlock primitive the evaluator uses.
func (s *badgeService) AwardBadge(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error) {
	badge, err := s.badges.GetByID(ctx, badgeID)
	if err != nil {
		return nil, NewInternalError("failed to load badge")
	}
	if badge == nil {
		return nil, NewNotFoundError("badge not found")
	}
	if user, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, NewInternalError("failed to load user")
	} else if user == nil {
		return nil, NewNotFoundError("user not found")
	}

	// Ensure the row exists at full progress, then unlock it
	if _, err := s.ledger.UpsertProgress(ctx, userID, badgeID, badge.Threshold, badge.Threshold); err != nil {
		return nil, NewInternalError("failed to update badge progress")
	}

	updated, won, err := s.ledger.Unlock(ctx, userID, badgeID)
	if err != nil {
		return nil, NewInternalError("failed to unlock badge")
	}
	updated.Badge = badge

	if won {
		s.finalizeUnlocks(ctx, userID, []*models.UnlockedBadge{{Badge: badge, UserBadge: updated}})
		s.logger.Info("Badge awarded by override",
			zap.Int64("user_id", userID),
			zap.Int64("badge_id", badgeID),
		)
	}
	return updated, nil
}

// ===============================
// CATALOG OPERATIONS
// ===============================

// ListBadges returns active catalog entries, optionally filtered. The
// unfiltered listing is cached briefly.
func (s *badgeService) ListBadges(ctx context.Context, req *ListBadgesRequest) ([]*models.Badge, error) {
	if req == nil {
		req = &ListBadgesRequest{}
	}
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid badge listing request", err)
	}
	if req.CriteriaType != "" && !req.CriteriaType.Valid() {
		return nil, NewValidationError(fmt.Sprintf("unknown criteria type %q", req.CriteriaType), nil)
	}

	unfiltered := req.Category == "" && req.Rarity == "" && req.CriteriaType == ""
	if unfiltered {
		var cached []*models.Badge
		if hit, _ := s.cache.Get(ctx, badgeCatalogCacheKey, &cached); hit {
			return cached, nil
		}
	}

	badges, err := s.badges.ListActive(ctx, repositories.BadgeFilter{
		Category:     req.Category,
		Rarity:       req.Rarity,
		CriteriaType: req.CriteriaType,
	})
	if err != nil {
		return nil, NewInternalError("failed to list badges")
	}

	if unfiltered {
		if err := s.cache.Set(ctx, badgeCatalogCacheKey, badges, badgeCatalogCacheTTL); err != nil {
			s.logger.Warn("Failed to cache badge catalog", zap.Error(err))
		}
	}
	return badges, nil
}

// GetBadge returns one badge definition
func (s *badgeService) GetBadge(ctx context.Context, badgeID int64) (*models.Badge, error) {
	badge, err := s.badges.GetByID(ctx, badgeID)
	if err != nil {
		return nil, NewInternalError("failed to load badge")
	}
	if badge == nil {
		return nil, NewNotFoundError("badge not found")
	}
	return badge, nil
}

// CreateBadge adds a catalog entry. Malformed thresholds are rejected
// here so evaluation can assume every stored target is at least 1.
func (s *badgeService) CreateBadge(ctx context.Context, req *CreateBadgeRequest) (*models.Badge, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid badge definition", err)
	}
	if !req.CriteriaType.Valid() {
		return nil, NewValidationError(fmt.Sprintf("unknown criteria type %q", req.CriteriaType), nil)
	}

	if existing, err := s.badges.GetByName(ctx, req.Name); err == nil && existing != nil {
		return nil, NewConflictError("badge name already exists", "BADGE_NAME_TAKEN")
	}

	badge := &models.Badge{
		Name:          req.Name,
		Description:   req.Description,
		Icon:          req.Icon,
		Category:      req.Category,
		CriteriaType:  req.CriteriaType,
		Threshold:     req.Threshold,
		Timeframe:     req.Timeframe,
		Rarity:        req.Rarity,
		Points:        req.Points,
		IsActive:      true,
		UnlockMessage: req.UnlockMessage,
	}
	if badge.Timeframe == "" {
		badge.Timeframe = models.TimeframeLifetime
	}
	if badge.Rarity == "" {
		badge.Rarity = models.RarityCommon
	}

	if err := s.badges.Create(ctx, badge); err != nil {
		return nil, NewInternalError("failed to create badge")
	}

	if err := s.cache.Delete(ctx, badgeCatalogCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
	}
	return badge, nil
}

// SetBadgeActive retires or restores a catalog entry. Inactive badges
// drop out of listing and evaluation; rows already unlocked stay
// unlocked.
func (s *badgeService) SetBadgeActive(ctx context.Context, badgeID int64, active bool) (*models.Badge, error) {
	badge, err := s.badges.GetByID(ctx, badgeID)
	if err != nil {
		return nil, NewInternalError("failed to load badge")
	}
	if badge == nil {
		return nil, NewNotFoundError("badge not found")
	}

	if badge.IsActive != active {
		if err := s.badges.SetActive(ctx, badgeID, active); err != nil {
			return nil, NewInternalError("failed to update badge")
		}
		badge.IsActive = active
		if err := s.cache.Delete(ctx, badgeCatalogCacheKey); err != nil {
			s.logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
		}
		s.logger.Info("Badge active flag changed",
			zap.Int64("badge_id", badgeID),
			zap.Bool("active", active),
		)
	}
	return badge, nil
}
