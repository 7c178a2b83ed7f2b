// file: internal/services/doodle_service.go
package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"visualverse/internal/events"
	"visualverse/internal/models"
	"visualverse/internal/repositories"
	"visualverse/internal/validation"

	"go.uber.org/zap"
)

// doodleService manages submissions and engagement. Every mutation runs
// the badge checks for the categories it can move; badge failures are
// logged and never fail the mutation itself.
type doodleService struct {
	doodles    repositories.DoodleRepository
	challenges repositories.ChallengeRepository
	users      repositories.UserRepository
	badges     BadgeService
	userSvc    UserService
	files      FileService // nil when uploads are not configured
	events     events.EventBus
	logger     *zap.Logger
}

// NewDoodleService creates a new doodle service with explicit dependencies
func NewDoodleService(
	doodles repositories.DoodleRepository,
	challenges repositories.ChallengeRepository,
	users repositories.UserRepository,
	badges BadgeService,
	userSvc UserService,
	files FileService,
	eventBus events.EventBus,
	logger *zap.Logger,
) DoodleService {
	return &doodleService{
		doodles:    doodles,
		challenges: challenges,
		users:      users,
		badges:     badges,
		userSvc:    userSvc,
		files:      files,
		events:     eventBus,
		logger:     logger,
	}
}

// SubmitDoodle stores a doodle, extends the author's streak, credits
// the challenge points and runs the submission-related badge checks.
func (s *doodleService) SubmitDoodle(ctx context.Context, req *SubmitDoodleRequest) (*SubmitDoodleResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid doodle submission", err)
	}

	challenge, err := s.challenges.GetByID(ctx, req.ChallengeID)
	if err != nil {
		return nil, NewInternalError("failed to load challenge")
	}
	if challenge == nil {
		return nil, NewNotFoundError("challenge not found")
	}
	if !challenge.IsActive {
		return nil, NewBusinessError("challenge is no longer active", "CHALLENGE_INACTIVE")
	}

	doodle := &models.Doodle{
		UserID:      req.UserID,
		ChallengeID: req.ChallengeID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
		IsPublic:    req.IsPublic,
	}
	if err := s.doodles.Create(ctx, doodle); err != nil {
		return nil, NewInternalError("failed to store doodle")
	}

	s.events.PublishAsync(ctx, events.NewDoodleSubmittedEvent(req.UserID, doodle.ID, req.ChallengeID))

	streak, err := s.userSvc.RecordActivity(ctx, req.UserID)
	if err != nil {
		s.logger.Error("Failed to record activity after submission",
			zap.Int64("user_id", req.UserID),
			zap.Error(err),
		)
	}
	if err := s.users.AddPoints(ctx, req.UserID, challenge.Points); err != nil {
		s.logger.Error("Failed to credit challenge points",
			zap.Int64("user_id", req.UserID),
			zap.Int64("challenge_id", challenge.ID),
			zap.Error(err),
		)
	}

	unlocked := s.runChecks(ctx, req.UserID,
		models.CriteriaDoodlesCompleted,
		models.CriteriaChallengesParticipated,
		models.CriteriaDaysStreak,
		models.CriteriaCommunityContributor,
	)

	return &SubmitDoodleResult{
		Doodle:        doodle,
		NewlyUnlocked: unlocked,
		StreakDays:    streak,
	}, nil
}

// GetDoodle returns one doodle
func (s *doodleService) GetDoodle(ctx context.Context, id int64) (*models.Doodle, error) {
	doodle, err := s.doodles.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load doodle")
	}
	if doodle == nil {
		return nil, NewNotFoundError("doodle not found")
	}
	return doodle, nil
}

// DeleteDoodle removes a doodle. Only the author or an admin may
// delete; the stored image is cleaned up best-effort after the row is
// gone.
func (s *doodleService) DeleteDoodle(ctx context.Context, doodleID, actorID int64) error {
	doodle, err := s.doodles.GetByID(ctx, doodleID)
	if err != nil {
		return NewInternalError("failed to load doodle")
	}
	if doodle == nil {
		return NewNotFoundError("doodle not found")
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return NewInternalError("failed to load user")
	}
	if actor == nil {
		return NewNotFoundError("user not found")
	}
	if doodle.UserID != actorID && !actor.IsAdmin() {
		return NewForbiddenError("only the author or an admin can delete a doodle")
	}

	if err := s.doodles.Delete(ctx, doodleID); err != nil {
		return NewInternalError("failed to delete doodle")
	}

	if s.files != nil {
		if publicID := cloudinaryPublicID(doodle.ImageURL); publicID != "" {
			if err := s.files.DeleteImage(ctx, publicID); err != nil {
				s.logger.Warn("Failed to delete doodle image",
					zap.Int64("doodle_id", doodleID),
					zap.String("public_id", publicID),
					zap.Error(err),
				)
			}
		}
	}

	s.logger.Info("Doodle deleted",
		zap.Int64("doodle_id", doodleID),
		zap.Int64("actor_id", actorID),
	)
	return nil
}

// cloudinaryPublicID extracts the public ID from a Cloudinary delivery
// URL: the path after /upload/, minus the version segment and the file
// extension. Returns "" for anything else.
func cloudinaryPublicID(rawURL string) string {
	const marker = "/upload/"
	idx := strings.Index(rawURL, marker)
	if idx < 0 {
		return ""
	}
	path := rawURL[idx+len(marker):]
	if strings.HasPrefix(path, "v") {
		if slash := strings.IndexByte(path, '/'); slash > 1 {
			if _, err := strconv.Atoi(path[1:slash]); err == nil {
				path = path[slash+1:]
			}
		}
	}
	if dot := strings.LastIndexByte(path, '.'); dot > 0 {
		path = path[:dot]
	}
	return path
}

// ListDoodles returns a page of public doodles
func (s *doodleService) ListDoodles(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error) {
	page, err := s.doodles.List(ctx, params)
	if err != nil {
		return nil, NewInternalError("failed to list doodles")
	}
	return page, nil
}

// ListUserDoodles returns a page of one user's doodles
func (s *doodleService) ListUserDoodles(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error) {
	page, err := s.doodles.GetByUserID(ctx, userID, params)
	if err != nil {
		return nil, NewInternalError("failed to list doodles")
	}
	return page, nil
}

// ListChallengeDoodles returns a page of submissions for a challenge
func (s *doodleService) ListChallengeDoodles(ctx context.Context, challengeID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error) {
	page, err := s.doodles.GetByChallengeID(ctx, challengeID, params)
	if err != nil {
		return nil, NewInternalError("failed to list doodles")
	}
	return page, nil
}

// LikeDoodle records a like and runs the author's engagement checks.
// The returned unlocks belong to the doodle's author, not the liker.
func (s *doodleService) LikeDoodle(ctx context.Context, doodleID, likedByID int64) ([]*models.UnlockedBadge, error) {
	doodle, err := s.doodles.GetByID(ctx, doodleID)
	if err != nil {
		return nil, NewInternalError("failed to load doodle")
	}
	if doodle == nil {
		return nil, NewNotFoundError("doodle not found")
	}
	if doodle.UserID == likedByID {
		return nil, NewBusinessError("cannot like your own doodle", "SELF_LIKE")
	}

	if err := s.doodles.AddLike(ctx, doodleID, likedByID); err != nil {
		if errors.Is(err, repositories.ErrAlreadyLiked) {
			return nil, NewConflictError("doodle already liked", "ALREADY_LIKED")
		}
		return nil, NewInternalError("failed to record like")
	}

	s.events.PublishAsync(ctx, events.NewDoodleLikedEvent(doodle.UserID, doodleID, likedByID))

	unlocked := s.runChecks(ctx, doodle.UserID,
		models.CriteriaLikesReceived,
		models.CriteriaCommunityContributor,
	)
	return unlocked, nil
}

// UnlikeDoodle removes a like. Regressed counters lower progress but
// never re-lock earned badges, so no check runs here.
func (s *doodleService) UnlikeDoodle(ctx context.Context, doodleID, userID int64) error {
	if err := s.doodles.RemoveLike(ctx, doodleID, userID); err != nil {
		return NewInternalError("failed to remove like")
	}
	return nil
}

// RateDoodle records or replaces a rating and runs the author's
// perfect-ratings check, since any rating moves the average.
func (s *doodleService) RateDoodle(ctx context.Context, req *RateDoodleRequest) ([]*models.UnlockedBadge, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid rating", err)
	}

	doodle, err := s.doodles.GetByID(ctx, req.DoodleID)
	if err != nil {
		return nil, NewInternalError("failed to load doodle")
	}
	if doodle == nil {
		return nil, NewNotFoundError("doodle not found")
	}
	if doodle.UserID == req.RatedByID {
		return nil, NewBusinessError("cannot rate your own doodle", "SELF_RATING")
	}

	rating := &models.DoodleRating{
		DoodleID: req.DoodleID,
		UserID:   req.RatedByID,
		Rating:   req.Rating,
	}
	if err := s.doodles.UpsertRating(ctx, rating); err != nil {
		return nil, NewInternalError("failed to record rating")
	}

	s.events.PublishAsync(ctx, events.NewDoodleRatedEvent(doodle.UserID, req.DoodleID, req.RatedByID, req.Rating))

	// The author's perfect count only moves when this doodle is perfect
	// now or was before the new rating shifted the average.
	updated, err := s.doodles.GetByID(ctx, req.DoodleID)
	if err != nil || updated == nil {
		updated = doodle
	}
	if !doodle.IsPerfect() && !updated.IsPerfect() {
		return nil, nil
	}
	unlocked := s.runChecks(ctx, doodle.UserID, models.CriteriaPerfectRatings)
	return unlocked, nil
}

// runChecks evaluates the given categories and merges the unlocks.
// Evaluation failures are logged; each check is idempotent and the next
// activity retries it naturally.
func (s *doodleService) runChecks(ctx context.Context, userID int64, criteria ...models.CriteriaType) []*models.UnlockedBadge {
	var unlocked []*models.UnlockedBadge
	for _, c := range criteria {
		badges, err := s.badges.CheckCriteria(ctx, userID, c)
		if err != nil {
			s.logger.Warn("Badge check failed after activity",
				zap.Int64("user_id", userID),
				zap.String("criteria_type", c.String()),
				zap.Error(err),
			)
		}
		unlocked = append(unlocked, badges...)
	}
	return unlocked
}
