package services

import (
	"context"

	"visualverse/internal/models"
)

// ===============================
// SERVICE INTERFACES
// ===============================

// BadgeService is the achievement progress engine. Check* operations
// recompute the relevant activity counter, reconcile every active badge
// in that category against the progress ledger and return the badges
// that crossed their threshold during this call.
type BadgeService interface {
	// Per-category checks
	CheckDoodlesCompleted(ctx context.Context, userID int64) ([]*models.UnlockedBadge, error)
	CheckChallengesParticipated(ctx context.Context, userID int64) ([]*models.UnlockedBadge, error)
	CheckLikesReceived(ctx context.Context, userID int64) ([]*models.UnlockedBadge, error)
	CheckDaysStreak(ctx context.Context, userID int64) ([]*models.UnlockedBadge, error)
	CheckPerfectRatings(ctx context.Context, userID int64) ([]*models.UnlockedBadge, error)
	CheckCommunityContributor(ctx context.Context, userID int64) ([]*models.UnlockedBadge, error)

	// CheckCriteria runs one category by tag; Check* helpers above
	// delegate here.
	CheckCriteria(ctx context.Context, userID int64, criteria models.CriteriaType) ([]*models.UnlockedBadge, error)

	// CheckAllBadges runs all six categories independently and merges
	// the newly unlocked badges. One category failing does not stop the
	// others.
	CheckAllBadges(ctx context.Context, userID int64) (*models.BadgeCheckResult, error)

	// Progress and summary reads
	GetUserProgress(ctx context.Context, userID int64) ([]*models.UserBadge, error)
	GetUnlockedBadges(ctx context.Context, userID int64) ([]*models.UserBadge, error)
	GetUserSummary(ctx context.Context, userID int64) (*UserBadgeSummary, error)

	// AwardBadge force-unlocks a badge for a user regardless of
	// measured progress. Administrative override; bypasses evaluation.
	AwardBadge(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error)

	// Catalog operations
	ListBadges(ctx context.Context, req *ListBadgesRequest) ([]*models.Badge, error)
	GetBadge(ctx context.Context, badgeID int64) (*models.Badge, error)
	CreateBadge(ctx context.Context, req *CreateBadgeRequest) (*models.Badge, error)

	// SetBadgeActive retires a badge from (or restores it to) listing
	// and evaluation. Earned unlocks are untouched.
	SetBadgeActive(ctx context.Context, badgeID int64, active bool) (*models.Badge, error)
}

// UserService manages user accounts and learning progress
type UserService interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*models.User, error)

	// RecordActivity updates the user's day streak according to the
	// last active date and returns the new streak length.
	RecordActivity(ctx context.Context, userID int64) (int, error)
	AddPoints(ctx context.Context, userID int64, points int) error
}

// AuthService handles registration, login and token verification
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	VerifyToken(ctx context.Context, token string) (*TokenClaims, error)
}

// DoodleService manages doodle submissions and engagement. Mutations
// trigger the relevant badge checks for the affected user.
type DoodleService interface {
	SubmitDoodle(ctx context.Context, req *SubmitDoodleRequest) (*SubmitDoodleResult, error)
	GetDoodle(ctx context.Context, id int64) (*models.Doodle, error)

	// DeleteDoodle removes a doodle and cleans up its stored image.
	// Only the author or an admin may delete.
	DeleteDoodle(ctx context.Context, doodleID, actorID int64) error
	ListDoodles(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error)
	ListUserDoodles(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error)
	ListChallengeDoodles(ctx context.Context, challengeID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error)

	LikeDoodle(ctx context.Context, doodleID, likedByID int64) ([]*models.UnlockedBadge, error)
	UnlikeDoodle(ctx context.Context, doodleID, userID int64) error
	RateDoodle(ctx context.Context, req *RateDoodleRequest) ([]*models.UnlockedBadge, error)
}

// ChallengeService manages DSA drawing challenges
type ChallengeService interface {
	GetChallenge(ctx context.Context, id int64) (*models.Challenge, error)
	ListChallenges(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Challenge], error)
	CreateChallenge(ctx context.Context, req *CreateChallengeRequest) (*models.Challenge, error)
}

// FileService uploads doodle images to external storage
type FileService interface {
	UploadImage(ctx context.Context, req *UploadImageRequest) (*UploadImageResult, error)
	DeleteImage(ctx context.Context, publicID string) error
}
