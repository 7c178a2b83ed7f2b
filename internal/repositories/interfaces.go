package repositories

import (
	"context"
	"time"

	"visualverse/internal/models"
)

// ===============================
// CORE REPOSITORY INTERFACES
// ===============================

// BadgeRepository defines the contract for the badge catalog. The
// catalog is admin-managed and read-only to the evaluation engine.
type BadgeRepository interface {
	Create(ctx context.Context, badge *models.Badge) error
	GetByID(ctx context.Context, id int64) (*models.Badge, error)
	GetByName(ctx context.Context, name string) (*models.Badge, error)
	GetActiveByCriteriaType(ctx context.Context, criteriaType models.CriteriaType) ([]*models.Badge, error)
	ListActive(ctx context.Context, filter BadgeFilter) ([]*models.Badge, error)
	CountActive(ctx context.Context) (int, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// BadgeFilter narrows catalog listings
type BadgeFilter struct {
	Category     string
	Rarity       string
	CriteriaType models.CriteriaType
}

// UserBadgeRepository is the progress ledger: the one authoritative
// progress row per (user, badge) pair.
type UserBadgeRepository interface {
	// UpsertProgress atomically creates or updates the progress row for
	// (userID, badgeID): clamps current to [0, target], recomputes the
	// percentage and sets last_updated. It never touches the unlock
	// state; the returned row reflects the unlock state as it was
	// before this call decided anything, so callers can detect a first
	// crossing.
	UpsertProgress(ctx context.Context, userID, badgeID int64, current, target int) (*models.UserBadge, error)

	// Unlock flips the row to unlocked, stamps unlocked_at once and
	// forces current=target, percentage=100. Calling it on an already
	// unlocked row is a no-op. The bool reports whether this call won
	// the transition, so concurrent evaluations announce each unlock
	// exactly once.
	Unlock(ctx context.Context, userID, badgeID int64) (*models.UserBadge, bool, error)

	GetByUserAndBadge(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error)
	GetUserProgress(ctx context.Context, userID int64) ([]*models.UserBadge, error)
	GetUnlocked(ctx context.Context, userID int64) ([]*models.UserBadge, error)
	GetProgressSummary(ctx context.Context, userID int64) (*models.BadgeProgressSummary, error)
}

// ActivityRepository computes the raw activity counters the rule
// evaluator runs against. Pure reads, no side effects.
type ActivityRepository interface {
	// GetCounters returns all six criteria counters for a user from a
	// single consistent read of the activity store.
	GetCounters(ctx context.Context, userID int64) (*models.ActivityCounters, error)
}

// UserRepository defines the contract for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateStreak(ctx context.Context, userID int64, streakDays int, lastActive time.Time) error
	AddPoints(ctx context.Context, userID int64, points int) error

	// RefreshBadgeStats recomputes the denormalized badge summary from
	// the progress ledger. Full recompute, never incremental.
	RefreshBadgeStats(ctx context.Context, userID int64) (*models.BadgeStats, error)
	GetBadgeStats(ctx context.Context, userID int64) (*models.BadgeStats, error)
}

// DoodleRepository defines the contract for doodle data operations
type DoodleRepository interface {
	Create(ctx context.Context, doodle *models.Doodle) error
	GetByID(ctx context.Context, id int64) (*models.Doodle, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error)
	GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error)
	GetByChallengeID(ctx context.Context, challengeID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error)

	// AddLike records a like and increments the counter; a duplicate
	// like from the same user is rejected.
	AddLike(ctx context.Context, doodleID, userID int64) error
	RemoveLike(ctx context.Context, doodleID, userID int64) error

	// UpsertRating inserts or replaces a user's rating and recomputes
	// the doodle's average in the same transaction.
	UpsertRating(ctx context.Context, rating *models.DoodleRating) error
}

// ChallengeRepository defines the contract for challenge data operations
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *models.Challenge) error
	GetByID(ctx context.Context, id int64) (*models.Challenge, error)
	ListActive(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Challenge], error)
}

// ===============================
// REPOSITORY COLLECTION
// ===============================

// Collection bundles all repositories for dependency injection
type Collection struct {
	Badges     BadgeRepository
	UserBadges UserBadgeRepository
	Activity   ActivityRepository
	Users      UserRepository
	Doodles    DoodleRepository
	Challenges ChallengeRepository
}
