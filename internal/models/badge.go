package models

import "time"

// CriteriaType identifies the category of user activity a badge's
// threshold is measured against.
type CriteriaType string

const (
	CriteriaDoodlesCompleted       CriteriaType = "doodles_completed"
	CriteriaChallengesParticipated CriteriaType = "challenges_participated"
	CriteriaLikesReceived          CriteriaType = "likes_received"
	CriteriaDaysStreak             CriteriaType = "days_streak"
	CriteriaPerfectRatings         CriteriaType = "perfect_ratings"
	CriteriaCommunityContributor   CriteriaType = "community_contributor"
)

// AllCriteriaTypes lists every evaluable criteria type. Order is not
// significant; each category is evaluated independently.
var AllCriteriaTypes = []CriteriaType{
	CriteriaDoodlesCompleted,
	CriteriaChallengesParticipated,
	CriteriaLikesReceived,
	CriteriaDaysStreak,
	CriteriaPerfectRatings,
	CriteriaCommunityContributor,
}

// Valid reports whether c is a known criteria type
func (c CriteriaType) Valid() bool {
	switch c {
	case CriteriaDoodlesCompleted, CriteriaChallengesParticipated,
		CriteriaLikesReceived, CriteriaDaysStreak,
		CriteriaPerfectRatings, CriteriaCommunityContributor:
		return true
	}
	return false
}

func (c CriteriaType) String() string { return string(c) }

// Badge categories
const (
	BadgeCategoryAchievement   = "achievement"
	BadgeCategoryParticipation = "participation"
	BadgeCategorySocial        = "social"
	BadgeCategorySkill         = "skill"
	BadgeCategoryMilestone     = "milestone"
)

// Badge rarities (cosmetic; rarity does not affect evaluation)
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Badge timeframes. Only lifetime badges are evaluated; weekly and
// monthly are accepted by the catalog but treated as lifetime-scoped.
const (
	TimeframeLifetime = "lifetime"
	TimeframeWeekly   = "weekly"
	TimeframeMonthly  = "monthly"
)

// Badge represents an achievement definition in the catalog. Badges are
// admin-managed and read-only to the evaluation engine.
type Badge struct {
	ID            int64        `json:"id" db:"id"`
	Name          string       `json:"name" db:"name" validate:"required,max=50"`
	Description   string       `json:"description" db:"description" validate:"required,max=200"`
	Icon          string       `json:"icon" db:"icon" validate:"required"`
	Category      string       `json:"category" db:"category" validate:"required,oneof=achievement participation social skill milestone"`
	CriteriaType  CriteriaType `json:"criteria_type" db:"criteria_type" validate:"required"`
	Threshold     int          `json:"threshold" db:"threshold" validate:"required,min=1"`
	Timeframe     string       `json:"timeframe" db:"timeframe" validate:"omitempty,oneof=lifetime weekly monthly"`
	Rarity        string       `json:"rarity" db:"rarity" validate:"omitempty,oneof=common uncommon rare epic legendary"`
	Points        int          `json:"points" db:"points" validate:"min=0"`
	IsActive      bool         `json:"is_active" db:"is_active"`
	UnlockMessage string       `json:"unlock_message" db:"unlock_message" validate:"omitempty,max=100"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// BadgeStats is the denormalized per-user badge summary stored on the
// users row. It is a cache recomputed from the user_badges table and is
// rebuildable at any time; it may lag the ledger between recomputes.
type BadgeStats struct {
	TotalBadges       int        `json:"total_badges" db:"total_badges"`
	UnlockedBadges    int        `json:"unlocked_badges" db:"unlocked_badges"`
	TotalBadgePoints  int        `json:"total_badge_points" db:"total_badge_points"`
	LastBadgeUnlocked *time.Time `json:"last_badge_unlocked,omitempty" db:"last_badge_unlocked"`
}

// ActivityCounters holds the six criteria counters for one user,
// computed from the activity store as of a single read. It is derived
// on demand and never persisted.
type ActivityCounters struct {
	DoodlesCompleted       int `json:"doodles_completed"`
	ChallengesParticipated int `json:"challenges_participated"`
	LikesReceived          int `json:"likes_received"`
	DaysStreak             int `json:"days_streak"`
	PerfectRatings         int `json:"perfect_ratings"`
	CommunityContributor   int `json:"community_contributor"`
}

// Counter returns the counter value for the given criteria type. The
// switch is exhaustive over CriteriaType; unknown types return false.
func (a *ActivityCounters) Counter(criteria CriteriaType) (int, bool) {
	switch criteria {
	case CriteriaDoodlesCompleted:
		return a.DoodlesCompleted, true
	case CriteriaChallengesParticipated:
		return a.ChallengesParticipated, true
	case CriteriaLikesReceived:
		return a.LikesReceived, true
	case CriteriaDaysStreak:
		return a.DaysStreak, true
	case CriteriaPerfectRatings:
		return a.PerfectRatings, true
	case CriteriaCommunityContributor:
		return a.CommunityContributor, true
	}
	return 0, false
}
