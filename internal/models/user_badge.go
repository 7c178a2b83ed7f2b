package models

import (
	"math"
	"time"
)

// BadgeProgress tracks how far a user is toward a badge's threshold.
// Invariants: 0 <= Current <= Target, Percentage == round(Current/Target*100).
type BadgeProgress struct {
	Current    int `json:"current" db:"progress_current"`
	Target     int `json:"target" db:"progress_target"`
	Percentage int `json:"percentage" db:"progress_percentage"`
}

// UserBadge is the per-user, per-badge progress row. At most one row
// exists per (UserID, BadgeID) pair; the unlock transition is one-way.
type UserBadge struct {
	ID          int64         `json:"id" db:"id"`
	UserID      int64         `json:"user_id" db:"user_id"`
	BadgeID     int64         `json:"badge_id" db:"badge_id"`
	Progress    BadgeProgress `json:"progress"`
	IsUnlocked  bool          `json:"is_unlocked" db:"is_unlocked"`
	UnlockedAt  *time.Time    `json:"unlocked_at,omitempty" db:"unlocked_at"`
	LastUpdated time.Time     `json:"last_updated" db:"last_updated"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`

	// Badge is populated when the row is joined with its definition
	Badge *Badge `json:"badge,omitempty"`
}

// ClampProgress clamps current to [0, target] and returns the pair of
// values to store alongside the recomputed percentage.
func ClampProgress(current, target int) BadgeProgress {
	if current < 0 {
		current = 0
	}
	if current > target {
		current = target
	}
	return BadgeProgress{
		Current:    current,
		Target:     target,
		Percentage: ProgressPercentage(current, target),
	}
}

// ProgressPercentage computes round(current/target*100), always in [0, 100]
func ProgressPercentage(current, target int) int {
	if target <= 0 {
		return 0
	}
	if current < 0 {
		current = 0
	}
	if current > target {
		current = target
	}
	return int(math.Round(float64(current) / float64(target) * 100))
}

// UnlockedBadge pairs a newly unlocked progress row with its badge
// definition so callers can surface a notification without a second
// lookup.
type UnlockedBadge struct {
	Badge     *Badge     `json:"badge"`
	UserBadge *UserBadge `json:"user_badge"`
}

// BadgeCheckResult is the merged outcome of evaluating every criteria
// category for a user.
type BadgeCheckResult struct {
	Results            map[CriteriaType][]*UnlockedBadge `json:"results"`
	NewlyUnlocked      []*UnlockedBadge                  `json:"newly_unlocked"`
	TotalNewlyUnlocked int                               `json:"total_newly_unlocked"`
}

// BadgeProgressSummary buckets a user's progress rows by state
type BadgeProgressSummary struct {
	Unlocked   int `json:"unlocked"`
	InProgress int `json:"in_progress"`
	NotStarted int `json:"not_started"`
	Total      int `json:"total"`
}
