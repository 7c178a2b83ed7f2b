package services

import (
	"io"
	"time"

	"visualverse/internal/models"
)

// ===============================
// BADGE TYPES
// ===============================

// ListBadgesRequest filters the badge catalog listing
type ListBadgesRequest struct {
	Category     string              `json:"category" validate:"omitempty,oneof=achievement participation social skill milestone"`
	Rarity       string              `json:"rarity" validate:"omitempty,oneof=common uncommon rare epic legendary"`
	CriteriaType models.CriteriaType `json:"criteria_type" validate:"omitempty"`
}

// CreateBadgeRequest creates a catalog entry. Threshold validation
// happens here, at definition time, never during evaluation.
type CreateBadgeRequest struct {
	Name          string              `json:"name" validate:"required,max=50"`
	Description   string              `json:"description" validate:"required,max=200"`
	Icon          string              `json:"icon" validate:"required"`
	Category      string              `json:"category" validate:"required,oneof=achievement participation social skill milestone"`
	CriteriaType  models.CriteriaType `json:"criteria_type" validate:"required"`
	Threshold     int                 `json:"threshold" validate:"required,min=1"`
	Timeframe     string              `json:"timeframe" validate:"omitempty,oneof=lifetime weekly monthly"`
	Rarity        string              `json:"rarity" validate:"omitempty,oneof=common uncommon rare epic legendary"`
	Points        int                 `json:"points" validate:"min=0"`
	UnlockMessage string              `json:"unlock_message" validate:"omitempty,max=100"`
}

// UserBadgeSummary combines the cached stats with a live breakdown of
// the user's progress rows.
type UserBadgeSummary struct {
	Stats     *models.BadgeStats           `json:"stats"`
	Breakdown *models.BadgeProgressSummary `json:"breakdown"`
}

// ===============================
// AUTH TYPES
// ===============================

// RegisterRequest creates a new account
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=30"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
}

// LoginRequest authenticates an existing account
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult carries the issued token and the authenticated user
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// TokenClaims is the verified content of a JWT
type TokenClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// ===============================
// USER TYPES
// ===============================

// UpdateProfileRequest updates mutable profile fields
type UpdateProfileRequest struct {
	FirstName  string `json:"first_name" validate:"omitempty,max=50"`
	LastName   string `json:"last_name" validate:"omitempty,max=50"`
	Avatar     string `json:"avatar" validate:"omitempty,url"`
	Bio        string `json:"bio" validate:"omitempty,max=500"`
	SkillLevel string `json:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced expert"`
}

// ===============================
// DOODLE TYPES
// ===============================

// SubmitDoodleRequest submits a doodle against a challenge
type SubmitDoodleRequest struct {
	UserID      int64    `json:"user_id" validate:"required"`
	ChallengeID int64    `json:"challenge_id" validate:"required"`
	Title       string   `json:"title" validate:"required,max=100"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	ImageURL    string   `json:"image_url" validate:"required,url"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=20"`
	IsPublic    bool     `json:"is_public"`
}

// SubmitDoodleResult returns the stored doodle plus any badges the
// submission unlocked, so handlers can notify without a second call.
type SubmitDoodleResult struct {
	Doodle        *models.Doodle          `json:"doodle"`
	NewlyUnlocked []*models.UnlockedBadge `json:"newly_unlocked,omitempty"`
	StreakDays    int                     `json:"streak_days"`
}

// RateDoodleRequest rates a doodle 1-5
type RateDoodleRequest struct {
	DoodleID  int64 `json:"doodle_id" validate:"required"`
	RatedByID int64 `json:"rated_by_id" validate:"required"`
	Rating    int   `json:"rating" validate:"required,min=1,max=5"`
}

// ===============================
// CHALLENGE TYPES
// ===============================

// CreateChallengeRequest creates a new DSA drawing challenge
type CreateChallengeRequest struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Prompt      string   `json:"prompt" validate:"required,max=500"`
	Description string   `json:"description" validate:"required,max=1000"`
	Category    string   `json:"category" validate:"required,oneof=data-structures algorithms graphs trees arrays strings dynamic-programming sorting searching"`
	Difficulty  string   `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=20"`
	Points      int      `json:"points" validate:"required,min=1,max=100"`
	TimeLimit   int      `json:"time_limit" validate:"min=0"`
}

// ===============================
// FILE TYPES
// ===============================

// UploadImageRequest uploads a doodle image
type UploadImageRequest struct {
	Reader   io.Reader `json:"-"`
	Filename string    `json:"filename" validate:"required"`
	Folder   string    `json:"folder"`
	UserID   int64     `json:"user_id" validate:"required"`
}

// UploadImageResult is the stored image location
type UploadImageResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Bytes    int64  `json:"bytes"`
}
