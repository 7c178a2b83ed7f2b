package models

import "time"

// User roles
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// Skill levels
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
	SkillExpert       = "expert"
)

// User represents a registered Visualverse learner
type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username" validate:"required,min=3,max=30"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	PasswordHash string `json:"-" db:"password_hash"`
	FirstName    string `json:"first_name" db:"first_name" validate:"required,max=50"`
	LastName     string `json:"last_name" db:"last_name" validate:"required,max=50"`
	Avatar       string `json:"avatar,omitempty" db:"avatar"`
	Bio          string `json:"bio,omitempty" db:"bio" validate:"omitempty,max=500"`
	Role         string `json:"role" db:"role"`
	SkillLevel   string `json:"skill_level" db:"skill_level"`

	// Learning progress
	TotalPoints    int        `json:"total_points" db:"total_points"`
	StreakDays     int        `json:"streak_days" db:"streak_days"`
	LastActiveDate *time.Time `json:"last_active_date,omitempty" db:"last_active_date"`

	// Denormalized badge summary, refreshed after unlocks
	BadgeStats BadgeStats `json:"badge_stats"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the display name for the user
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user has administrative privileges
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicProfile is the view of a user exposed to other users. It
// carries no contact or activity-tracking fields.
type PublicProfile struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	FullName    string     `json:"full_name"`
	Avatar      string     `json:"avatar,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Role        string     `json:"role"`
	SkillLevel  string     `json:"skill_level"`
	TotalPoints int        `json:"total_points"`
	StreakDays  int        `json:"streak_days"`
	BadgeStats  BadgeStats `json:"badge_stats"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PublicProfile returns the user's public view
func (u *User) PublicProfile() *PublicProfile {
	return &PublicProfile{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName(),
		Avatar:      u.Avatar,
		Bio:         u.Bio,
		Role:        u.Role,
		SkillLevel:  u.SkillLevel,
		TotalPoints: u.TotalPoints,
		StreakDays:  u.StreakDays,
		BadgeStats:  u.BadgeStats,
		CreatedAt:   u.CreatedAt,
	}
}
