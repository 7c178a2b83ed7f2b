package models

import "time"

// Doodle is a user-drawn visual representation of a DSA concept,
// submitted against a challenge.
type Doodle struct {
	ID          int64    `json:"id" db:"id"`
	UserID      int64    `json:"user_id" db:"user_id" validate:"required"`
	ChallengeID int64    `json:"challenge_id" db:"challenge_id" validate:"required"`
	Title       string   `json:"title" db:"title" validate:"required,max=100"`
	Description string   `json:"description,omitempty" db:"description" validate:"omitempty,max=500"`
	ImageURL    string   `json:"image_url" db:"image_url"`
	Tags        []string `json:"tags,omitempty"`

	Likes       int     `json:"likes" db:"likes"`
	Rating      float64 `json:"rating" db:"rating"` // average of all ratings, 0 when unrated
	RatingCount int     `json:"rating_count" db:"rating_count"`

	IsPublic   bool      `json:"is_public" db:"is_public"`
	IsFeatured bool      `json:"is_featured" db:"is_featured"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	// Populated on joined reads
	Author    *User      `json:"author,omitempty"`
	Challenge *Challenge `json:"challenge,omitempty"`
}

// PerfectRatingFloor is the average rating at which a doodle counts as
// "perfect" for the perfect_ratings criteria.
const PerfectRatingFloor = 4.5

// IsPerfect reports whether the doodle's average rating qualifies for
// the perfect_ratings counter.
func (d *Doodle) IsPerfect() bool {
	return d.RatingCount > 0 && d.Rating >= PerfectRatingFloor
}

// DoodleRating is a single 1-5 rating left by a user on a doodle
type DoodleRating struct {
	ID        int64     `json:"id" db:"id"`
	DoodleID  int64     `json:"doodle_id" db:"doodle_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
