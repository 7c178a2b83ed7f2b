package models

import "time"

// Challenge difficulties
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Challenge is a DSA drawing prompt users submit doodles against
type Challenge struct {
	ID          int64    `json:"id" db:"id"`
	Title       string   `json:"title" db:"title" validate:"required,max=100"`
	Prompt      string   `json:"prompt" db:"prompt" validate:"required,max=500"`
	Description string   `json:"description" db:"description" validate:"required,max=1000"`
	Category    string   `json:"category" db:"category" validate:"required,oneof=data-structures algorithms graphs trees arrays strings dynamic-programming sorting searching"`
	Difficulty  string   `json:"difficulty" db:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	Tags        []string `json:"tags,omitempty"`
	Points      int      `json:"points" db:"points" validate:"required,min=1,max=100"`
	TimeLimit   int      `json:"time_limit" db:"time_limit"` // minutes, 0 means unlimited
	IsActive    bool     `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Populated on joined reads
	SubmissionCount int `json:"submission_count,omitempty"`
}
