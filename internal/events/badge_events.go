package events

import "time"

// Event type names
const (
	EventBadgeUnlocked   = "badge.unlocked"
	EventDoodleSubmitted = "doodle.submitted"
	EventDoodleLiked     = "doodle.liked"
	EventDoodleRated     = "doodle.rated"
	EventUserRegistered  = "user.registered"
)

// BadgeUnlockedEvent fires when a progress row transitions to unlocked
type BadgeUnlockedEvent struct {
	BaseEvent
	BadgeID       int64  `json:"badge_id"`
	BadgeName     string `json:"badge_name"`
	Points        int    `json:"points"`
	Rarity        string `json:"rarity"`
	UnlockMessage string `json:"unlock_message"`
}

// NewBadgeUnlockedEvent builds a badge unlocked event
func NewBadgeUnlockedEvent(userID, badgeID int64, name, rarity, unlockMessage string, points int) *BadgeUnlockedEvent {
	return &BadgeUnlockedEvent{
		BaseEvent: BaseEvent{
			EventType: EventBadgeUnlocked,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		BadgeID:       badgeID,
		BadgeName:     name,
		Points:        points,
		Rarity:        rarity,
		UnlockMessage: unlockMessage,
	}
}

// DoodleSubmittedEvent fires when a user submits a doodle
type DoodleSubmittedEvent struct {
	BaseEvent
	DoodleID    int64 `json:"doodle_id"`
	ChallengeID int64 `json:"challenge_id"`
}

// NewDoodleSubmittedEvent builds a doodle submitted event
func NewDoodleSubmittedEvent(userID, doodleID, challengeID int64) *DoodleSubmittedEvent {
	return &DoodleSubmittedEvent{
		BaseEvent: BaseEvent{
			EventType: EventDoodleSubmitted,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		DoodleID:    doodleID,
		ChallengeID: challengeID,
	}
}

// DoodleLikedEvent fires when a doodle receives a like. UserID is the
// doodle author, the one whose counters change.
type DoodleLikedEvent struct {
	BaseEvent
	DoodleID  int64 `json:"doodle_id"`
	LikedByID int64 `json:"liked_by_id"`
}

// NewDoodleLikedEvent builds a doodle liked event
func NewDoodleLikedEvent(authorID, doodleID, likedByID int64) *DoodleLikedEvent {
	return &DoodleLikedEvent{
		BaseEvent: BaseEvent{
			EventType: EventDoodleLiked,
			Timestamp: time.Now(),
			UserID:    &authorID,
		},
		DoodleID:  doodleID,
		LikedByID: likedByID,
	}
}

// DoodleRatedEvent fires when a doodle is rated. UserID is the author.
type DoodleRatedEvent struct {
	BaseEvent
	DoodleID  int64 `json:"doodle_id"`
	RatedByID int64 `json:"rated_by_id"`
	Rating    int   `json:"rating"`
}

// NewDoodleRatedEvent builds a doodle rated event
func NewDoodleRatedEvent(authorID, doodleID, ratedByID int64, rating int) *DoodleRatedEvent {
	return &DoodleRatedEvent{
		BaseEvent: BaseEvent{
			EventType: EventDoodleRated,
			Timestamp: time.Now(),
			UserID:    &authorID,
		},
		DoodleID:  doodleID,
		RatedByID: ratedByID,
		Rating:    rating,
	}
}

// UserRegisteredEvent fires when a new user registers
type UserRegisteredEvent struct {
	BaseEvent
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewUserRegisteredEvent builds a user registered event
func NewUserRegisteredEvent(userID int64, username, email string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: BaseEvent{
			EventType: EventUserRegistered,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		Username: username,
		Email:    email,
	}
}
