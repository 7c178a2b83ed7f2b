package repositories

import (
	"visualverse/internal/database"

	"go.uber.org/zap"
)

// NewCollection wires every repository over one database manager
func NewCollection(db *database.Manager, logger *zap.Logger) *Collection {
	return &Collection{
		Badges:     NewBadgeRepository(db, logger),
		UserBadges: NewUserBadgeRepository(db, logger),
		Activity:   NewActivityRepository(db, logger),
		Users:      NewUserRepository(db, logger),
		Doodles:    NewDoodleRepository(db, logger),
		Challenges: NewChallengeRepository(db, logger),
	}
}
