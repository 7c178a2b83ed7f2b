// file: internal/services/user_service.go
package services

import (
	"context"
	"time"

	"visualverse/internal/models"
	"visualverse/internal/repositories"
	"visualverse/internal/validation"

	"go.uber.org/zap"
)

// userService manages accounts and the daily activity streak
type userService struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service with explicit dependencies
func NewUserService(users repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		users:  users,
		logger: logger,
	}
}

// GetUserByID returns a user by primary key
func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, NewNotFoundError("user not found")
	}
	return user, nil
}

// GetUserByUsername returns a user by username
func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, NewNotFoundError("user not found")
	}
	return user, nil
}

// UpdateProfile applies mutable profile fields
func (s *userService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid profile update", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, NewNotFoundError("user not found")
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.SkillLevel != "" {
		user.SkillLevel = req.SkillLevel
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, NewInternalError("failed to update profile")
	}
	return user, nil
}

// RecordActivity advances the day streak. Activity on consecutive days
// extends it, a gap of more than one day resets it to 1, and repeated
// activity within the same day leaves it unchanged.
func (s *userService) RecordActivity(ctx context.Context, userID int64) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, NewInternalError("failed to load user")
	}
	if user == nil {
		return 0, NewNotFoundError("user not found")
	}

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	streak := 1
	if user.LastActiveDate != nil {
		lastActive := user.LastActiveDate.UTC().Truncate(24 * time.Hour)
		switch int(today.Sub(lastActive).Hours() / 24) {
		case 0:
			return user.StreakDays, nil
		case 1:
			streak = user.StreakDays + 1
		}
	}

	if err := s.users.UpdateStreak(ctx, userID, streak, today); err != nil {
		return 0, NewInternalError("failed to update streak")
	}
	s.logger.Debug("Streak updated",
		zap.Int64("user_id", userID),
		zap.Int("streak_days", streak),
	)
	return streak, nil
}

// AddPoints credits learning points to the user
func (s *userService) AddPoints(ctx context.Context, userID int64, points int) error {
	if points <= 0 {
		return NewValidationError("points must be positive", nil)
	}
	if err := s.users.AddPoints(ctx, userID, points); err != nil {
		return NewInternalError("failed to add points")
	}
	return nil
}
