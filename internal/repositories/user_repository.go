package repositories

import (
	"context"
	"fmt"
	"time"

	"visualverse/internal/database"
	"visualverse/internal/models"

	"go.uber.org/zap"
)

// userRepository implements UserRepository over the users table
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository(db, logger)}
}

const userColumns = `
	id, username, email, password_hash, first_name, last_name, avatar, bio,
	role, skill_level, total_points, streak_days, last_active_date,
	total_badges, unlocked_badges, total_badge_points, last_badge_unlocked,
	is_active, created_at, updated_at`

// Create inserts a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			username, email, password_hash, first_name, last_name,
			avatar, bio, role, skill_level
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		user.Username, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.Avatar, user.Bio,
		user.Role, user.SkillLevel,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if r.IsUniqueViolation(err) {
			return fmt.Errorf("username or email already taken: %w", err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.GetLogger().Info("User created",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return nil
}

// GetByID retrieves an active user by ID, nil when absent
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active = true`
	return r.getOne(ctx, query, id)
}

// GetByUsername retrieves an active user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND is_active = true`
	return r.getOne(ctx, query, username)
}

// GetByEmail retrieves an active user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = true`
	return r.getOne(ctx, query, email)
}

// Update persists mutable profile fields
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			first_name = $2, last_name = $3, avatar = $4, bio = $5,
			skill_level = $6, updated_at = NOW()
		WHERE id = $1`

	result, err := r.ExecContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Avatar, user.Bio, user.SkillLevel)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d not found", user.ID)
	}
	return nil
}

// UpdateStreak stores a recomputed streak counter
func (r *userRepository) UpdateStreak(ctx context.Context, userID int64, streakDays int, lastActive time.Time) error {
	_, err := r.ExecContext(ctx,
		`UPDATE users SET streak_days = $2, last_active_date = $3, updated_at = NOW() WHERE id = $1`,
		userID, streakDays, lastActive)
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	return nil
}

// AddPoints adds learning points to the user's running total
func (r *userRepository) AddPoints(ctx context.Context, userID int64, points int) error {
	_, err := r.ExecContext(ctx,
		`UPDATE users SET total_points = total_points + $2, updated_at = NOW() WHERE id = $1`,
		userID, points)
	if err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}
	return nil
}

// RefreshBadgeStats recomputes the denormalized badge summary straight
// from the ledger and the catalog. A full recompute stays correct under
// concurrent unlocks, unlike incrementing.
func (r *userRepository) RefreshBadgeStats(ctx context.Context, userID int64) (*models.BadgeStats, error) {
	query := `
		UPDATE users SET
			total_badges = (SELECT COUNT(*) FROM badges WHERE is_active = true),
			unlocked_badges = (
				SELECT COUNT(*) FROM user_badges
				WHERE user_id = $1 AND is_unlocked = true
			),
			total_badge_points = (
				SELECT COALESCE(SUM(b.points), 0)
				FROM user_badges ub
				JOIN badges b ON b.id = ub.badge_id
				WHERE ub.user_id = $1 AND ub.is_unlocked = true
			),
			last_badge_unlocked = (
				SELECT MAX(unlocked_at) FROM user_badges
				WHERE user_id = $1 AND is_unlocked = true
			),
			updated_at = NOW()
		WHERE id = $1
		RETURNING total_badges, unlocked_badges, total_badge_points, last_badge_unlocked`

	var stats models.BadgeStats
	err := r.QueryRowContext(ctx, query, userID).Scan(
		&stats.TotalBadges, &stats.UnlockedBadges,
		&stats.TotalBadgePoints, &stats.LastBadgeUnlocked)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, fmt.Errorf("user %d not found", userID)
		}
		return nil, fmt.Errorf("failed to refresh badge stats: %w", err)
	}

	r.GetLogger().Debug("Badge stats refreshed",
		zap.Int64("user_id", userID),
		zap.Int("unlocked_badges", stats.UnlockedBadges),
		zap.Int("total_badge_points", stats.TotalBadgePoints),
	)
	return &stats, nil
}

// GetBadgeStats reads the cached summary without recomputing
func (r *userRepository) GetBadgeStats(ctx context.Context, userID int64) (*models.BadgeStats, error) {
	query := `
		SELECT total_badges, unlocked_badges, total_badge_points, last_badge_unlocked
		FROM users WHERE id = $1`

	var stats models.BadgeStats
	err := r.QueryRowContext(ctx, query, userID).Scan(
		&stats.TotalBadges, &stats.UnlockedBadges,
		&stats.TotalBadgePoints, &stats.LastBadgeUnlocked)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, fmt.Errorf("user %d not found", userID)
		}
		return nil, fmt.Errorf("failed to get badge stats: %w", err)
	}
	return &stats, nil
}

func (r *userRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.Avatar, &user.Bio,
		&user.Role, &user.SkillLevel, &user.TotalPoints,
		&user.StreakDays, &user.LastActiveDate,
		&user.BadgeStats.TotalBadges, &user.BadgeStats.UnlockedBadges,
		&user.BadgeStats.TotalBadgePoints, &user.BadgeStats.LastBadgeUnlocked,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
