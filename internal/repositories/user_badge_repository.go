package repositories

import (
	"context"
	"fmt"
	"time"

	"visualverse/internal/database"
	"visualverse/internal/models"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// userBadgeRepository implements UserBadgeRepository over the
// user_badges table. All writes go through single-statement atomic
// upserts so concurrent evaluations for the same (user, badge) pair
// serialize in the database and can neither duplicate a row nor lose an
// update.
type userBadgeRepository struct {
	*BaseRepository
}

// NewUserBadgeRepository creates a new progress ledger repository
func NewUserBadgeRepository(db *database.Manager, logger *zap.Logger) UserBadgeRepository {
	return &userBadgeRepository{BaseRepository: NewBaseRepository(db, logger)}
}

const userBadgeColumns = `
	id, user_id, badge_id, progress_current, progress_target,
	progress_percentage, is_unlocked, unlocked_at, last_updated, created_at`

// UpsertProgress creates or updates the progress row for (userID,
// badgeID) in one statement. The current value is clamped to
// [0, target] and the percentage recomputed before the write. The
// unlock state is never modified here, so the returned row carries the
// unlock state as it stood before any crossing decision; detecting and
// applying the first crossing is the evaluator's job.
func (r *userBadgeRepository) UpsertProgress(ctx context.Context, userID, badgeID int64, current, target int) (*models.UserBadge, error) {
	if target < 1 {
		return nil, fmt.Errorf("progress target must be at least 1, got %d", target)
	}
	progress := models.ClampProgress(current, target)

	query := `
		INSERT INTO user_badges (
			user_id, badge_id, progress_current, progress_target,
			progress_percentage, is_unlocked, unlocked_at, last_updated
		) VALUES ($1, $2, $3, $4, $5, false, NULL, NOW())
		ON CONFLICT (user_id, badge_id) DO UPDATE SET
			progress_current    = EXCLUDED.progress_current,
			progress_target     = EXCLUDED.progress_target,
			progress_percentage = EXCLUDED.progress_percentage,
			last_updated        = NOW()
		RETURNING ` + userBadgeColumns

	var row *models.UserBadge
	err := r.retryOnConflict(ctx, func() error {
		var scanErr error
		row, scanErr = r.scanUserBadge(r.QueryRowContext(ctx, query,
			userID, badgeID, progress.Current, progress.Target, progress.Percentage))
		return scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert badge progress: %w", err)
	}
	return row, nil
}

// Unlock transitions the row to unlocked exactly once. The guard on
// is_unlocked makes the call idempotent: a second invocation matches no
// rows and leaves unlocked_at untouched. The returned bool is true only
// for the call that performed the transition.
func (r *userBadgeRepository) Unlock(ctx context.Context, userID, badgeID int64) (*models.UserBadge, bool, error) {
	query := `
		UPDATE user_badges SET
			is_unlocked         = true,
			unlocked_at         = NOW(),
			progress_current    = progress_target,
			progress_percentage = 100,
			last_updated        = NOW()
		WHERE user_id = $1 AND badge_id = $2 AND NOT is_unlocked
		RETURNING ` + userBadgeColumns

	var row *models.UserBadge
	err := r.retryOnConflict(ctx, func() error {
		var scanErr error
		row, scanErr = r.scanUserBadge(r.QueryRowContext(ctx, query, userID, badgeID))
		return scanErr
	})
	if err == nil {
		r.GetLogger().Info("Badge unlocked",
			zap.Int64("user_id", userID),
			zap.Int64("badge_id", badgeID),
		)
		return row, true, nil
	}
	if !r.IsNotFound(err) {
		return nil, false, fmt.Errorf("failed to unlock badge: %w", err)
	}

	// No row matched: either already unlocked (fine) or missing (error)
	existing, getErr := r.GetByUserAndBadge(ctx, userID, badgeID)
	if getErr != nil {
		return nil, false, getErr
	}
	if existing == nil {
		return nil, false, fmt.Errorf("no progress row for user %d badge %d", userID, badgeID)
	}
	return existing, false, nil
}

// GetByUserAndBadge fetches one progress row, nil when absent
func (r *userBadgeRepository) GetByUserAndBadge(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error) {
	query := `SELECT ` + userBadgeColumns + ` FROM user_badges WHERE user_id = $1 AND badge_id = $2`

	row, err := r.scanUserBadge(r.QueryRowContext(ctx, query, userID, badgeID))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get badge progress: %w", err)
	}
	return row, nil
}

// GetUserProgress returns all progress rows for a user joined with
// their badge definitions, most complete first.
func (r *userBadgeRepository) GetUserProgress(ctx context.Context, userID int64) ([]*models.UserBadge, error) {
	query := `
		SELECT
			ub.id, ub.user_id, ub.badge_id, ub.progress_current,
			ub.progress_target, ub.progress_percentage, ub.is_unlocked,
			ub.unlocked_at, ub.last_updated, ub.created_at,
			b.id, b.name, b.description, b.icon, b.category, b.criteria_type,
			b.threshold, b.timeframe, b.rarity, b.points, b.is_active,
			b.unlock_message, b.created_at, b.updated_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1 AND b.is_active = true
		ORDER BY ub.progress_percentage DESC, b.points DESC`

	return r.queryJoined(ctx, query, userID)
}

// GetUnlocked returns the user's unlocked rows joined with definitions,
// most recent unlock first.
func (r *userBadgeRepository) GetUnlocked(ctx context.Context, userID int64) ([]*models.UserBadge, error) {
	query := `
		SELECT
			ub.id, ub.user_id, ub.badge_id, ub.progress_current,
			ub.progress_target, ub.progress_percentage, ub.is_unlocked,
			ub.unlocked_at, ub.last_updated, ub.created_at,
			b.id, b.name, b.description, b.icon, b.category, b.criteria_type,
			b.threshold, b.timeframe, b.rarity, b.points, b.is_active,
			b.unlock_message, b.created_at, b.updated_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1 AND ub.is_unlocked = true
		ORDER BY ub.unlocked_at DESC`

	return r.queryJoined(ctx, query, userID)
}

// GetProgressSummary buckets the user's rows by state in one query
func (r *userBadgeRepository) GetProgressSummary(ctx context.Context, userID int64) (*models.BadgeProgressSummary, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE is_unlocked),
			COUNT(*) FILTER (WHERE NOT is_unlocked AND progress_current > 0),
			COUNT(*) FILTER (WHERE NOT is_unlocked AND progress_current = 0),
			COUNT(*)
		FROM user_badges
		WHERE user_id = $1`

	var summary models.BadgeProgressSummary
	err := r.QueryRowContext(ctx, query, userID).Scan(
		&summary.Unlocked, &summary.InProgress, &summary.NotStarted, &summary.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress summary: %w", err)
	}
	return &summary, nil
}

// ===============================
// INTERNAL HELPERS
// ===============================

// retryOnConflict retries transient write conflicts with exponential
// backoff. Safe because every ledger write is a pure function of its
// inputs; replaying it cannot double-count.
func (r *userBadgeRepository) retryOnConflict(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(10*time.Millisecond),
			backoff.WithMaxInterval(100*time.Millisecond),
		), 3),
		ctx,
	)

	return backoff.RetryNotify(
		func() error {
			err := op()
			if err != nil && !r.IsRetryableConflict(err) {
				return backoff.Permanent(err)
			}
			return err
		},
		policy,
		func(err error, wait time.Duration) {
			r.GetLogger().Warn("Retrying ledger write after conflict",
				zap.Error(err),
				zap.Duration("backoff", wait),
			)
		},
	)
}

func (r *userBadgeRepository) scanUserBadge(row rowScanner) (*models.UserBadge, error) {
	var ub models.UserBadge
	err := row.Scan(
		&ub.ID, &ub.UserID, &ub.BadgeID,
		&ub.Progress.Current, &ub.Progress.Target, &ub.Progress.Percentage,
		&ub.IsUnlocked, &ub.UnlockedAt, &ub.LastUpdated, &ub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ub, nil
}

func (r *userBadgeRepository) queryJoined(ctx context.Context, query string, userID int64) ([]*models.UserBadge, error) {
	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query badge progress: %w", err)
	}
	defer rows.Close()

	var results []*models.UserBadge
	for rows.Next() {
		var ub models.UserBadge
		var badge models.Badge
		err := rows.Scan(
			&ub.ID, &ub.UserID, &ub.BadgeID,
			&ub.Progress.Current, &ub.Progress.Target, &ub.Progress.Percentage,
			&ub.IsUnlocked, &ub.UnlockedAt, &ub.LastUpdated, &ub.CreatedAt,
			&badge.ID, &badge.Name, &badge.Description, &badge.Icon,
			&badge.Category, &badge.CriteriaType, &badge.Threshold,
			&badge.Timeframe, &badge.Rarity, &badge.Points,
			&badge.IsActive, &badge.UnlockMessage,
			&badge.CreatedAt, &badge.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan joined progress row: %w", err)
		}
		ub.Badge = &badge
		results = append(results, &ub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("progress row iteration failed: %w", err)
	}
	return results, nil
}
