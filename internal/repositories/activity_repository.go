package repositories

import (
	"context"
	"fmt"
	"math"

	"visualverse/internal/database"
	"visualverse/internal/models"

	"go.uber.org/zap"
)

// Community contributor score weights. The composite is an engagement
// heuristic, not a law; tune here if product changes the formula.
const (
	contributorLikesWeight   = 0.7
	contributorDoodlesWeight = 0.3
)

// activityRepository implements ActivityRepository over the doodles and
// users tables.
type activityRepository struct {
	*BaseRepository
}

// NewActivityRepository creates a new activity counter repository
func NewActivityRepository(db *database.Manager, logger *zap.Logger) ActivityRepository {
	return &activityRepository{BaseRepository: NewBaseRepository(db, logger)}
}

// GetCounters computes all six criteria counters for a user. Everything
// comes out of one statement so the sub-counters reflect a single
// snapshot of the activity store; likes and doodle counts can never
// skew against each other inside one evaluation.
func (r *activityRepository) GetCounters(ctx context.Context, userID int64) (*models.ActivityCounters, error) {
	query := `
		SELECT
			COUNT(d.id)                                          AS doodles_completed,
			COUNT(DISTINCT d.challenge_id)                       AS challenges_participated,
			COALESCE(SUM(d.likes), 0)                            AS likes_received,
			u.streak_days                                        AS days_streak,
			COUNT(d.id) FILTER (
				WHERE d.rating_count > 0 AND d.rating >= $2
			)                                                    AS perfect_ratings
		FROM users u
		LEFT JOIN doodles d ON d.user_id = u.id
		WHERE u.id = $1
		GROUP BY u.id, u.streak_days`

	var counters models.ActivityCounters
	err := r.QueryRowContext(ctx, query, userID, models.PerfectRatingFloor).Scan(
		&counters.DoodlesCompleted,
		&counters.ChallengesParticipated,
		&counters.LikesReceived,
		&counters.DaysStreak,
		&counters.PerfectRatings,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, fmt.Errorf("user %d not found", userID)
		}
		return nil, fmt.Errorf("failed to compute activity counters: %w", err)
	}

	counters.CommunityContributor = ContributorScore(counters.LikesReceived, counters.DoodlesCompleted)

	r.GetLogger().Debug("Activity counters computed",
		zap.Int64("user_id", userID),
		zap.Int("doodles_completed", counters.DoodlesCompleted),
		zap.Int("likes_received", counters.LikesReceived),
		zap.Int("community_contributor", counters.CommunityContributor),
	)
	return &counters, nil
}

// ContributorScore computes the composite community engagement score:
// floor(likes*0.7 + doodles*0.3).
func ContributorScore(likesReceived, doodlesCompleted int) int {
	return int(math.Floor(
		float64(likesReceived)*contributorLikesWeight +
			float64(doodlesCompleted)*contributorDoodlesWeight,
	))
}
