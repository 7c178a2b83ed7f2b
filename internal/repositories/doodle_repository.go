package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"visualverse/internal/database"
	"visualverse/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ErrAlreadyLiked is returned when a user likes a doodle twice
var ErrAlreadyLiked = errors.New("doodle already liked by this user")

// doodleRepository implements DoodleRepository over the doodles table
type doodleRepository struct {
	*BaseRepository
}

// NewDoodleRepository creates a new doodle repository
func NewDoodleRepository(db *database.Manager, logger *zap.Logger) DoodleRepository {
	return &doodleRepository{BaseRepository: NewBaseRepository(db, logger)}
}

const doodleColumns = `
	id, user_id, challenge_id, title, description, image_url, tags,
	likes, rating, rating_count, is_public, is_featured, created_at, updated_at`

// Create inserts a new doodle submission
func (r *doodleRepository) Create(ctx context.Context, doodle *models.Doodle) error {
	query := `
		INSERT INTO doodles (
			user_id, challenge_id, title, description, image_url, tags, is_public
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		doodle.UserID, doodle.ChallengeID, doodle.Title,
		doodle.Description, doodle.ImageURL, pq.Array(doodle.Tags),
		doodle.IsPublic,
	).Scan(&doodle.ID, &doodle.CreatedAt, &doodle.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create doodle: %w", err)
	}

	r.GetLogger().Info("Doodle created",
		zap.Int64("doodle_id", doodle.ID),
		zap.Int64("user_id", doodle.UserID),
		zap.Int64("challenge_id", doodle.ChallengeID),
	)
	return nil
}

// GetByID retrieves a doodle by ID, nil when absent
func (r *doodleRepository) GetByID(ctx context.Context, id int64) (*models.Doodle, error) {
	query := `SELECT ` + doodleColumns + ` FROM doodles WHERE id = $1`

	doodle, err := r.scanDoodle(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get doodle: %w", err)
	}
	return doodle, nil
}

// Delete removes a doodle; likes and ratings cascade with the row
func (r *doodleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM doodles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete doodle: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns public doodles ordered per the pagination params
func (r *doodleRepository) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error) {
	return r.paginate(ctx, `is_public = true`, nil, params)
}

// GetByUserID returns one user's doodles
func (r *doodleRepository) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error) {
	return r.paginate(ctx, `user_id = $1`, []interface{}{userID}, params)
}

// GetByChallengeID returns a challenge's public submissions
func (r *doodleRepository) GetByChallengeID(ctx context.Context, challengeID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error) {
	return r.paginate(ctx, `challenge_id = $1 AND is_public = true`, []interface{}{challengeID}, params)
}

// AddLike records a like and bumps the counter inside one transaction.
// The primary key on doodle_likes rejects duplicate likes.
func (r *doodleRepository) AddLike(ctx context.Context, doodleID, userID int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO doodle_likes (doodle_id, user_id) VALUES ($1, $2)
			 ON CONFLICT (doodle_id, user_id) DO NOTHING`,
			doodleID, userID)
		if err != nil {
			return fmt.Errorf("failed to record like: %w", err)
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if inserted == 0 {
			return ErrAlreadyLiked
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE doodles SET likes = likes + 1, updated_at = NOW() WHERE id = $1`,
			doodleID)
		if err != nil {
			return fmt.Errorf("failed to increment likes: %w", err)
		}
		return nil
	})
}

// RemoveLike removes a like and decrements the counter
func (r *doodleRepository) RemoveLike(ctx context.Context, doodleID, userID int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM doodle_likes WHERE doodle_id = $1 AND user_id = $2`,
			doodleID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove like: %w", err)
		}
		deleted, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if deleted == 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE doodles SET likes = GREATEST(likes - 1, 0), updated_at = NOW() WHERE id = $1`,
			doodleID)
		if err != nil {
			return fmt.Errorf("failed to decrement likes: %w", err)
		}
		return nil
	})
}

// UpsertRating stores a user's rating (replacing an earlier one) and
// recomputes the doodle's average in the same transaction.
func (r *doodleRepository) UpsertRating(ctx context.Context, rating *models.DoodleRating) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO doodle_ratings (doodle_id, user_id, rating)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (doodle_id, user_id) DO UPDATE SET rating = EXCLUDED.rating
			 RETURNING id, created_at`,
			rating.DoodleID, rating.UserID, rating.Rating,
		).Scan(&rating.ID, &rating.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert rating: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE doodles SET
				rating = (SELECT AVG(rating) FROM doodle_ratings WHERE doodle_id = $1),
				rating_count = (SELECT COUNT(*) FROM doodle_ratings WHERE doodle_id = $1),
				updated_at = NOW()
			 WHERE id = $1`,
			rating.DoodleID)
		if err != nil {
			return fmt.Errorf("failed to recompute rating average: %w", err)
		}
		return nil
	})
}

// ===============================
// INTERNAL HELPERS
// ===============================

func (r *doodleRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.GetLogger().Error("Transaction rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *doodleRepository) paginate(ctx context.Context, where string, args []interface{}, params models.PaginationParams) (*models.PaginatedResponse[*models.Doodle], error) {
	params.Normalize()

	var total int64
	countQuery := `SELECT COUNT(*) FROM doodles WHERE ` + where
	if err := r.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count doodles: %w", err)
	}

	// Sort column comes from the validated whitelist in PaginationParams
	query := fmt.Sprintf(
		`SELECT %s FROM doodles WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		doodleColumns, where, params.Sort, params.Order, len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list doodles: %w", err)
	}
	defer rows.Close()

	var doodles []*models.Doodle
	for rows.Next() {
		doodle, err := r.scanDoodle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan doodle row: %w", err)
		}
		doodles = append(doodles, doodle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doodle row iteration failed: %w", err)
	}

	return &models.PaginatedResponse[*models.Doodle]{
		Data:       doodles,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

func (r *doodleRepository) scanDoodle(row rowScanner) (*models.Doodle, error) {
	var doodle models.Doodle
	err := row.Scan(
		&doodle.ID, &doodle.UserID, &doodle.ChallengeID,
		&doodle.Title, &doodle.Description, &doodle.ImageURL,
		pq.Array(&doodle.Tags),
		&doodle.Likes, &doodle.Rating, &doodle.RatingCount,
		&doodle.IsPublic, &doodle.IsFeatured,
		&doodle.CreatedAt, &doodle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doodle, nil
}
