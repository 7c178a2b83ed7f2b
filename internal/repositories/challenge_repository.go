package repositories

import (
	"context"
	"fmt"

	"visualverse/internal/database"
	"visualverse/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// challengeRepository implements ChallengeRepository over the
// challenges table.
type challengeRepository struct {
	*BaseRepository
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db *database.Manager, logger *zap.Logger) ChallengeRepository {
	return &challengeRepository{BaseRepository: NewBaseRepository(db, logger)}
}

const challengeColumns = `
	id, title, prompt, description, category, difficulty, tags,
	points, time_limit, is_active, created_at, updated_at`

// Create inserts a new challenge
func (r *challengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	query := `
		INSERT INTO challenges (
			title, prompt, description, category, difficulty, tags,
			points, time_limit, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		challenge.Title, challenge.Prompt, challenge.Description,
		challenge.Category, challenge.Difficulty, pq.Array(challenge.Tags),
		challenge.Points, challenge.TimeLimit, challenge.IsActive,
	).Scan(&challenge.ID, &challenge.CreatedAt, &challenge.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}

	r.GetLogger().Info("Challenge created",
		zap.Int64("challenge_id", challenge.ID),
		zap.String("title", challenge.Title),
	)
	return nil
}

// GetByID retrieves a challenge by ID, nil when absent
func (r *challengeRepository) GetByID(ctx context.Context, id int64) (*models.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`

	var challenge models.Challenge
	err := r.QueryRowContext(ctx, query, id).Scan(
		&challenge.ID, &challenge.Title, &challenge.Prompt,
		&challenge.Description, &challenge.Category, &challenge.Difficulty,
		pq.Array(&challenge.Tags), &challenge.Points, &challenge.TimeLimit,
		&challenge.IsActive, &challenge.CreatedAt, &challenge.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return &challenge, nil
}

// ListActive returns active challenges with their submission counts
func (r *challengeRepository) ListActive(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Challenge], error) {
	params.Normalize()

	var total int64
	err := r.QueryRowContext(ctx, `SELECT COUNT(*) FROM challenges WHERE is_active = true`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count challenges: %w", err)
	}

	query := `
		SELECT
			c.id, c.title, c.prompt, c.description, c.category, c.difficulty,
			c.tags, c.points, c.time_limit, c.is_active, c.created_at, c.updated_at,
			COUNT(d.id) AS submission_count
		FROM challenges c
		LEFT JOIN doodles d ON d.challenge_id = c.id
		WHERE c.is_active = true
		GROUP BY c.id
		ORDER BY c.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.QueryContext(ctx, query, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*models.Challenge
	for rows.Next() {
		var challenge models.Challenge
		err := rows.Scan(
			&challenge.ID, &challenge.Title, &challenge.Prompt,
			&challenge.Description, &challenge.Category, &challenge.Difficulty,
			pq.Array(&challenge.Tags), &challenge.Points, &challenge.TimeLimit,
			&challenge.IsActive, &challenge.CreatedAt, &challenge.UpdatedAt,
			&challenge.SubmissionCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge row: %w", err)
		}
		challenges = append(challenges, &challenge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("challenge row iteration failed: %w", err)
	}

	return &models.PaginatedResponse[*models.Challenge]{
		Data:       challenges,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}
