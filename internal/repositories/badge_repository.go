package repositories

import (
	"context"
	"fmt"

	"visualverse/internal/database"
	"visualverse/internal/models"

	"go.uber.org/zap"
)

// badgeRepository implements BadgeRepository over the badges table
type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a new badge catalog repository
func NewBadgeRepository(db *database.Manager, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{BaseRepository: NewBaseRepository(db, logger)}
}

const badgeColumns = `
	id, name, description, icon, category, criteria_type, threshold,
	timeframe, rarity, points, is_active, unlock_message, created_at, updated_at`

// Create inserts a new badge definition
func (r *badgeRepository) Create(ctx context.Context, badge *models.Badge) error {
	query := `
		INSERT INTO badges (
			name, description, icon, category, criteria_type, threshold,
			timeframe, rarity, points, is_active, unlock_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		badge.Name, badge.Description, badge.Icon, badge.Category,
		badge.CriteriaType, badge.Threshold, badge.Timeframe,
		badge.Rarity, badge.Points, badge.IsActive, badge.UnlockMessage,
	).Scan(&badge.ID, &badge.CreatedAt, &badge.UpdatedAt)

	if err != nil {
		if r.IsUniqueViolation(err) {
			return fmt.Errorf("badge name %q already exists: %w", badge.Name, err)
		}
		return fmt.Errorf("failed to create badge: %w", err)
	}

	r.GetLogger().Info("Badge created",
		zap.Int64("badge_id", badge.ID),
		zap.String("name", badge.Name),
		zap.String("criteria_type", badge.CriteriaType.String()),
	)
	return nil
}

// GetByID retrieves a badge by ID
func (r *badgeRepository) GetByID(ctx context.Context, id int64) (*models.Badge, error) {
	query := `SELECT ` + badgeColumns + ` FROM badges WHERE id = $1`

	badge, err := r.scanBadge(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get badge by ID: %w", err)
	}
	return badge, nil
}

// GetByName retrieves a badge by its unique name
func (r *badgeRepository) GetByName(ctx context.Context, name string) (*models.Badge, error) {
	query := `SELECT ` + badgeColumns + ` FROM badges WHERE name = $1`

	badge, err := r.scanBadge(r.QueryRowContext(ctx, query, name))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get badge by name: %w", err)
	}
	return badge, nil
}

// GetActiveByCriteriaType returns all active badges for one criteria
// category, lowest threshold first.
func (r *badgeRepository) GetActiveByCriteriaType(ctx context.Context, criteriaType models.CriteriaType) ([]*models.Badge, error) {
	query := `SELECT ` + badgeColumns + `
		FROM badges
		WHERE criteria_type = $1 AND is_active = true
		ORDER BY threshold ASC`

	rows, err := r.QueryContext(ctx, query, criteriaType)
	if err != nil {
		return nil, fmt.Errorf("failed to get badges by criteria type: %w", err)
	}
	defer rows.Close()

	return r.collectBadges(rows)
}

// ListActive returns active badges matching the filter, ordered by
// points then name like the catalog listing endpoint expects.
func (r *badgeRepository) ListActive(ctx context.Context, filter BadgeFilter) ([]*models.Badge, error) {
	query := `SELECT ` + badgeColumns + ` FROM badges WHERE is_active = true`
	args := make([]interface{}, 0, 3)

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Rarity != "" {
		args = append(args, filter.Rarity)
		query += fmt.Sprintf(" AND rarity = $%d", len(args))
	}
	if filter.CriteriaType != "" {
		args = append(args, filter.CriteriaType)
		query += fmt.Sprintf(" AND criteria_type = $%d", len(args))
	}
	query += " ORDER BY points DESC, name ASC"

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	return r.collectBadges(rows)
}

// CountActive returns the number of active badge definitions
func (r *badgeRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.QueryRowContext(ctx, `SELECT COUNT(*) FROM badges WHERE is_active = true`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active badges: %w", err)
	}
	return count, nil
}

// SetActive toggles a badge's active flag
func (r *badgeRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.ExecContext(ctx,
		`UPDATE badges SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to update badge active flag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("badge %d not found", id)
	}
	return nil
}

// ===============================
// SCAN HELPERS
// ===============================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *badgeRepository) scanBadge(row rowScanner) (*models.Badge, error) {
	var badge models.Badge
	err := row.Scan(
		&badge.ID, &badge.Name, &badge.Description, &badge.Icon,
		&badge.Category, &badge.CriteriaType, &badge.Threshold,
		&badge.Timeframe, &badge.Rarity, &badge.Points,
		&badge.IsActive, &badge.UnlockMessage,
		&badge.CreatedAt, &badge.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *badgeRepository) collectBadges(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]*models.Badge, error) {
	var badges []*models.Badge
	for rows.Next() {
		badge, err := r.scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge row: %w", err)
		}
		badges = append(badges, badge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("badge row iteration failed: %w", err)
	}
	return badges, nil
}
