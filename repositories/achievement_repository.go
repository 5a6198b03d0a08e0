package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Bekzhan05/quiz-platform/models"
)

var ErrAchievementNotFound = errors.New("achievement not found")

type AchievementRepository interface {
	List(ctx context.Context) ([]models.Achievement, error)
	GetByCode(ctx context.Context, code string) (*models.Achievement, error)
	// Award выдаёт награду идемпотентно: повторная выдача гасится
	// ON CONFLICT DO NOTHING, возвращается awarded=false.
	Award(ctx context.Context, userID, achievementID int) (awarded bool, err error)
	ListByUser(ctx context.Context, userID int) ([]models.UserAchievement, error)
}

type postgresAchievementRepository struct {
	db *sql.DB
}

func NewPostgresAchievementRepository(db *sql.DB) AchievementRepository {
	return &postgresAchievementRepository{db: db}
}

func (r *postgresAchievementRepository) List(ctx context.Context) ([]models.Achievement, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code, title, description FROM achievements ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	achievements := make([]models.Achievement, 0)
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.ID, &a.Code, &a.Title, &a.Description); err != nil {
			return nil, fmt.Errorf("failed to scan achievement row: %w", err)
		}
		achievements = append(achievements, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievement rows: %w", err)
	}
	return achievements, nil
}

func (r *postgresAchievementRepository) GetByCode(ctx context.Context, code string) (*models.Achievement, error) {
	a := &models.Achievement{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, title, description FROM achievements WHERE code = $1`, code).
		Scan(&a.ID, &a.Code, &a.Title, &a.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAchievementNotFound
		}
		return nil, fmt.Errorf("failed to get achievement by code: %w", err)
	}
	return a, nil
}

func (r *postgresAchievementRepository) Award(ctx context.Context, userID, achievementID int) (bool, error) {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, userID, achievementID)
	if err != nil {
		return false, fmt.Errorf("failed to award achievement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check awarded rows: %w", err)
	}
	return affected > 0, nil
}

func (r *postgresAchievementRepository) ListByUser(ctx context.Context, userID int) ([]models.UserAchievement, error) {
	query := `
		SELECT ua.user_id, ua.achievement_id, ua.awarded_at, a.id, a.code, a.title, a.description
		FROM user_achievements ua
		JOIN achievements a ON ua.achievement_id = a.id
		WHERE ua.user_id = $1
		ORDER BY ua.awarded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user achievements: %w", err)
	}
	defer rows.Close()

	result := make([]models.UserAchievement, 0)
	for rows.Next() {
		var ua models.UserAchievement
		var a models.Achievement
		if err := rows.Scan(&ua.UserID, &ua.AchievementID, &ua.AwardedAt, &a.ID, &a.Code, &a.Title, &a.Description); err != nil {
			return nil, fmt.Errorf("failed to scan user achievement row: %w", err)
		}
		ua.Achievement = &a
		result = append(result, ua)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user achievement rows: %w", err)
	}
	return result, nil
}
