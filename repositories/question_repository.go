package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/lib/pq"
)

var (
	ErrQuestionNotFound          = errors.New("question not found")
	ErrQuestionInvalidTournament = errors.New("question tournament reference invalid")
)

type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id int) (*models.Question, error)
	ListByTournament(ctx context.Context, tournamentID int, discipline *models.Discipline) ([]models.Question, error)
	Update(ctx context.Context, q *models.Question) error
	Delete(ctx context.Context, id int) error
}

type postgresQuestionRepository struct {
	db *sql.DB
}

func NewPostgresQuestionRepository(db *sql.DB) QuestionRepository {
	return &postgresQuestionRepository{db: db}
}

const questionColumns = `id, tournament_id, discipline, text, reference_answer, points, created_at`

func (r *postgresQuestionRepository) scanQuestion(rowScanner interface {
	Scan(dest ...interface{}) error
}, q *models.Question) error {
	return rowScanner.Scan(
		&q.ID, &q.TournamentID, &q.Discipline, &q.Text,
		&q.ReferenceAnswer, &q.Points, &q.CreatedAt,
	)
}

func (r *postgresQuestionRepository) Create(ctx context.Context, q *models.Question) error {
	query := `
		INSERT INTO questions (tournament_id, discipline, text, reference_answer, points)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		q.TournamentID, q.Discipline, q.Text, q.ReferenceAnswer, q.Points,
	).Scan(&q.ID, &q.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrQuestionInvalidTournament
		}
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (r *postgresQuestionRepository) GetByID(ctx context.Context, id int) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	q := &models.Question{}
	err := r.scanQuestion(r.db.QueryRowContext(ctx, query, id), q)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

func (r *postgresQuestionRepository) ListByTournament(ctx context.Context, tournamentID int, discipline *models.Discipline) ([]models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if discipline != nil {
		query += ` AND discipline = $2`
		args = append(args, *discipline)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	questions := make([]models.Question, 0)
	for rows.Next() {
		var q models.Question
		if err := r.scanQuestion(rows, &q); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		questions = append(questions, q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question rows: %w", err)
	}
	return questions, nil
}

func (r *postgresQuestionRepository) Update(ctx context.Context, q *models.Question) error {
	query := `
		UPDATE questions
		SET text = $1, reference_answer = $2, points = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, q.Text, q.ReferenceAnswer, q.Points, q.ID)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return checkAffectedRows(result, ErrQuestionNotFound)
}

func (r *postgresQuestionRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM questions WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return checkAffectedRows(result, ErrQuestionNotFound)
}
