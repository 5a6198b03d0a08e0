package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantNotFound          = errors.New("participant not found")
	ErrParticipantUserInvalid       = errors.New("participant user reference invalid")
	ErrParticipantTournamentInvalid = errors.New("participant tournament reference invalid")
)

// LeaderboardFilter ограничивает выборку турнирной таблицы.
type LeaderboardFilter struct {
	TournamentID int
	Discipline   *models.Discipline
	Limit        int
	Offset       int
}

type ParticipantRepository interface {
	// CreateOrGet атомарно вставляет запись участия либо возвращает уже
	// существующую для тройки (tournament_id, user_id, discipline).
	// Два конкурентных вызова никогда не создадут две строки: уникальность
	// обеспечивает констрейнт, а не проверка в приложении.
	CreateOrGet(ctx context.Context, p *models.Participant) (created bool, err error)
	FindByID(ctx context.Context, id int) (*models.Participant, error)
	// AddScore инкрементирует счёт и счётчик решённых задач одним UPDATE,
	// без чтения-модификации-записи на стороне приложения.
	AddScore(ctx context.Context, id int, pointsDelta float64, casesDelta int) (*models.Participant, error)
	UpdateStatus(ctx context.Context, id int, status models.ParticipantStatus) error
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	ListForLeaderboard(ctx context.Context, filter LeaderboardFilter) ([]*models.Participant, error)
	// ListByIDs загружает записи участия с данными пользователей без
	// гарантии порядка; отсутствующие id молча пропускаются.
	ListByIDs(ctx context.Context, ids []int) ([]*models.Participant, error)
	// SnapshotPositions фиксирует текущий порядок в колонке position
	// одной транзакцией.
	SnapshotPositions(ctx context.Context, tournamentID int, discipline models.Discipline) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantColumns = `id, tournament_id, user_id, discipline, status, score, cases_resolved, position, meta, joined_at`

func (r *postgresParticipantRepository) scanParticipant(rowScanner interface {
	Scan(dest ...interface{}) error
}, p *models.Participant) error {
	return rowScanner.Scan(
		&p.ID,
		&p.TournamentID,
		&p.UserID,
		&p.Discipline,
		&p.Status,
		&p.Score,
		&p.CasesResolved,
		&p.Position,
		&p.Meta,
		&p.JoinedAt,
	)
}

func (r *postgresParticipantRepository) CreateOrGet(ctx context.Context, p *models.Participant) (bool, error) {
	// DO UPDATE с no-op присваиванием нужен, чтобы RETURNING отдал
	// существующую строку: DO NOTHING вернул бы пустой результат.
	query := `
		INSERT INTO participants (tournament_id, user_id, discipline, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tournament_id, user_id, discipline)
		DO UPDATE SET status = participants.status
		RETURNING ` + participantColumns + `, (xmax = 0) AS inserted`

	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		p.TournamentID,
		p.UserID,
		p.Discipline,
		p.Status,
	).Scan(
		&p.ID,
		&p.TournamentID,
		&p.UserID,
		&p.Discipline,
		&p.Status,
		&p.Score,
		&p.CasesResolved,
		&p.Position,
		&p.Meta,
		&p.JoinedAt,
		&inserted,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "participants_user_id_fkey":
				return false, ErrParticipantUserInvalid
			case "participants_tournament_id_fkey":
				return false, ErrParticipantTournamentInvalid
			}
		}
		return false, fmt.Errorf("failed to create or get participant: %w", err)
	}
	return inserted, nil
}

func (r *postgresParticipantRepository) FindByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`
	p := &models.Participant{}
	err := r.scanParticipant(r.db.QueryRowContext(ctx, query, id), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) AddScore(ctx context.Context, id int, pointsDelta float64, casesDelta int) (*models.Participant, error) {
	query := `
		UPDATE participants
		SET score = score + $1, cases_resolved = cases_resolved + $2
		WHERE id = $3
		RETURNING ` + participantColumns

	p := &models.Participant{}
	err := r.scanParticipant(r.db.QueryRowContext(ctx, query, pointsDelta, casesDelta, id), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to add score to participant: %w", err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) UpdateStatus(ctx context.Context, id int, status models.ParticipantStatus) error {
	query := `UPDATE participants SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	query := `SELECT COUNT(*) FROM participants WHERE tournament_id = $1 AND status <> 'removed'`
	var count int
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) ListForLeaderboard(ctx context.Context, filter LeaderboardFilter) ([]*models.Participant, error) {
	var queryBuilder strings.Builder
	args := []interface{}{filter.TournamentID}
	argCounter := 2

	queryBuilder.WriteString(`
		SELECT
			p.id, p.tournament_id, p.user_id, p.discipline, p.status, p.score,
			p.cases_resolved, p.position, p.meta, p.joined_at,
			u.id, u.first_name, u.last_name, u.nickname, u.avatar_key
		FROM participants p
		JOIN users u ON p.user_id = u.id
		WHERE p.tournament_id = $1 AND p.status <> 'removed'`)

	if filter.Discipline != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND p.discipline = $%d", argCounter))
		args = append(args, *filter.Discipline)
		argCounter++
	}

	// Порядок детерминированный: при равном счёте выше тот, кто
	// зарегистрировался раньше.
	queryBuilder.WriteString(" ORDER BY p.score DESC, p.joined_at ASC")

	if filter.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filter.Limit)
		argCounter++
	}
	if filter.Offset > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		var u models.User
		if err := rows.Scan(
			&p.ID, &p.TournamentID, &p.UserID, &p.Discipline, &p.Status, &p.Score,
			&p.CasesResolved, &p.Position, &p.Meta, &p.JoinedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Nickname, &u.AvatarKey,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		p.User = &u
		participants = append(participants, &p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard rows: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Participant, error) {
	if len(ids) == 0 {
		return []*models.Participant{}, nil
	}

	query := `
		SELECT
			p.id, p.tournament_id, p.user_id, p.discipline, p.status, p.score,
			p.cases_resolved, p.position, p.meta, p.joined_at,
			u.id, u.first_name, u.last_name, u.nickname, u.avatar_key
		FROM participants p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = ANY($1) AND p.status <> 'removed'`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by ids: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0, len(ids))
	for rows.Next() {
		var p models.Participant
		var u models.User
		if err := rows.Scan(
			&p.ID, &p.TournamentID, &p.UserID, &p.Discipline, &p.Status, &p.Score,
			&p.CasesResolved, &p.Position, &p.Meta, &p.JoinedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Nickname, &u.AvatarKey,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		p.User = &u
		participants = append(participants, &p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) SnapshotPositions(ctx context.Context, tournamentID int, discipline models.Discipline) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin positions snapshot: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE participants p
		SET position = ranked.position
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY score DESC, joined_at ASC) AS position
			FROM participants
			WHERE tournament_id = $1 AND discipline = $2 AND status <> 'removed'
		) ranked
		WHERE p.id = ranked.id`

	if _, err := tx.ExecContext(ctx, query, tournamentID, discipline); err != nil {
		return fmt.Errorf("failed to snapshot positions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit positions snapshot: %w", err)
	}
	return nil
}
