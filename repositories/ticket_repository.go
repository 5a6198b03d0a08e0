package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Bekzhan05/quiz-platform/models"
)

var ErrTicketNotFound = errors.New("ticket not found")

type TicketRepository interface {
	Create(ctx context.Context, t *models.Ticket) error
	GetByID(ctx context.Context, id int) (*models.Ticket, error)
	ListByAuthor(ctx context.Context, authorID int) ([]models.Ticket, error)
	ListByStatus(ctx context.Context, status models.TicketStatus, limit, offset int) ([]models.Ticket, error)
	UpdateStatus(ctx context.Context, id int, status models.TicketStatus) error
}

type postgresTicketRepository struct {
	db *sql.DB
}

func NewPostgresTicketRepository(db *sql.DB) TicketRepository {
	return &postgresTicketRepository{db: db}
}

const ticketColumns = `id, code, author_id, subject, body, status, created_at, updated_at`

func (r *postgresTicketRepository) scanTicket(rowScanner interface {
	Scan(dest ...interface{}) error
}, t *models.Ticket) error {
	return rowScanner.Scan(
		&t.ID, &t.Code, &t.AuthorID, &t.Subject, &t.Body,
		&t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
}

func (r *postgresTicketRepository) Create(ctx context.Context, t *models.Ticket) error {
	query := `
		INSERT INTO tickets (code, author_id, subject, body, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Code, t.AuthorID, t.Subject, t.Body, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (r *postgresTicketRepository) GetByID(ctx context.Context, id int) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	t := &models.Ticket{}
	err := r.scanTicket(r.db.QueryRowContext(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return t, nil
}

func (r *postgresTicketRepository) ListByAuthor(ctx context.Context, authorID int) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE author_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, authorID)
}

func (r *postgresTicketRepository) ListByStatus(ctx context.Context, status models.TicketStatus, limit, offset int) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, status, limit, offset)
}

func (r *postgresTicketRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]models.Ticket, 0)
	for rows.Next() {
		var t models.Ticket
		if err := r.scanTicket(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan ticket row: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticket rows: %w", err)
	}
	return tickets, nil
}

func (r *postgresTicketRepository) UpdateStatus(ctx context.Context, id int, status models.TicketStatus) error {
	query := `UPDATE tickets SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}
	return checkAffectedRows(result, ErrTicketNotFound)
}
