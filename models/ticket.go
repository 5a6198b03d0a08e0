package models

import "time"

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketClosed     TicketStatus = "closed"
)

// Ticket — обращение пользователя в поддержку. Code — публичный номер обращения.
type Ticket struct {
	ID        int          `json:"id" db:"id"`
	Code      string       `json:"code" db:"code"`
	AuthorID  int          `json:"author_id" db:"author_id"`
	Subject   string       `json:"subject" db:"subject"`
	Body      string       `json:"body" db:"body"`
	Status    TicketStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}
