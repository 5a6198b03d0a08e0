package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusDraft     TournamentStatus = "draft"
	StatusScheduled TournamentStatus = "scheduled"
	StatusActive    TournamentStatus = "active"
	StatusFinished  TournamentStatus = "finished"
	StatusCancelled TournamentStatus = "cancelled"
)

// Tournament представляет турнир платформы.
type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Title           string           `json:"title" db:"title"`
	Slug            string           `json:"slug" db:"slug"`
	Description     *string          `json:"description,omitempty" db:"description"`
	CreatorID       int              `json:"creator_id" db:"creator_id"`
	StartDate       time.Time        `json:"start_date" db:"start_date"`
	EndDate         time.Time        `json:"end_date" db:"end_date"`
	Status          TournamentStatus `json:"status" db:"status"`
	MaxParticipants int              `json:"max_participants" db:"max_participants"`
	Hidden          bool             `json:"hidden" db:"hidden"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	LogoKey         *string          `json:"-" db:"logo_key"`
	LogoURL         *string          `json:"logo_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Creator      *User         `json:"creator,omitempty" db:"-"`
	Participants []Participant `json:"participants,omitempty" db:"-"`
}
