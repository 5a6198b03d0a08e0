package models

import (
	"encoding/json"
	"time"
)

// Discipline — закрытый набор дисциплин турнира.
type Discipline string

const (
	DisciplineMath        Discipline = "math"
	DisciplineEnglish     Discipline = "english"
	DisciplineProgramming Discipline = "programming"
)

// AllDisciplines перечисляет дисциплины в порядке показа на фронте.
var AllDisciplines = []Discipline{DisciplineMath, DisciplineEnglish, DisciplineProgramming}

func (d Discipline) Valid() bool {
	switch d {
	case DisciplineMath, DisciplineEnglish, DisciplineProgramming:
		return true
	}
	return false
}

type ParticipantStatus string

const (
	ParticipantPending   ParticipantStatus = "pending"
	ParticipantConfirmed ParticipantStatus = "confirmed"
	ParticipantRemoved   ParticipantStatus = "removed"
)

// Participant — участие пользователя в одной дисциплине одного турнира.
// На тройку (tournament_id, user_id, discipline) в БД стоит UNIQUE.
type Participant struct {
	ID            int               `json:"id" db:"id"`
	TournamentID  int               `json:"tournament_id" db:"tournament_id"`
	UserID        int               `json:"user_id" db:"user_id"`
	Discipline    Discipline        `json:"discipline" db:"discipline"`
	Status        ParticipantStatus `json:"status" db:"status"`
	Score         float64           `json:"score" db:"score"`
	CasesResolved int               `json:"cases_resolved" db:"cases_resolved"`
	Position      *int              `json:"position,omitempty" db:"position"`
	Meta          json.RawMessage   `json:"meta,omitempty" db:"meta"`
	JoinedAt      time.Time         `json:"joined_at" db:"joined_at"`

	User *User `json:"user,omitempty" db:"-"`
}
