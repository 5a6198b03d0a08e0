package models

import "time"

// Question — задание турнира в рамках одной дисциплины.
// ReferenceAnswer не отдаётся наружу, он нужен оракулу для оценки.
type Question struct {
	ID              int        `json:"id" db:"id"`
	TournamentID    int        `json:"tournament_id" db:"tournament_id"`
	Discipline      Discipline `json:"discipline" db:"discipline"`
	Text            string     `json:"text" db:"text"`
	ReferenceAnswer string     `json:"-" db:"reference_answer"`
	Points          float64    `json:"points" db:"points"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}
