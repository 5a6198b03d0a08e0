package models

import "time"

// Achievement — справочник наград. Выдача хранится в UserAchievement,
// повторная выдача исключается UNIQUE(user_id, achievement_id).
type Achievement struct {
	ID          int    `json:"id" db:"id"`
	Code        string `json:"code" db:"code"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
}

type UserAchievement struct {
	UserID        int       `json:"user_id" db:"user_id"`
	AchievementID int       `json:"achievement_id" db:"achievement_id"`
	AwardedAt     time.Time `json:"awarded_at" db:"awarded_at"`

	Achievement *Achievement `json:"achievement,omitempty" db:"-"`
}
