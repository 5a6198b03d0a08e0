package schedule

import (
	"time"

	"github.com/Bekzhan05/quiz-platform/models"
)

// EffectiveStatus выводит фактический статус турнира из его окна дат.
// Сохранённый статус cancelled терминальный и всегда побеждает,
// остальное определяется только временем. Результат нигде не
// персистится — поле status в БД меняют только явные переходы.
func EffectiveStatus(t *models.Tournament, now time.Time) models.TournamentStatus {
	if t.Status == models.StatusCancelled {
		return models.StatusCancelled
	}
	if now.Before(t.StartDate) {
		return models.StatusScheduled
	}
	if now.After(t.EndDate) {
		return models.StatusFinished
	}
	return models.StatusActive
}

// ValidTransition проверяет допустимость явного административного
// перехода статуса: draft → scheduled → active → finished, плюс
// отмена из любого незавершённого состояния.
func ValidTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowed := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusDraft:     {models.StatusScheduled, models.StatusCancelled},
		models.StatusScheduled: {models.StatusActive, models.StatusCancelled},
		models.StatusActive:    {models.StatusFinished, models.StatusCancelled},
		models.StatusFinished:  {},
		models.StatusCancelled: {},
	}
	for _, s := range allowed[current] {
		if next == s {
			return true
		}
	}
	return false
}
