package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/repositories"
	"github.com/Bekzhan05/quiz-platform/schedule"
)

// RegisterInput — типизированные параметры регистрации.
type RegisterInput struct {
	TournamentID int               `json:"tournament_id"`
	UserID       int               `json:"user_id"`
	Discipline   models.Discipline `json:"discipline"`
}

// RegistrationService регистрирует пользователя в дисциплине турнира.
// Регистрация идемпотентна: повторный вызов с теми же аргументами
// возвращает уже существующую запись участия без ошибки.
type RegistrationService struct {
	participantRepo  repositories.ParticipantRepository
	tournamentRepo   repositories.TournamentRepository
	notificationRepo repositories.NotificationRepository

	// Политика авто-подтверждения. При false новые участники создаются
	// в статусе pending и ждут модерации.
	autoConfirm bool
	now         func() time.Time
}

func NewRegistrationService(
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	notificationRepo repositories.NotificationRepository,
	autoConfirm bool,
) *RegistrationService {
	return &RegistrationService{
		participantRepo:  participantRepo,
		tournamentRepo:   tournamentRepo,
		notificationRepo: notificationRepo,
		autoConfirm:      autoConfirm,
		now:              time.Now,
	}
}

// Register создаёт запись участия либо возвращает существующую.
// Все проверки выполняются до любой мутации; гонка двух конкурентных
// регистраций разрешается уникальным констрейнтом в БД.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*models.Participant, error) {
	if !input.Discipline.Valid() {
		return nil, ErrInvalidDiscipline
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	switch schedule.EffectiveStatus(tournament, s.now()) {
	case models.StatusScheduled, models.StatusActive:
		// регистрация открыта
	default:
		return nil, ErrTournamentClosed
	}

	if tournament.MaxParticipants > 0 {
		count, err := s.participantRepo.CountByTournament(ctx, tournament.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
		}
		if count >= tournament.MaxParticipants {
			return nil, ErrTournamentFull
		}
	}

	status := models.ParticipantConfirmed
	if !s.autoConfirm {
		status = models.ParticipantPending
	}

	participant := &models.Participant{
		TournamentID: input.TournamentID,
		UserID:       input.UserID,
		Discipline:   input.Discipline,
		Status:       status,
	}

	created, err := s.participantRepo.CreateOrGet(ctx, participant)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipantUserInvalid):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrParticipantTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	if created && s.notificationRepo != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"tournament_id": tournament.ID,
			"title":         tournament.Title,
			"discipline":    input.Discipline,
		})
		n := &models.Notification{
			UserID:  input.UserID,
			Kind:    models.NotificationRegistration,
			Payload: payload,
		}
		// Уведомление вторично: его ошибка не откатывает регистрацию.
		_ = s.notificationRepo.Create(ctx, n)
	}

	return participant, nil
}
