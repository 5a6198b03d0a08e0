package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Bekzhan05/quiz-platform/grading"
	"github.com/Bekzhan05/quiz-platform/live"
	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/repositories"
)

// AddScoreInput — типизированные параметры начисления очков.
type AddScoreInput struct {
	ParticipantID int     `json:"participant_id"`
	PointsDelta   float64 `json:"points_delta"`
	CasesDelta    int     `json:"cases_delta"`
	Description   string  `json:"description"`
}

// ScoringService начисляет очки участникам. Инкремент выполняется одним
// UPDATE в БД, поэтому конкурентные начисления не теряют обновлений и
// итоговый счёт равен сумме применённых дельт независимо от порядка.
type ScoringService struct {
	participantRepo repositories.ParticipantRepository
	questionRepo    repositories.QuestionRepository
	oracle          grading.Oracle
	hub             *live.Hub
	leaderboard     LeaderboardMirror
	achievements    *AchievementService
	logger          *slog.Logger
}

func NewScoringService(
	participantRepo repositories.ParticipantRepository,
	questionRepo repositories.QuestionRepository,
	oracle grading.Oracle,
	hub *live.Hub,
	leaderboard LeaderboardMirror,
	achievements *AchievementService,
	logger *slog.Logger,
) *ScoringService {
	return &ScoringService{
		participantRepo: participantRepo,
		questionRepo:    questionRepo,
		oracle:          oracle,
		hub:             hub,
		leaderboard:     leaderboard,
		achievements:    achievements,
		logger:          logger,
	}
}

// AddScore применяет дельту очков к записи участия. Отрицательные дельты
// допустимы (корректировки). CasesDelta по умолчанию 1 задаёт хендлер.
func (s *ScoringService) AddScore(ctx context.Context, input AddScoreInput) (*models.Participant, error) {
	if input.CasesDelta < 0 {
		return nil, ErrScoreCasesNegative
	}

	participant, err := s.participantRepo.FindByID(ctx, input.ParticipantID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	if participant.Status == models.ParticipantRemoved {
		return nil, ErrParticipantRemoved
	}

	updated, err := s.participantRepo.AddScore(ctx, input.ParticipantID, input.PointsDelta, input.CasesDelta)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	s.afterScoreChange(ctx, updated, input.Description)
	return updated, nil
}

// SubmitAnswerInput — ответ участника на вопрос турнира.
type SubmitAnswerInput struct {
	ParticipantID int    `json:"participant_id"`
	QuestionID    int    `json:"question_id"`
	Answer        string `json:"answer"`
}

// SubmitAnswer оценивает свободный ответ оракулом и начисляет очки.
// Оракул недоверенный: любая его ошибка деградирует к нулевой оценке,
// сам запрос при этом успешен.
func (s *ScoringService) SubmitAnswer(ctx context.Context, input SubmitAnswerInput) (*models.Participant, error) {
	if strings.TrimSpace(input.Answer) == "" {
		return nil, ErrAnswerEmpty
	}

	question, err := s.questionRepo.GetByID(ctx, input.QuestionID)
	if err != nil {
		if errors.Is(err, repositories.ErrQuestionNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	fraction := 0.0
	if s.oracle != nil {
		fraction, err = s.oracle.Score(ctx, question.Text, input.Answer)
		if err != nil {
			s.logger.WarnContext(ctx, "grading oracle failed, falling back to zero score",
				slog.Int("question_id", question.ID),
				slog.Any("error", err))
			fraction = 0
		}
	}

	return s.AddScore(ctx, AddScoreInput{
		ParticipantID: input.ParticipantID,
		PointsDelta:   fraction * question.Points,
		CasesDelta:    1,
		Description:   fmt.Sprintf("answer to question %d", question.ID),
	})
}

// afterScoreChange разносит побочные эффекты начисления: зеркало в redis,
// рассылка по websocket, проверка наград. Всё best-effort.
func (s *ScoringService) afterScoreChange(ctx context.Context, p *models.Participant, description string) {
	var rank int64 = -1
	if s.leaderboard != nil {
		if err := s.leaderboard.SetScore(ctx, p.TournamentID, p.Discipline, p.ID, p.Score); err != nil {
			s.logger.WarnContext(ctx, "failed to mirror score to redis",
				slog.Int("participant_id", p.ID),
				slog.Any("error", err))
		} else if r, err := s.leaderboard.Rank(ctx, p.TournamentID, p.Discipline, p.ID); err == nil {
			rank = r
		}
	}

	if s.hub != nil {
		payload := map[string]interface{}{
			"participant_id": p.ID,
			"discipline":     p.Discipline,
			"score":          p.Score,
			"cases_resolved": p.CasesResolved,
			"description":    description,
		}
		if rank >= 0 {
			payload["rank"] = rank + 1
		}
		s.hub.BroadcastToRoom(live.RoomID(p.TournamentID), live.Event{
			Type:    live.EventScoreUpdated,
			Payload: payload,
		})
	}

	if s.achievements != nil {
		if err := s.achievements.CheckAfterScore(ctx, p); err != nil {
			s.logger.WarnContext(ctx, "achievement check failed",
				slog.Int("participant_id", p.ID),
				slog.Any("error", err))
		}
	}
}
