package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/repositories"
)

// Пороговые награды по числу решённых задач в одном турнире.
var caseMilestones = []struct {
	Code  string
	Cases int
}{
	{"first_case", 1},
	{"ten_cases", 10},
	{"hundred_cases", 100},
}

type AchievementService struct {
	achievementRepo  repositories.AchievementRepository
	notificationRepo repositories.NotificationRepository
}

func NewAchievementService(
	achievementRepo repositories.AchievementRepository,
	notificationRepo repositories.NotificationRepository,
) *AchievementService {
	return &AchievementService{
		achievementRepo:  achievementRepo,
		notificationRepo: notificationRepo,
	}
}

func (s *AchievementService) List(ctx context.Context) ([]models.Achievement, error) {
	achievements, err := s.achievementRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return achievements, nil
}

func (s *AchievementService) ListByUser(ctx context.Context, userID int) ([]models.UserAchievement, error) {
	achievements, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return achievements, nil
}

// CheckAfterScore выдаёт пороговые награды после изменения счёта.
// Повторная выдача гасится констрейнтом, так что проверка идемпотентна.
func (s *AchievementService) CheckAfterScore(ctx context.Context, p *models.Participant) error {
	for _, m := range caseMilestones {
		if p.CasesResolved < m.Cases {
			continue
		}
		achievement, err := s.achievementRepo.GetByCode(ctx, m.Code)
		if err != nil {
			return fmt.Errorf("failed to load achievement %s: %w", m.Code, err)
		}
		awarded, err := s.achievementRepo.Award(ctx, p.UserID, achievement.ID)
		if err != nil {
			return fmt.Errorf("failed to award achievement %s: %w", m.Code, err)
		}
		if awarded && s.notificationRepo != nil {
			payload, _ := json.Marshal(map[string]interface{}{
				"achievement_code":  achievement.Code,
				"achievement_title": achievement.Title,
			})
			_ = s.notificationRepo.Create(ctx, &models.Notification{
				UserID:  p.UserID,
				Kind:    models.NotificationAchievement,
				Payload: payload,
			})
		}
	}
	return nil
}
