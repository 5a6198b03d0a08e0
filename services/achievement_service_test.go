package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/repositories"
)

type awardKey struct {
	userID        int
	achievementID int
}

type fakeAchievementRepo struct {
	mu      sync.Mutex
	byCode  map[string]*models.Achievement
	awarded map[awardKey]time.Time
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	repo := &fakeAchievementRepo{
		byCode:  make(map[string]*models.Achievement),
		awarded: make(map[awardKey]time.Time),
	}
	for i, code := range []string{"first_case", "ten_cases", "hundred_cases"} {
		repo.byCode[code] = &models.Achievement{ID: i + 1, Code: code, Title: code}
	}
	return repo
}

func (f *fakeAchievementRepo) List(_ context.Context) ([]models.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Achievement, 0, len(f.byCode))
	for _, a := range f.byCode {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAchievementRepo) GetByCode(_ context.Context, code string) (*models.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byCode[code]
	if !ok {
		return nil, repositories.ErrAchievementNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAchievementRepo) Award(_ context.Context, userID, achievementID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := awardKey{userID, achievementID}
	if _, ok := f.awarded[key]; ok {
		return false, nil
	}
	f.awarded[key] = time.Now()
	return true, nil
}

func (f *fakeAchievementRepo) ListByUser(_ context.Context, userID int) ([]models.UserAchievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UserAchievement
	for key, at := range f.awarded {
		if key.userID == userID {
			out = append(out, models.UserAchievement{
				UserID:        key.userID,
				AchievementID: key.achievementID,
				AwardedAt:     at,
			})
		}
	}
	return out, nil
}

func TestCheckAfterScoreAwardsMilestones(t *testing.T) {
	achievementRepo := newFakeAchievementRepo()
	notifications := &fakeNotificationRepo{}
	svc := NewAchievementService(achievementRepo, notifications)

	p := &models.Participant{UserID: 7, CasesResolved: 10}
	if err := svc.CheckAfterScore(context.Background(), p); err != nil {
		t.Fatalf("CheckAfterScore() error = %v", err)
	}

	awards, _ := achievementRepo.ListByUser(context.Background(), 7)
	if len(awards) != 2 {
		t.Fatalf("awards = %d, want first_case and ten_cases", len(awards))
	}
	if len(notifications.created) != 2 {
		t.Errorf("notifications = %d, want 2", len(notifications.created))
	}

	// Повторная проверка не дублирует ни награды, ни уведомления.
	if err := svc.CheckAfterScore(context.Background(), p); err != nil {
		t.Fatalf("repeat CheckAfterScore() error = %v", err)
	}
	awards, _ = achievementRepo.ListByUser(context.Background(), 7)
	if len(awards) != 2 {
		t.Errorf("awards after repeat = %d, want 2", len(awards))
	}
	if len(notifications.created) != 2 {
		t.Errorf("notifications after repeat = %d, want 2", len(notifications.created))
	}
}

func TestCheckAfterScoreBelowThreshold(t *testing.T) {
	achievementRepo := newFakeAchievementRepo()
	svc := NewAchievementService(achievementRepo, nil)

	p := &models.Participant{UserID: 7, CasesResolved: 0}
	if err := svc.CheckAfterScore(context.Background(), p); err != nil {
		t.Fatalf("CheckAfterScore() error = %v", err)
	}
	if awards, _ := achievementRepo.ListByUser(context.Background(), 7); len(awards) != 0 {
		t.Errorf("awards = %d, want none below the first milestone", len(awards))
	}
}
