package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/repositories"
)

type NotificationService struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

func (s *NotificationService) ListByUser(ctx context.Context, userID int, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	notifications, err := s.notificationRepo.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID int) error {
	err := s.notificationRepo.MarkRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int) error {
	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return nil
}
