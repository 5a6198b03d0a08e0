package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/repositories"
	"github.com/Bekzhan05/quiz-platform/storage"
)

type UpdateProfileInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Nickname  *string `json:"nickname"`
}

type UserService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) *UserService {
	return &UserService{userRepo: userRepo, uploader: uploader}
}

func (s *UserService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	s.populateAvatarURL(user)
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id int, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Nickname != nil {
		user.Nickname = input.Nickname
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrUserNicknameConflict):
			return nil, ErrUserNicknameConflict
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	s.populateAvatarURL(user)
	return user, nil
}

// UploadAvatar загружает аватар пользователя в объектное хранилище.
func (s *UserService) UploadAvatar(ctx context.Context, id int, contentType string, reader io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	key := fmt.Sprintf("users/%d/avatar", id)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}
	if err := s.userRepo.UpdateAvatarKey(ctx, id, &key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	user.AvatarKey = &key
	s.populateAvatarURL(user)
	return user, nil
}

func (s *UserService) populateAvatarURL(user *models.User) {
	if s.uploader != nil && user.AvatarKey != nil && *user.AvatarKey != "" {
		if url := s.uploader.GetPublicURL(*user.AvatarKey); url != "" {
			user.AvatarURL = &url
		}
	}
}
