package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/repositories"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.Nickname != nil && u.Nickname != nil && *existing.Nickname == *u.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	u.ID = len(f.users) + 1
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdateAvatarKey(_ context.Context, id int, avatarKey *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.AvatarKey = avatarKey
	return nil
}

func TestAuthRegisterAndLogin(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo)

	input := SignUpInput{
		FirstName: "Aida",
		LastName:  "S",
		Email:     "aida@example.com",
		Password:  "correct horse",
	}

	created, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if created.Role != models.RoleUser {
		t.Errorf("role = %s, new users get the user role", created.Role)
	}
	if created.PasswordHash == input.Password {
		t.Error("password stored in plain text")
	}

	logged, err := svc.Login(context.Background(), LoginInput{Email: input.Email, Password: input.Password})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if logged.ID != created.ID {
		t.Errorf("login returned user %d, want %d", logged.ID, created.ID)
	}

	if _, err := svc.Login(context.Background(), LoginInput{Email: input.Email, Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: error = %v, want %v", err, ErrInvalidCredentials)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "whatever"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: error = %v, want %v", err, ErrInvalidCredentials)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo)

	if _, err := svc.Register(context.Background(), SignUpInput{
		Email: "short@example.com", Password: "1234567",
	}); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short password: error = %v, want %v", err, ErrPasswordTooShort)
	}

	first := SignUpInput{Email: "dup@example.com", Password: "longenough"}
	if _, err := svc.Register(context.Background(), first); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(context.Background(), first); !errors.Is(err, ErrUserEmailConflict) {
		t.Errorf("duplicate email: error = %v, want %v", err, ErrUserEmailConflict)
	}
}
