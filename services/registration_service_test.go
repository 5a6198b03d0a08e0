package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Bekzhan05/quiz-platform/models"
)

func activeTournament(repo *fakeTournamentRepo, now time.Time) *models.Tournament {
	return repo.add(&models.Tournament{
		Title:     "Summer Cup",
		Slug:      "summer-cup",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
		Status:    models.StatusActive,
	})
}

func TestRegisterIsIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	participantRepo := newFakeParticipantRepo()
	tournamentRepo := newFakeTournamentRepo()
	notifications := &fakeNotificationRepo{}
	tournament := activeTournament(tournamentRepo, now)

	svc := NewRegistrationService(participantRepo, tournamentRepo, notifications, true)
	svc.now = func() time.Time { return now }

	input := RegisterInput{TournamentID: tournament.ID, UserID: 7, Discipline: models.DisciplineMath}

	first, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if first.Status != models.ParticipantConfirmed {
		t.Errorf("status = %s, want confirmed", first.Status)
	}

	second, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("second Register() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat registration created a new participant: %d != %d", second.ID, first.ID)
	}
	if len(participantRepo.participants) != 1 {
		t.Errorf("participant count = %d, want 1", len(participantRepo.participants))
	}
	// Уведомление уходит только при фактическом создании записи.
	if len(notifications.created) != 1 {
		t.Errorf("notification count = %d, want 1", len(notifications.created))
	}
}

func TestRegisterSeparateDisciplines(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	participantRepo := newFakeParticipantRepo()
	tournamentRepo := newFakeTournamentRepo()
	tournament := activeTournament(tournamentRepo, now)

	svc := NewRegistrationService(participantRepo, tournamentRepo, nil, true)
	svc.now = func() time.Time { return now }

	math, err := svc.Register(context.Background(), RegisterInput{
		TournamentID: tournament.ID, UserID: 7, Discipline: models.DisciplineMath,
	})
	if err != nil {
		t.Fatalf("Register(math) error = %v", err)
	}
	english, err := svc.Register(context.Background(), RegisterInput{
		TournamentID: tournament.ID, UserID: 7, Discipline: models.DisciplineEnglish,
	})
	if err != nil {
		t.Fatalf("Register(english) error = %v", err)
	}
	if math.ID == english.ID {
		t.Error("registrations in different disciplines must be separate records")
	}
}

func TestRegisterValidation(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		setup   func(*fakeTournamentRepo) int
		input   RegisterInput
		wantErr error
	}{
		{
			name:    "unknown discipline",
			setup:   func(r *fakeTournamentRepo) int { return activeTournament(r, now).ID },
			input:   RegisterInput{UserID: 1, Discipline: "chess"},
			wantErr: ErrInvalidDiscipline,
		},
		{
			name:    "tournament missing",
			setup:   func(r *fakeTournamentRepo) int { return 999 },
			input:   RegisterInput{UserID: 1, Discipline: models.DisciplineMath},
			wantErr: ErrTournamentNotFound,
		},
		{
			name: "finished tournament",
			setup: func(r *fakeTournamentRepo) int {
				return r.add(&models.Tournament{
					Slug:      "old",
					StartDate: now.Add(-48 * time.Hour),
					EndDate:   now.Add(-24 * time.Hour),
					Status:    models.StatusActive,
				}).ID
			},
			input:   RegisterInput{UserID: 1, Discipline: models.DisciplineMath},
			wantErr: ErrTournamentClosed,
		},
		{
			name: "cancelled tournament",
			setup: func(r *fakeTournamentRepo) int {
				return r.add(&models.Tournament{
					Slug:      "axed",
					StartDate: now.Add(-time.Hour),
					EndDate:   now.Add(time.Hour),
					Status:    models.StatusCancelled,
				}).ID
			},
			input:   RegisterInput{UserID: 1, Discipline: models.DisciplineMath},
			wantErr: ErrTournamentClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tournamentRepo := newFakeTournamentRepo()
			id := tt.setup(tournamentRepo)

			svc := NewRegistrationService(newFakeParticipantRepo(), tournamentRepo, nil, true)
			svc.now = func() time.Time { return now }

			tt.input.TournamentID = id
			if _, err := svc.Register(context.Background(), tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterCapacity(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	participantRepo := newFakeParticipantRepo()
	tournamentRepo := newFakeTournamentRepo()
	tournament := tournamentRepo.add(&models.Tournament{
		Slug:            "tiny",
		StartDate:       now.Add(-time.Hour),
		EndDate:         now.Add(time.Hour),
		Status:          models.StatusActive,
		MaxParticipants: 2,
	})

	svc := NewRegistrationService(participantRepo, tournamentRepo, nil, true)
	svc.now = func() time.Time { return now }

	for userID := 1; userID <= 2; userID++ {
		if _, err := svc.Register(context.Background(), RegisterInput{
			TournamentID: tournament.ID, UserID: userID, Discipline: models.DisciplineMath,
		}); err != nil {
			t.Fatalf("Register(user %d) error = %v", userID, err)
		}
	}

	_, err := svc.Register(context.Background(), RegisterInput{
		TournamentID: tournament.ID, UserID: 3, Discipline: models.DisciplineMath,
	})
	if !errors.Is(err, ErrTournamentFull) {
		t.Errorf("Register() error = %v, want %v", err, ErrTournamentFull)
	}
}

func TestRegisterManualConfirmationPolicy(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tournamentRepo := newFakeTournamentRepo()
	tournament := activeTournament(tournamentRepo, now)

	svc := NewRegistrationService(newFakeParticipantRepo(), tournamentRepo, nil, false)
	svc.now = func() time.Time { return now }

	p, err := svc.Register(context.Background(), RegisterInput{
		TournamentID: tournament.ID, UserID: 1, Discipline: models.DisciplineProgramming,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if p.Status != models.ParticipantPending {
		t.Errorf("status = %s, want pending when auto-confirm is off", p.Status)
	}
}
