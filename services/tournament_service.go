package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/repositories"
	"github.com/Bekzhan05/quiz-platform/schedule"
	"github.com/Bekzhan05/quiz-platform/storage"
	"github.com/Bekzhan05/quiz-platform/utils"
)

type CreateTournamentInput struct {
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	MaxParticipants int       `json:"max_participants"`
	Hidden          bool      `json:"hidden"`
}

type UpdateTournamentInput struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	MaxParticipants *int       `json:"max_participants"`
	Hidden          *bool      `json:"hidden"`
}

// TournamentView — турнир вместе с производным статусом и окном.
// EffectiveStatus выводится из дат на момент запроса и не совпадает
// с сохранённым status, пока тикер не догнал расписание.
type TournamentView struct {
	*models.Tournament
	EffectiveStatus models.TournamentStatus `json:"effective_status"`
	Window          schedule.Window         `json:"window"`
}

type TournamentService struct {
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
	now            func() time.Time
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *TournamentService) Create(ctx context.Context, creatorID int, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if err := validateDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if input.MaxParticipants < 0 {
		return nil, ErrTournamentInvalidCapacity
	}

	tournament := &models.Tournament{
		Title:           input.Title,
		Slug:            utils.Slugify(input.Title),
		Description:     input.Description,
		CreatorID:       creatorID,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Status:          models.StatusDraft,
		MaxParticipants: input.MaxParticipants,
		Hidden:          input.Hidden,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentSlugConflict):
			return nil, ErrTournamentSlugTaken
		case errors.Is(err, repositories.ErrTournamentInvalidCreator):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return tournament, nil
}

func (s *TournamentService) GetByID(ctx context.Context, id int) (*TournamentView, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return s.toView(tournament), nil
}

func (s *TournamentService) GetBySlug(ctx context.Context, slug string) (*TournamentView, error) {
	tournament, err := s.tournamentRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return s.toView(tournament), nil
}

func (s *TournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]TournamentView, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	views := make([]TournamentView, 0, len(tournaments))
	for i := range tournaments {
		views = append(views, *s.toView(&tournaments[i]))
	}
	return views, nil
}

func (s *TournamentService) Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		tournament.Title = *input.Title
		tournament.Slug = utils.Slugify(*input.Title)
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.StartDate != nil {
		tournament.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		tournament.EndDate = *input.EndDate
	}
	if err := validateDates(tournament.StartDate, tournament.EndDate); err != nil {
		return nil, err
	}
	if input.MaxParticipants != nil {
		if *input.MaxParticipants < 0 {
			return nil, ErrTournamentInvalidCapacity
		}
		tournament.MaxParticipants = *input.MaxParticipants
	}
	if input.Hidden != nil {
		tournament.Hidden = *input.Hidden
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentSlugConflict):
			return nil, ErrTournamentSlugTaken
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return tournament, nil
}

// ChangeStatus выполняет явный административный переход статуса.
func (s *TournamentService) ChangeStatus(ctx context.Context, id int, next models.TournamentStatus) (*models.Tournament, error) {
	switch next {
	case models.StatusDraft, models.StatusScheduled, models.StatusActive, models.StatusFinished, models.StatusCancelled:
	default:
		return nil, ErrTournamentInvalidStatus
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	if !schedule.ValidTransition(tournament.Status, next) {
		return nil, ErrTournamentInvalidStatusTransition
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, next); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	tournament.Status = next
	return tournament, nil
}

func (s *TournamentService) Delete(ctx context.Context, id int) error {
	err := s.tournamentRepo.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentInUse):
		return ErrTournamentInUse
	default:
		return fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
}

// Window возвращает прогресс окна турнира на текущий момент.
// Клиент дёргает этот эндпоинт по тику, сама функция состояния не имеет.
func (s *TournamentService) Window(ctx context.Context, id int) (schedule.Window, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return schedule.Window{}, ErrTournamentNotFound
		}
		return schedule.Window{}, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return schedule.Compute(tournament.StartDate, tournament.EndDate, s.now()), nil
}

// UploadLogo загружает логотип турнира в объектное хранилище.
func (s *TournamentService) UploadLogo(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	key := fmt.Sprintf("tournaments/%d/logo", id)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	tournament.LogoKey = &key
	return s.toView(tournament).Tournament, nil
}

// AutoUpdateStatusesByDates подтягивает сохранённые статусы к окну дат.
// Вызывается тикером из main; вручную выставленные draft и терминальные
// статусы не трогает.
func (s *TournamentService) AutoUpdateStatusesByDates(ctx context.Context) error {
	now := s.now()
	tournaments, err := s.tournamentRepo.GetForAutoStatusUpdate(ctx, now)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	for _, t := range tournaments {
		next := schedule.EffectiveStatus(t, now)
		if next == t.Status || !schedule.ValidTransition(t.Status, next) {
			continue
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); err != nil {
			s.logger.ErrorContext(ctx, "failed to auto-update tournament status",
				slog.Int("tournament_id", t.ID),
				slog.String("from", string(t.Status)),
				slog.String("to", string(next)),
				slog.Any("error", err))
			continue
		}
		s.logger.InfoContext(ctx, "tournament status auto-updated",
			slog.Int("tournament_id", t.ID),
			slog.String("from", string(t.Status)),
			slog.String("to", string(next)))
	}
	return nil
}

func (s *TournamentService) toView(t *models.Tournament) *TournamentView {
	if s.uploader != nil && t.LogoKey != nil && *t.LogoKey != "" {
		if url := s.uploader.GetPublicURL(*t.LogoKey); url != "" {
			t.LogoURL = &url
		}
	}
	now := s.now()
	return &TournamentView{
		Tournament:      t,
		EffectiveStatus: schedule.EffectiveStatus(t, now),
		Window:          schedule.Compute(t.StartDate, t.EndDate, now),
	}
}

func validateDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return ErrTournamentInvalidDateRange
	}
	return nil
}
