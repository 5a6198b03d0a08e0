package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Bekzhan05/quiz-platform/cache"
	"github.com/Bekzhan05/quiz-platform/live"
	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/repositories"
	"github.com/Bekzhan05/quiz-platform/storage"
	"golang.org/x/sync/errgroup"
)

// LeaderboardMirror — redis-зеркало турнирных таблиц (cache.LeaderboardCache).
// Зеркало best-effort: любая его ошибка означает откат на postgres.
type LeaderboardMirror interface {
	SetScore(ctx context.Context, tournamentID int, discipline models.Discipline, participantID int, score float64) error
	TopN(ctx context.Context, tournamentID int, discipline models.Discipline, n int64) ([]cache.Entry, error)
	Rank(ctx context.Context, tournamentID int, discipline models.Discipline, participantID int) (int64, error)
	Invalidate(ctx context.Context, tournamentID int) error
}

// RankingService отдаёт турнирные таблицы: счёт по убыванию, при
// равенстве выше тот, кто раньше зарегистрировался. Обычное чтение
// ничего не персистит; фиксация позиций — отдельная явная операция.
type RankingService struct {
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	leaderboard     LeaderboardMirror
	hub             *live.Hub
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewRankingService(
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	leaderboard LeaderboardMirror,
	hub *live.Hub,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *RankingService {
	return &RankingService{
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
		leaderboard:     leaderboard,
		hub:             hub,
		uploader:        uploader,
		logger:          logger,
	}
}

// Leaderboard возвращает участников турнира, отсортированных по счёту.
// discipline == nil смешивает все дисциплины в одну таблицу.
func (s *RankingService) Leaderboard(ctx context.Context, tournamentID int, discipline *models.Discipline, limit, offset int) ([]*models.Participant, error) {
	if discipline != nil && !discipline.Valid() {
		return nil, ErrInvalidDiscipline
	}

	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	if participants := s.fromMirror(ctx, tournamentID, discipline, limit, offset); participants != nil {
		s.populateAvatars(participants)
		return participants, nil
	}

	participants, err := s.participantRepo.ListForLeaderboard(ctx, repositories.LeaderboardFilter{
		TournamentID: tournamentID,
		Discipline:   discipline,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	s.populateAvatars(participants)
	return participants, nil
}

// fromMirror пытается отдать первую страницу таблицы из redis-зеркала.
// Зеркало хранит только пары (участник, счёт), поэтому строки добираются
// из postgres по id, а порядок пересчитывается по свежим данным. nil
// означает «кеш не годится, читай postgres»: зеркало выключено, страница
// не первая, дисциплина не задана или кеш прогрет не полностью.
func (s *RankingService) fromMirror(ctx context.Context, tournamentID int, discipline *models.Discipline, limit, offset int) []*models.Participant {
	if s.leaderboard == nil || discipline == nil || offset != 0 || limit <= 0 {
		return nil
	}

	entries, err := s.leaderboard.TopN(ctx, tournamentID, *discipline, int64(limit))
	if err != nil {
		s.logger.WarnContext(ctx, "leaderboard cache read failed, falling back to postgres",
			slog.Int("tournament_id", tournamentID),
			slog.Any("error", err))
		return nil
	}
	if len(entries) < limit {
		return nil
	}

	ids := make([]int, len(entries))
	for i, e := range entries {
		ids[i] = e.ParticipantID
	}
	participants, err := s.participantRepo.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "leaderboard cache hydration failed, falling back to postgres",
			slog.Int("tournament_id", tournamentID),
			slog.Any("error", err))
		return nil
	}
	// Участник из кеша мог быть удалён из турнира после записи в зеркало.
	if len(participants) < len(entries) {
		return nil
	}

	sort.SliceStable(participants, func(i, j int) bool {
		if participants[i].Score != participants[j].Score {
			return participants[i].Score > participants[j].Score
		}
		return participants[i].JoinedAt.Before(participants[j].JoinedAt)
	})
	return participants
}

// DisciplineBoard — срез таблицы одной дисциплины для сводки турнира.
type DisciplineBoard struct {
	Discipline models.Discipline     `json:"discipline"`
	Top        []*models.Participant `json:"top"`
}

// Summary собирает топ-N по каждой дисциплине параллельно.
func (s *RankingService) Summary(ctx context.Context, tournamentID int, topN int) ([]DisciplineBoard, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	if topN <= 0 {
		topN = 10
	}

	boards := make([]DisciplineBoard, len(models.AllDisciplines))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range models.AllDisciplines {
		i, d := i, d
		g.Go(func() error {
			participants, err := s.participantRepo.ListForLeaderboard(gctx, repositories.LeaderboardFilter{
				TournamentID: tournamentID,
				Discipline:   &d,
				Limit:        topN,
			})
			if err != nil {
				return err
			}
			s.populateAvatars(participants)
			boards[i] = DisciplineBoard{Discipline: d, Top: participants}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}
	return boards, nil
}

// SnapshotPositions явно фиксирует текущий порядок в колонке position
// по всем дисциплинам турнира и оповещает подписчиков.
func (s *RankingService) SnapshotPositions(ctx context.Context, tournamentID int) error {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	for _, d := range models.AllDisciplines {
		if err := s.participantRepo.SnapshotPositions(ctx, tournamentID, d); err != nil {
			return fmt.Errorf("%w: %v", ErrTransientStore, err)
		}
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.Invalidate(ctx, tournamentID); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate leaderboard cache",
				slog.Int("tournament_id", tournamentID),
				slog.Any("error", err))
		}
	}
	if s.hub != nil {
		s.hub.BroadcastToRoom(live.RoomID(tournamentID), live.Event{
			Type:    live.EventPositionsSnapshot,
			Payload: map[string]interface{}{"tournament_id": tournamentID},
		})
	}
	return nil
}

func (s *RankingService) populateAvatars(participants []*models.Participant) {
	if s.uploader == nil {
		return
	}
	for _, p := range participants {
		if p.User != nil && p.User.AvatarKey != nil && *p.User.AvatarKey != "" {
			url := s.uploader.GetPublicURL(*p.User.AvatarKey)
			if url != "" {
				p.User.AvatarURL = &url
			}
		}
	}
}
