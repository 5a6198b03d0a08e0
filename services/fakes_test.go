package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Bekzhan05/quiz-platform/cache"
	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/Bekzhan05/quiz-platform/repositories"
)

// Фейковые репозитории хранят данные в памяти и воспроизводят контракт
// постгресовых реализаций: те же сентинельные ошибки, та же сортировка.

type fakeParticipantRepo struct {
	mu           sync.Mutex
	nextID       int
	participants map[int]*models.Participant
	joinCounter  int
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[int]*models.Participant)}
}

func (f *fakeParticipantRepo) CreateOrGet(_ context.Context, p *models.Participant) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.participants {
		if existing.TournamentID == p.TournamentID &&
			existing.UserID == p.UserID &&
			existing.Discipline == p.Discipline {
			*p = *existing
			return false, nil
		}
	}
	f.nextID++
	f.joinCounter++
	p.ID = f.nextID
	p.JoinedAt = time.Unix(int64(1700000000+f.joinCounter), 0)
	cp := *p
	f.participants[p.ID] = &cp
	return true, nil
}

func (f *fakeParticipantRepo) FindByID(ctx context.Context, id int) (*models.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeParticipantRepo) AddScore(_ context.Context, id int, pointsDelta float64, casesDelta int) (*models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	p.Score += pointsDelta
	p.CasesResolved += casesDelta
	cp := *p
	return &cp, nil
}

func (f *fakeParticipantRepo) UpdateStatus(_ context.Context, id int, status models.ParticipantStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Status = status
	return nil
}

func (f *fakeParticipantRepo) CountByTournament(_ context.Context, tournamentID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, p := range f.participants {
		if p.TournamentID == tournamentID && p.Status != models.ParticipantRemoved {
			count++
		}
	}
	return count, nil
}

func (f *fakeParticipantRepo) ListForLeaderboard(_ context.Context, filter repositories.LeaderboardFilter) ([]*models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Participant
	for _, p := range f.participants {
		if p.TournamentID != filter.TournamentID || p.Status == models.ParticipantRemoved {
			continue
		}
		if filter.Discipline != nil && p.Discipline != *filter.Discipline {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeParticipantRepo) ListByIDs(_ context.Context, ids []int) ([]*models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Participant, 0, len(ids))
	for _, id := range ids {
		p, ok := f.participants[id]
		if !ok || p.Status == models.ParticipantRemoved {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeParticipantRepo) SnapshotPositions(ctx context.Context, tournamentID int, discipline models.Discipline) error {
	ordered, err := f.ListForLeaderboard(ctx, repositories.LeaderboardFilter{
		TournamentID: tournamentID,
		Discipline:   &discipline,
	})
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range ordered {
		pos := i + 1
		f.participants[p.ID].Position = &pos
	}
	return nil
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	nextID      int
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
}

func (f *fakeTournamentRepo) add(t *models.Tournament) *models.Tournament {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	cp := *t
	f.tournaments[t.ID] = &cp
	return t
}

func (f *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tournaments {
		if existing.Slug == t.Slug {
			return repositories.ErrTournamentSlugConflict
		}
	}
	f.nextID++
	t.ID = f.nextID
	t.CreatedAt = time.Now()
	cp := *t
	f.tournaments[t.ID] = &cp
	return nil
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTournamentRepo) GetBySlug(_ context.Context, slug string) (*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tournaments {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (f *fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Tournament
	for _, t := range f.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if t.Hidden && !filter.IncludeHidden {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	cp := *t
	f.tournaments[t.ID] = &cp
	return nil
}

func (f *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeTournamentRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (f *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(f.tournaments, id)
	return nil
}

func (f *fakeTournamentRepo) GetForAutoStatusUpdate(_ context.Context, now time.Time) ([]*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Tournament
	for _, t := range f.tournaments {
		if t.Status == models.StatusCancelled || t.Status == models.StatusFinished || t.Status == models.StatusDraft {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []models.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = len(f.created) + 1
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID int, unreadOnly bool, _, _ int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, _, _ int) error { return nil }
func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, _ int) error { return nil }

type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions map[int]*models.Question
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: make(map[int]*models.Question)}
}

func (f *fakeQuestionRepo) Create(_ context.Context, q *models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = len(f.questions) + 1
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

func (f *fakeQuestionRepo) GetByID(_ context.Context, id int) (*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, repositories.ErrQuestionNotFound
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestionRepo) ListByTournament(_ context.Context, tournamentID int, _ *models.Discipline) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Question
	for _, q := range f.questions {
		if q.TournamentID == tournamentID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) Update(_ context.Context, q *models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.questions[q.ID]; !ok {
		return repositories.ErrQuestionNotFound
	}
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

func (f *fakeQuestionRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.questions[id]; !ok {
		return repositories.ErrQuestionNotFound
	}
	delete(f.questions, id)
	return nil
}

// fakeLeaderboardMirror воспроизводит redis-зеркало в памяти.
type fakeLeaderboardMirror struct {
	mu          sync.Mutex
	entries     map[string][]cache.Entry
	setCalls    int
	invalidated []int
}

func newFakeLeaderboardMirror() *fakeLeaderboardMirror {
	return &fakeLeaderboardMirror{entries: make(map[string][]cache.Entry)}
}

func mirrorKey(tournamentID int, discipline models.Discipline) string {
	return fmt.Sprintf("%d:%s", tournamentID, discipline)
}

func (f *fakeLeaderboardMirror) seed(tournamentID int, discipline models.Discipline, entries ...cache.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[mirrorKey(tournamentID, discipline)] = entries
}

func (f *fakeLeaderboardMirror) SetScore(_ context.Context, tournamentID int, discipline models.Discipline, participantID int, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	key := mirrorKey(tournamentID, discipline)
	for i, e := range f.entries[key] {
		if e.ParticipantID == participantID {
			f.entries[key][i].Score = score
			return nil
		}
	}
	f.entries[key] = append(f.entries[key], cache.Entry{ParticipantID: participantID, Score: score})
	return nil
}

func (f *fakeLeaderboardMirror) topSorted(tournamentID int, discipline models.Discipline) []cache.Entry {
	entries := f.entries[mirrorKey(tournamentID, discipline)]
	sorted := make([]cache.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	return sorted
}

func (f *fakeLeaderboardMirror) TopN(_ context.Context, tournamentID int, discipline models.Discipline, n int64) ([]cache.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sorted := f.topSorted(tournamentID, discipline)
	if int64(len(sorted)) > n {
		sorted = sorted[:n]
	}
	return sorted, nil
}

func (f *fakeLeaderboardMirror) Rank(_ context.Context, tournamentID int, discipline models.Discipline, participantID int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.topSorted(tournamentID, discipline) {
		if e.ParticipantID == participantID {
			return int64(i), nil
		}
	}
	return -1, nil
}

func (f *fakeLeaderboardMirror) Invalidate(_ context.Context, tournamentID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, tournamentID)
	for _, d := range models.AllDisciplines {
		delete(f.entries, mirrorKey(tournamentID, d))
	}
	return nil
}

// fakeOracle возвращает заданную долю либо ошибку.
type fakeOracle struct {
	fraction float64
	err      error
}

func (o fakeOracle) Score(_ context.Context, _, _ string) (float64, error) {
	return o.fraction, o.err
}
