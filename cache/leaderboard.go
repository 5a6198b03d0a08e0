package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/redis/go-redis/v9"
)

// LeaderboardCache — зеркало турнирных таблиц в Redis ZSET.
// Источник истины всегда postgres: кеш best-effort, любая его ошибка
// логируется вызывающим кодом и не валит запрос.
type LeaderboardCache struct {
	client *redis.Client
}

func NewRedisClient(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func NewLeaderboardCache(client *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{client: client}
}

func leaderboardKey(tournamentID int, discipline models.Discipline) string {
	return fmt.Sprintf("leaderboard:tournament:%d:%s", tournamentID, discipline)
}

// SetScore выставляет абсолютный счёт участника в зеркале.
// Пишем абсолют, а не дельту: postgres уже применил инкремент атомарно,
// повторная запись того же значения безопасна.
func (c *LeaderboardCache) SetScore(ctx context.Context, tournamentID int, discipline models.Discipline, participantID int, score float64) error {
	member := redis.Z{Score: score, Member: participantID}
	return c.client.ZAdd(ctx, leaderboardKey(tournamentID, discipline), member).Err()
}

// Entry — строка зеркала: участник и его счёт на момент чтения.
type Entry struct {
	ParticipantID int
	Score         float64
}

// TopN возвращает участников с лучшим счётом по убыванию.
func (c *LeaderboardCache) TopN(ctx context.Context, tournamentID int, discipline models.Discipline, n int64) ([]Entry, error) {
	members, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey(tournamentID, discipline), 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		raw, ok := m.Member.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected leaderboard member type %T", m.Member)
		}
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed leaderboard member %q: %w", raw, err)
		}
		entries = append(entries, Entry{ParticipantID: id, Score: m.Score})
	}
	return entries, nil
}

// Rank возвращает 0-базовый ранг участника; -1 если его нет в зеркале.
func (c *LeaderboardCache) Rank(ctx context.Context, tournamentID int, discipline models.Discipline, participantID int) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, leaderboardKey(tournamentID, discipline), fmt.Sprintf("%d", participantID)).Result()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return rank, nil
}

// Invalidate сбрасывает зеркало турнира по всем дисциплинам.
func (c *LeaderboardCache) Invalidate(ctx context.Context, tournamentID int) error {
	pipe := c.client.Pipeline()
	for _, d := range models.AllDisciplines {
		pipe.Del(ctx, leaderboardKey(tournamentID, d))
	}
	_, err := pipe.Exec(ctx)
	return err
}
