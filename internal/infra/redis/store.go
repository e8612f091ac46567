package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"weekly-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Store is a Redis-backed implementation of app.Store. Every document is a
// JSON string value; secondary indexes are sorted sets and lists of IDs.
//
//	quiz:{quizID}                 quiz document
//	quizzes:{subject}             ZSET quizID scored by scheduledStart (unix)
//	attempt:{attemptID}           attempt document
//	attempts:{quizID}             LIST of attemptIDs
//	attempts:{quizID}:{userID}    LIST of attemptIDs
//	leaderboard:{quizID}          leaderboard document
//	prizepool:{quizID}            prize pool document
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, quizKey(quiz.ID), data, 0)
		pipe.ZAdd(ctx, subjectKey(quiz.Subject), redis.Z{
			Score:  float64(quiz.ScheduledStart.Unix()),
			Member: quiz.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("store quiz: %w", err)
	}
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := s.getJSON(ctx, quizKey(quizID), &quiz, domain.ErrQuizNotFound); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (s *Store) CurrentQuiz(ctx context.Context, subject domain.Subject) (domain.Quiz, error) {
	ids, err := s.client.ZRevRange(ctx, subjectKey(subject), 0, -1).Result()
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("list quizzes: %w", err)
	}
	quizzes, err := mgetJSON[domain.Quiz](ctx, s.client, prefixed("quiz:", ids))
	if err != nil {
		return domain.Quiz{}, err
	}
	for _, quiz := range quizzes {
		if quiz.Status == domain.QuizScheduled || quiz.Status == domain.QuizActive {
			return quiz, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *Store) SaveAttempt(ctx context.Context, attempt domain.Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, attemptKey(attempt.ID), data, 0)
		pipe.RPush(ctx, quizAttemptsKey(attempt.QuizID), attempt.ID)
		pipe.RPush(ctx, userAttemptsKey(attempt.QuizID, attempt.UserID), attempt.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store attempt: %w", err)
	}
	return nil
}

func (s *Store) FindAttempt(ctx context.Context, userID, quizID string) (domain.Attempt, error) {
	ids, err := s.client.LRange(ctx, userAttemptsKey(quizID, userID), 0, -1).Result()
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("list attempts: %w", err)
	}
	attempts, err := mgetJSON[domain.Attempt](ctx, s.client, prefixed("attempt:", ids))
	if err != nil {
		return domain.Attempt{}, err
	}
	for _, attempt := range attempts {
		if attempt.IsComplete {
			return attempt, nil
		}
	}
	return domain.Attempt{}, domain.ErrAttemptNotFound
}

func (s *Store) TopAttempts(ctx context.Context, quizID string, n int) ([]domain.Attempt, error) {
	ids, err := s.client.LRange(ctx, quizAttemptsKey(quizID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	attempts, err := mgetJSON[domain.Attempt](ctx, s.client, prefixed("attempt:", ids))
	if err != nil {
		return nil, err
	}
	completed := attempts[:0]
	for _, attempt := range attempts {
		if attempt.IsComplete {
			completed = append(completed, attempt)
		}
	}
	domain.SortAttempts(completed)
	if len(completed) > n {
		completed = completed[:n]
	}
	return completed, nil
}

func (s *Store) GetLeaderboard(ctx context.Context, quizID string) (domain.Leaderboard, error) {
	var lb domain.Leaderboard
	if err := s.getJSON(ctx, leaderboardKey(quizID), &lb, domain.ErrLeaderboardNotFound); err != nil {
		return domain.Leaderboard{}, err
	}
	return lb, nil
}

// PutLeaderboard overwrites the document; there is no version check.
func (s *Store) PutLeaderboard(ctx context.Context, lb domain.Leaderboard) error {
	return s.setJSON(ctx, leaderboardKey(lb.QuizID), lb)
}

func (s *Store) GetPrizePool(ctx context.Context, quizID string) (domain.PrizePool, error) {
	var pool domain.PrizePool
	if err := s.getJSON(ctx, prizePoolKey(quizID), &pool, domain.ErrPrizePoolNotFound); err != nil {
		return domain.PrizePool{}, err
	}
	return pool, nil
}

func (s *Store) PutPrizePool(ctx context.Context, pool domain.PrizePool) error {
	return s.setJSON(ctx, prizePoolKey(pool.QuizID), pool)
}

func (s *Store) getJSON(ctx context.Context, key string, out any, notFound error) error {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *Store) setJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// mgetJSON loads documents in key order, skipping keys that no longer exist.
func mgetJSON[T any](ctx context.Context, client *redis.Client, keys []string) ([]T, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget: %w", err)
	}
	out := make([]T, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var doc T
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", keys[i], err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func prefixed(prefix string, ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = prefix + id
	}
	return keys
}

func quizKey(quizID string) string { return "quiz:" + quizID }
func subjectKey(subject domain.Subject) string { return "quizzes:" + string(subject) }
func attemptKey(attemptID string) string { return "attempt:" + attemptID }
func quizAttemptsKey(quizID string) string { return "attempts:" + quizID }
func userAttemptsKey(quizID, userID string) string { return "attempts:" + quizID + ":" + userID }
func leaderboardKey(quizID string) string { return "leaderboard:" + quizID }
func prizePoolKey(quizID string) string { return "prizepool:" + quizID }
