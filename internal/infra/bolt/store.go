package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"weekly-quiz-service/internal/domain"

	"go.etcd.io/bbolt"
)

var (
	quizzesBucket      = []byte("Quizzes")
	attemptsBucket     = []byte("Attempts")
	leaderboardsBucket = []byte("Leaderboards")
	prizePoolsBucket   = []byte("PrizePools")
)

var buckets = [][]byte{quizzesBucket, attemptsBucket, leaderboardsBucket, prizePoolsBucket}

var errKeyNotFound = errors.New("key not found")

// Store is a single-file embedded implementation of app.Store.
// Attempts are keyed "quizID:userID:seq" so a prefix scan yields one user's
// attempts in insertion order.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the database file and its buckets.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	return save(s, quizzesBucket, quiz.ID, quiz)
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := get[domain.Quiz](s, quizzesBucket, quizID)
	if errors.Is(err, errKeyNotFound) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, err
}

func (s *Store) CurrentQuiz(_ context.Context, subject domain.Subject) (domain.Quiz, error) {
	quizzes, err := listByPrefix[domain.Quiz](s, quizzesBucket, "")
	if err != nil {
		return domain.Quiz{}, err
	}
	var (
		best  domain.Quiz
		found bool
	)
	for _, quiz := range quizzes {
		if quiz.Subject != subject {
			continue
		}
		if quiz.Status != domain.QuizScheduled && quiz.Status != domain.QuizActive {
			continue
		}
		if !found || quiz.ScheduledStart.After(best.ScheduledStart.Time) {
			best, found = quiz, true
		}
	}
	if !found {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return best, nil
}

func (s *Store) SaveAttempt(_ context.Context, attempt domain.Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(attemptsBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%s%020d", attemptPrefix(attempt.QuizID, attempt.UserID), seq)
		return b.Put([]byte(key), data)
	})
}

func (s *Store) FindAttempt(_ context.Context, userID, quizID string) (domain.Attempt, error) {
	attempts, err := listByPrefix[domain.Attempt](s, attemptsBucket, attemptPrefix(quizID, userID))
	if err != nil {
		return domain.Attempt{}, err
	}
	// "team" is a key prefix of "team:alice", so match the owner exactly.
	for _, attempt := range attempts {
		if attempt.IsComplete && attempt.UserID == userID && attempt.QuizID == quizID {
			return attempt, nil
		}
	}
	return domain.Attempt{}, domain.ErrAttemptNotFound
}

func (s *Store) TopAttempts(_ context.Context, quizID string, n int) ([]domain.Attempt, error) {
	attempts, err := listByPrefix[domain.Attempt](s, attemptsBucket, quizID+":")
	if err != nil {
		return nil, err
	}
	completed := attempts[:0]
	for _, attempt := range attempts {
		if attempt.IsComplete && attempt.QuizID == quizID {
			completed = append(completed, attempt)
		}
	}
	domain.SortAttempts(completed)
	if len(completed) > n {
		completed = completed[:n]
	}
	return completed, nil
}

func (s *Store) GetLeaderboard(_ context.Context, quizID string) (domain.Leaderboard, error) {
	lb, err := get[domain.Leaderboard](s, leaderboardsBucket, quizID)
	if errors.Is(err, errKeyNotFound) {
		return domain.Leaderboard{}, domain.ErrLeaderboardNotFound
	}
	return lb, err
}

func (s *Store) PutLeaderboard(_ context.Context, lb domain.Leaderboard) error {
	return save(s, leaderboardsBucket, lb.QuizID, lb)
}

func (s *Store) GetPrizePool(_ context.Context, quizID string) (domain.PrizePool, error) {
	pool, err := get[domain.PrizePool](s, prizePoolsBucket, quizID)
	if errors.Is(err, errKeyNotFound) {
		return domain.PrizePool{}, domain.ErrPrizePoolNotFound
	}
	return pool, err
}

func (s *Store) PutPrizePool(_ context.Context, pool domain.PrizePool) error {
	return save(s, prizePoolsBucket, pool.QuizID, pool)
}

func attemptPrefix(quizID, userID string) string {
	return quizID + ":" + userID + ":"
}

func save[T any](s *Store, bucket []byte, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func get[T any](s *Store, bucket []byte, key string) (T, error) {
	var out T
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucket).Get([]byte(key))
		if v == nil {
			return errKeyNotFound
		}
		return json.Unmarshal(v, &out)
	})
	return out, err
}

func listByPrefix[T any](s *Store, bucket []byte, prefix string) ([]T, error) {
	var results []T
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()
		p := []byte(prefix)
		for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
			var out T
			if err := json.Unmarshal(v, &out); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			results = append(results, out)
		}
		return nil
	})
	return results, err
}
