package memory

import (
	"context"
	"sync"

	"weekly-quiz-service/internal/domain"
)

// Store is an in-memory implementation of app.Store. It mirrors a document
// database: whole documents in, whole documents out, no cross-call isolation.
type Store struct {
	mu           sync.RWMutex
	quizzes      map[string]domain.Quiz
	attempts     map[string][]domain.Attempt
	leaderboards map[string]domain.Leaderboard
	prizePools   map[string]domain.PrizePool
}

func NewStore() *Store {
	return &Store{
		quizzes:      make(map[string]domain.Quiz),
		attempts:     make(map[string][]domain.Attempt),
		leaderboards: make(map[string]domain.Leaderboard),
		prizePools:   make(map[string]domain.PrizePool),
	}
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) CurrentQuiz(_ context.Context, subject domain.Subject) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		current domain.Quiz
		found   bool
	)
	for _, quiz := range s.quizzes {
		if quiz.Subject != subject {
			continue
		}
		if quiz.Status != domain.QuizScheduled && quiz.Status != domain.QuizActive {
			continue
		}
		if !found || quiz.ScheduledStart.After(current.ScheduledStart.Time) {
			current, found = quiz, true
		}
	}
	if !found {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return current, nil
}

func (s *Store) SaveAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.QuizID] = append(s.attempts[attempt.QuizID], attempt)
	return nil
}

func (s *Store) FindAttempt(_ context.Context, userID, quizID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, attempt := range s.attempts[quizID] {
		if attempt.UserID == userID && attempt.IsComplete {
			return attempt, nil
		}
	}
	return domain.Attempt{}, domain.ErrAttemptNotFound
}

// CountAttempts returns how many attempts the user has stored for quizID.
func (s *Store) CountAttempts(userID, quizID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, attempt := range s.attempts[quizID] {
		if attempt.UserID == userID {
			n++
		}
	}
	return n
}

func (s *Store) TopAttempts(_ context.Context, quizID string, n int) ([]domain.Attempt, error) {
	s.mu.RLock()
	completed := make([]domain.Attempt, 0, len(s.attempts[quizID]))
	for _, attempt := range s.attempts[quizID] {
		if attempt.IsComplete {
			completed = append(completed, attempt)
		}
	}
	s.mu.RUnlock()

	domain.SortAttempts(completed)
	if len(completed) > n {
		completed = completed[:n]
	}
	return completed, nil
}

func (s *Store) GetLeaderboard(_ context.Context, quizID string) (domain.Leaderboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lb, ok := s.leaderboards[quizID]
	if !ok {
		return domain.Leaderboard{}, domain.ErrLeaderboardNotFound
	}
	return cloneLeaderboard(lb), nil
}

func (s *Store) PutLeaderboard(_ context.Context, lb domain.Leaderboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaderboards[lb.QuizID] = cloneLeaderboard(lb)
	return nil
}

func (s *Store) GetPrizePool(_ context.Context, quizID string) (domain.PrizePool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pool, ok := s.prizePools[quizID]
	if !ok {
		return domain.PrizePool{}, domain.ErrPrizePoolNotFound
	}
	return pool, nil
}

func (s *Store) PutPrizePool(_ context.Context, pool domain.PrizePool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prizePools[pool.QuizID] = pool
	return nil
}

func cloneLeaderboard(lb domain.Leaderboard) domain.Leaderboard {
	lb.AllScores = append([]domain.LeaderboardEntry{}, lb.AllScores...)
	lb.TopTen = append([]domain.LeaderboardEntry{}, lb.TopTen...)
	return lb
}
