package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"weekly-quiz-service/internal/app"
	"weekly-quiz-service/internal/domain"
)

func TestQuizCacheCaches(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	if err := store.CreateQuiz(ctx, sampleQuiz()); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	loader := &countingLoader{QuizRepository: store}
	cache := NewQuizCache(loader, time.Minute)

	if _, err := cache.GetQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	quiz, err := cache.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
	if len(quiz.AnswerKey()) != 1 || quiz.AnswerKey()[0] != "4" {
		t.Fatalf("unexpected cached quiz %+v", quiz)
	}
}

func TestQuizCacheExpires(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_ = store.CreateQuiz(ctx, sampleQuiz())
	loader := &countingLoader{QuizRepository: store}
	cache := NewQuizCache(loader, time.Minute)

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	_, _ = cache.GetQuiz(ctx, "quiz-1")
	now = now.Add(2 * time.Minute)
	_, _ = cache.GetQuiz(ctx, "quiz-1")
	if loader.count() != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.count())
	}
}

func TestQuizCacheDoesNotCacheMisses(t *testing.T) {
	loader := &countingLoader{QuizRepository: NewStore()}
	cache := NewQuizCache(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("expected ErrQuizNotFound, got %v", err)
		}
	}
	if loader.count() != 2 {
		t.Fatalf("expected misses to hit the loader, got %d", loader.count())
	}
}

type countingLoader struct {
	app.QuizRepository
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.QuizRepository.GetQuiz(ctx, quizID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleQuiz() domain.Quiz {
	start := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)
	return domain.Quiz{
		ID:      "quiz-1",
		Subject: domain.SubjectMath,
		Title:   "Weekly Math",
		Questions: []domain.Question{
			{Question: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
		},
		ScheduledStart: domain.NewTimestamp(start),
		ScheduledEnd:   domain.NewTimestamp(start.Add(time.Hour)),
		Status:         domain.QuizScheduled,
	}
}
