package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"weekly-quiz-service/internal/app"
	"weekly-quiz-service/internal/domain"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuizCacheCachesInRedis(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()

	store := NewStore(client)
	if err := store.CreateQuiz(ctx, sampleQuiz()); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	loader := &countingLoader{QuizRepository: store}
	cache := NewQuizCache(client, loader, time.Minute)

	if _, err := cache.GetQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.count())
	}
	if !mr.Exists("quiz:quiz-1:cached") {
		t.Fatalf("expected cached copy in redis")
	}
	if ttl := mr.TTL("quiz:quiz-1:cached"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	quiz, err := cache.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.count())
	}
	if key := quiz.AnswerKey(); len(key) != 1 || key[0] != "4" {
		t.Fatalf("unexpected answer key %v", key)
	}

	mr.FastForward(2 * time.Minute)
	_, _ = cache.GetQuiz(ctx, "quiz-1")
	if loader.count() != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.count())
	}

	if err := cache.Invalidate(ctx, "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("quiz:quiz-1:cached") {
		t.Fatalf("expected cached copy removed")
	}
}

func TestQuizCacheMissIsNotCached(t *testing.T) {
	mr, client := newMiniredis(t)
	cache := NewQuizCache(client, NewStore(client), time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	if mr.Exists("quiz:missing:cached") {
		t.Fatalf("miss should not be cached")
	}
}

func TestQuizCacheZeroTTLDisablesCaching(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()

	store := NewStore(client)
	if err := store.CreateQuiz(ctx, sampleQuiz()); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	loader := &countingLoader{QuizRepository: store}
	cache := NewQuizCache(client, loader, 0)

	for i := 0; i < 2; i++ {
		if _, err := cache.GetQuiz(ctx, "quiz-1"); err != nil {
			t.Fatalf("get quiz: %v", err)
		}
	}
	if mr.Exists("quiz:quiz-1:cached") {
		t.Fatalf("zero ttl should not store a cached copy")
	}
	if loader.count() != 2 {
		t.Fatalf("expected loader on every read, got %d calls", loader.count())
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

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}
