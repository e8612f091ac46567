package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"weekly-quiz-service/internal/app"
	"weekly-quiz-service/internal/cli"
	"weekly-quiz-service/internal/domain"
	pgstore "weekly-quiz-service/internal/infra/postgres"
	infraredis "weekly-quiz-service/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestSubmitQuizAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	if err := cli.RunMigrations(ctx, pgURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// A second run must be a no-op.
	if err := cli.RunMigrations(ctx, pgURL); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	store := pgstore.NewStore(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	quizCache := infraredis.NewQuizCache(redisClient, store, 5*time.Minute)

	now := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)
	service := app.NewQuizService(store,
		app.WithQuizRepository(quizCache),
		app.WithClock(func() time.Time { return now }),
	)

	quiz, err := service.CreateQuiz(ctx, domain.QuizDraft{
		Subject: domain.SubjectHistory,
		Title:   "Capitals and Counting",
		Questions: []domain.Question{
			{Question: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswer: "Paris"},
			{Question: "What is 2 + 2?", Options: []string{"4", "5"}, CorrectAnswer: "4"},
		},
		ScheduledStart: domain.NewTimestamp(now.Add(-time.Hour)),
		ScheduledEnd:   domain.NewTimestamp(now.Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	current, err := service.GetCurrentQuiz(ctx, domain.SubjectHistory)
	if err != nil || current == nil || current.ID != quiz.ID {
		t.Fatalf("expected current quiz %s, got %+v (%v)", quiz.ID, current, err)
	}
	if status := service.TimeStatus(*current); status.Status != domain.PhaseActive {
		t.Fatalf("expected active quiz, got %+v", status)
	}

	submissions := []domain.AttemptSubmission{
		{UserID: "u-best", QuizID: quiz.ID, Answers: []string{"Paris", "4"}, CompletionTimeSeconds: 80},
		{UserID: "u-worst", QuizID: quiz.ID, Answers: []string{"Rome", "5"}, CompletionTimeSeconds: 20},
		{UserID: "u1", DisplayName: "Alice", QuizID: quiz.ID, Answers: []string{"Paris", "5"}, CompletionTimeSeconds: 42},
	}
	var attempt domain.Attempt
	for _, sub := range submissions {
		attempt, err = service.SubmitQuizAttempt(ctx, sub)
		if err != nil {
			t.Fatalf("submit %s: %v", sub.UserID, err)
		}
	}
	if attempt.CorrectAnswers != 1 || attempt.PercentageScore != 50 {
		t.Fatalf("unexpected attempt %+v", attempt)
	}

	if _, err := service.SubmitQuizAttempt(ctx, submissions[2]); !errors.Is(err, domain.ErrAlreadyAttempted) {
		t.Fatalf("expected ErrAlreadyAttempted, got %v", err)
	}
	attempted, err := service.HasUserAttempted(ctx, "u1", quiz.ID)
	if err != nil || !attempted {
		t.Fatalf("expected u1 to have attempted (%v)", err)
	}

	rank, err := service.GetUserRank(ctx, quiz.ID, "u1")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if rank.Rank != 2 || rank.TotalParticipants != 3 {
		t.Fatalf("unexpected rank %+v", rank)
	}

	top, err := service.GetTopPlayers(ctx, quiz.ID, 2)
	if err != nil {
		t.Fatalf("top players: %v", err)
	}
	if len(top) != 2 || top[0].UserID != "u-best" || top[1].UserID != "u1" {
		t.Fatalf("unexpected top players %+v", top)
	}

	if exists, err := redisClient.Exists(ctx, "quiz:"+quiz.ID+":cached").Result(); err != nil || exists != 1 {
		t.Fatalf("expected quiz cached in redis (%d, %v)", exists, err)
	}
}

func TestRedisStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()
	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	store := infraredis.NewStore(redisClient)
	service := app.NewQuizService(store, app.WithQuizRepository(infraredis.NewQuizCache(redisClient, store, time.Minute)))

	start := time.Now().Add(time.Hour)
	quiz, err := service.CreateQuiz(ctx, domain.QuizDraft{
		Subject:        domain.SubjectVocabulary,
		Title:          "Word Week",
		Questions:      []domain.Question{{Question: "Synonym of big?", Options: []string{"large", "tiny"}, CorrectAnswer: "large"}},
		ScheduledStart: domain.NewTimestamp(start),
		ScheduledEnd:   domain.NewTimestamp(start.Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if status := service.TimeStatus(quiz); status.Status != domain.PhaseUpcoming {
		t.Fatalf("expected upcoming, got %+v", status)
	}

	if _, err := service.SubmitQuizAttempt(ctx, domain.AttemptSubmission{UserID: "u1", QuizID: quiz.ID, Answers: []string{"large"}}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	lb, err := service.GetLeaderboard(ctx, quiz.ID)
	if err != nil || lb == nil || lb.TotalParticipants != 1 || lb.AverageScore != 100 {
		t.Fatalf("unexpected leaderboard %+v (%v)", lb, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
