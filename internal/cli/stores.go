package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"weekly-quiz-service/internal/app"
	"weekly-quiz-service/internal/config"
	"weekly-quiz-service/internal/infra/bolt"
	"weekly-quiz-service/internal/infra/memory"
	pgstore "weekly-quiz-service/internal/infra/postgres"
	redisstore "weekly-quiz-service/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// backend is the store selected by store.driver plus the quiz cache in front of it.
type backend struct {
	store   app.Store
	quizzes app.QuizRepository
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		b.closers = append(b.closers, func() { _ = redisClient.Close() })
	}

	switch cfg.Store.Driver {
	case config.DriverRedis:
		b.store = redisstore.NewStore(redisClient)
	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			b.Close()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.store = pgstore.NewStore(pool)
	case config.DriverBolt:
		store, err := bolt.Open(cfg.Store.BoltPath)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = store.Close() })
		b.store = store
	default:
		b.store = memory.NewStore()
	}

	quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	if redisClient != nil {
		b.quizzes = redisstore.NewQuizCache(redisClient, b.store, quizTTL)
	} else {
		b.quizzes = memory.NewQuizCache(b.store, quizTTL)
	}
	slog.Info("store ready", "driver", cfg.Store.Driver, "redisCache", redisClient != nil)
	return b, nil
}

func newService(cfg config.Config, b *backend) *app.QuizService {
	opts := []app.Option{
		app.WithQuizRepository(b.quizzes),
		app.WithLocation(cfg.Location()),
		app.WithLogger(slog.Default()),
	}
	if cfg.HasPrizePool() {
		opts = append(opts, app.WithDefaultPrizePool(domainPrizePool(cfg)))
	}
	return app.NewQuizService(b.store, opts...)
}
