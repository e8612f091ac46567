package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Store struct {
		Driver   string `yaml:"driver"`
		BoltPath string `yaml:"bolt_path"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		CacheTTL        string `yaml:"cache_ttl"`
		Timezone        string `yaml:"timezone"`
		TopPlayersLimit int    `yaml:"top_players_limit"`
	} `yaml:"quiz"`
	PrizePool struct {
		TotalAmount int    `yaml:"total_amount"`
		FirstPlace  int    `yaml:"first_place"`
		SecondPlace int    `yaml:"second_place"`
		ThirdPlace  int    `yaml:"third_place"`
		Currency    string `yaml:"currency"`
	} `yaml:"prize_pool"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
	} `yaml:"auth"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads YAML config from path. Environment references like ${REDIS_ADDR}
// are expanded before parsing.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	if c.Store.BoltPath == "" {
		c.Store.BoltPath = "data/quiz.db"
	}
	if c.Quiz.Timezone == "" {
		c.Quiz.Timezone = "UTC"
	}
	if c.Quiz.TopPlayersLimit <= 0 {
		c.Quiz.TopPlayersLimit = 10
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "weekly-quiz-service"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverBolt:
	case DriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("store driver redis requires redis.addr")
		}
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("store driver postgres requires postgres.url")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if _, err := time.LoadLocation(c.Quiz.Timezone); err != nil {
		return fmt.Errorf("quiz.timezone: %w", err)
	}
	return nil
}

// Location returns the timezone used to render quiz times.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Quiz.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HasPrizePool reports whether a default prize pool was configured.
func (c Config) HasPrizePool() bool {
	return c.PrizePool.TotalAmount > 0
}

// LogLevel maps log.level onto slog levels; unknown values mean info.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
