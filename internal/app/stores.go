package app

import (
	"context"

	"weekly-quiz-service/internal/domain"
)

// QuizStore persists quiz documents.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	// GetQuiz returns domain.ErrQuizNotFound when the quiz does not exist.
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	// CurrentQuiz returns the scheduled or active quiz with the latest scheduled
	// start for subject, or domain.ErrQuizNotFound.
	CurrentQuiz(ctx context.Context, subject domain.Subject) (domain.Quiz, error)
}

// AttemptStore persists attempt documents. No uniqueness is enforced on
// (userID, quizID); callers check before writing.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, attempt domain.Attempt) error
	// FindAttempt returns the earliest completed attempt for the pair, or domain.ErrAttemptNotFound.
	FindAttempt(ctx context.Context, userID, quizID string) (domain.Attempt, error)
	// TopAttempts returns up to n completed attempts ordered by percentage
	// descending then completion time ascending.
	TopAttempts(ctx context.Context, quizID string, n int) ([]domain.Attempt, error)
}

// LeaderboardStore holds one leaderboard document per quiz. Writes replace
// the whole document.
type LeaderboardStore interface {
	// GetLeaderboard returns domain.ErrLeaderboardNotFound when absent.
	GetLeaderboard(ctx context.Context, quizID string) (domain.Leaderboard, error)
	PutLeaderboard(ctx context.Context, lb domain.Leaderboard) error
}

// PrizePoolStore holds authored prize pools.
type PrizePoolStore interface {
	// GetPrizePool returns domain.ErrPrizePoolNotFound when none was configured.
	GetPrizePool(ctx context.Context, quizID string) (domain.PrizePool, error)
	PutPrizePool(ctx context.Context, pool domain.PrizePool) error
}

// Store is a document database backing every collection.
type Store interface {
	QuizStore
	AttemptStore
	LeaderboardStore
	PrizePoolStore
}

// QuizRepository loads quiz content for scoring (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}
