package domain

import (
	"errors"
	"strings"
)

var (
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound is returned when a user has no completed attempt for a quiz.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrLeaderboardNotFound is returned when no one has submitted for a quiz yet.
	ErrLeaderboardNotFound = errors.New("leaderboard not found")
	// ErrPrizePoolNotFound is returned when no prize pool was configured for a quiz.
	ErrPrizePoolNotFound = errors.New("prize pool not found")
	// ErrUserNotRanked is returned when a user is absent from a quiz leaderboard.
	ErrUserNotRanked = errors.New("user not found in leaderboard")
	// ErrAlreadyAttempted is returned when a user submits a quiz they have already completed.
	ErrAlreadyAttempted = errors.New("user has already attempted this quiz")
	// ErrNoQuestions guards scoring against a quiz without questions.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrInvalidSubmission indicates a malformed attempt submission.
	ErrInvalidSubmission = errors.New("invalid submission")
)

// ValidationError carries every rule a quiz draft violated.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}
