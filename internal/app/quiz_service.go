package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"weekly-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// DefaultPrizePool is served for quizzes without an authored prize pool.
var DefaultPrizePool = domain.PrizePool{
	TotalAmount: 500,
	FirstPlace:  250,
	SecondPlace: 150,
	ThirdPlace:  100,
	Currency:    "USD",
}

const anonymousName = "Anonymous"

// QuizService contains the quiz, attempt and leaderboard use cases.
type QuizService struct {
	store       Store
	quizzes     QuizRepository
	hub         *LeaderboardHub
	now         func() time.Time
	newID       func() string
	location    *time.Location
	defaultPool domain.PrizePool
	log         *slog.Logger
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithQuizRepository reads quizzes for scoring through repo (typically a cache) instead of the store.
func WithQuizRepository(repo QuizRepository) Option {
	return func(s *QuizService) { s.quizzes = repo }
}

// WithHub publishes leaderboard rewrites to hub.
func WithHub(hub *LeaderboardHub) Option {
	return func(s *QuizService) { s.hub = hub }
}

// WithClock is mostly for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithIDGenerator overrides uuid-based identifiers.
func WithIDGenerator(newID func() string) Option {
	return func(s *QuizService) { s.newID = newID }
}

// WithLocation sets the timezone used for time-status messages.
func WithLocation(loc *time.Location) Option {
	return func(s *QuizService) { s.location = loc }
}

// WithDefaultPrizePool overrides DefaultPrizePool.
func WithDefaultPrizePool(pool domain.PrizePool) Option {
	return func(s *QuizService) { s.defaultPool = pool }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *QuizService) { s.log = logger }
}

func NewQuizService(store Store, opts ...Option) *QuizService {
	s := &QuizService{
		store:       store,
		quizzes:     store,
		now:         time.Now,
		newID:       uuid.NewString,
		location:    time.UTC,
		defaultPool: DefaultPrizePool,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hub == nil {
		s.hub = NewLeaderboardHub()
	}
	return s
}

// CreateQuiz persists draft as a scheduled quiz under a fresh identifier.
// Validation is the caller's job (see domain.QuizDraft.Validate).
func (s *QuizService) CreateQuiz(ctx context.Context, draft domain.QuizDraft) (domain.Quiz, error) {
	quiz := domain.Quiz{
		ID:             s.newID(),
		Subject:        draft.Subject,
		Title:          draft.Title,
		Questions:      draft.Questions,
		ScheduledStart: draft.ScheduledStart,
		ScheduledEnd:   draft.ScheduledEnd,
		Status:         domain.QuizScheduled,
		CreatedAt:      domain.NewTimestamp(s.now()),
	}
	if err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	s.log.Info("quiz created", "quizId", quiz.ID, "subject", quiz.Subject, "questions", len(quiz.Questions))
	return quiz, nil
}

// GetCurrentQuiz returns the latest scheduled or active quiz for subject, or nil.
func (s *QuizService) GetCurrentQuiz(ctx context.Context, subject domain.Subject) (*domain.Quiz, error) {
	quiz, err := s.store.CurrentQuiz(ctx, subject)
	if errors.Is(err, domain.ErrQuizNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current quiz: %w", err)
	}
	return &quiz, nil
}

// GetQuiz loads a quiz by id.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.store.GetQuiz(ctx, quizID)
}

// TimeStatus evaluates the quiz schedule against the service clock. The stored
// status is never consulted.
func (s *QuizService) TimeStatus(quiz domain.Quiz) domain.TimeStatus {
	return domain.EvaluateTimeStatus(
		s.now().In(s.location),
		quiz.ScheduledStart.In(s.location),
		quiz.ScheduledEnd.In(s.location),
	)
}

// HasUserAttempted reports whether a completed attempt exists for the pair.
func (s *QuizService) HasUserAttempted(ctx context.Context, userID, quizID string) (bool, error) {
	_, err := s.store.FindAttempt(ctx, userID, quizID)
	if errors.Is(err, domain.ErrAttemptNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check attempt: %w", err)
	}
	return true, nil
}

// GetUserAttempt returns the user's completed attempt, or nil.
func (s *QuizService) GetUserAttempt(ctx context.Context, userID, quizID string) (*domain.Attempt, error) {
	attempt, err := s.store.FindAttempt(ctx, userID, quizID)
	if errors.Is(err, domain.ErrAttemptNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return &attempt, nil
}

// SubmitQuizAttempt scores a submission against the quiz answer key, stores the
// attempt and rewrites the leaderboard.
//
// The attempted check, the attempt write and the leaderboard read-modify-write
// are separate round trips without isolation. Concurrent submissions from one
// user can both be stored, and concurrent submissions from different users can
// overwrite each other's leaderboard entry (last writer wins).
func (s *QuizService) SubmitQuizAttempt(ctx context.Context, sub domain.AttemptSubmission) (domain.Attempt, error) {
	if sub.UserID == "" || sub.QuizID == "" {
		return domain.Attempt{}, fmt.Errorf("userId and quizId are required: %w", domain.ErrInvalidSubmission)
	}
	if sub.CompletionTimeSeconds < 0 {
		return domain.Attempt{}, fmt.Errorf("completion time cannot be negative: %w", domain.ErrInvalidSubmission)
	}

	quiz, err := s.quizzes.GetQuiz(ctx, sub.QuizID)
	if err != nil {
		return domain.Attempt{}, err
	}
	key := quiz.AnswerKey()

	attempted, err := s.HasUserAttempted(ctx, sub.UserID, sub.QuizID)
	if err != nil {
		return domain.Attempt{}, err
	}
	if attempted {
		return domain.Attempt{}, domain.ErrAlreadyAttempted
	}

	result, err := domain.Score(sub.Answers, key, len(key))
	if err != nil {
		return domain.Attempt{}, err
	}

	completedAt := s.now()
	displayName := sub.DisplayName
	if displayName == "" {
		displayName = anonymousName
	}
	attempt := domain.Attempt{
		ID:                    s.newID(),
		UserID:                sub.UserID,
		QuizID:                sub.QuizID,
		Subject:               quiz.Subject,
		DisplayName:           displayName,
		Answers:               sub.Answers,
		AnswerKey:             key,
		TotalQuestions:        len(key),
		CorrectAnswers:        result.CorrectCount,
		PercentageScore:       result.PercentageScore,
		CompletionTimeSeconds: completionSeconds(sub, completedAt),
		StartedAt:             sub.StartedAt,
		CompletedAt:           domain.NewTimestamp(completedAt),
		IsComplete:            true,
	}

	if err := s.store.SaveAttempt(ctx, attempt); err != nil {
		return domain.Attempt{}, fmt.Errorf("save attempt: %w", err)
	}
	if _, err := s.applyNewScore(ctx, quiz.ID, attempt.Entry()); err != nil {
		s.log.Error("leaderboard update failed", "quizId", quiz.ID, "attemptId", attempt.ID, "error", err)
		return domain.Attempt{}, err
	}

	s.log.Info("attempt submitted",
		"quizId", attempt.QuizID,
		"userId", attempt.UserID,
		"attemptId", attempt.ID,
		"percentageScore", attempt.PercentageScore,
	)
	return attempt, nil
}

func completionSeconds(sub domain.AttemptSubmission, completedAt time.Time) int {
	if sub.CompletionTimeSeconds > 0 || sub.StartedAt.IsZero() {
		return sub.CompletionTimeSeconds
	}
	elapsed := int(completedAt.Sub(sub.StartedAt.Time).Seconds())
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// applyNewScore is a whole-document read-modify-write of the quiz leaderboard.
func (s *QuizService) applyNewScore(ctx context.Context, quizID string, entry domain.LeaderboardEntry) (domain.Leaderboard, error) {
	current, err := s.store.GetLeaderboard(ctx, quizID)
	if err != nil && !errors.Is(err, domain.ErrLeaderboardNotFound) {
		return domain.Leaderboard{}, fmt.Errorf("load leaderboard: %w", err)
	}

	updated := domain.ApplyScore(current, quizID, entry, s.now())
	if err := s.store.PutLeaderboard(ctx, updated); err != nil {
		return domain.Leaderboard{}, fmt.Errorf("write leaderboard: %w", err)
	}
	s.hub.Publish(updated)
	return updated, nil
}

// GetLeaderboard returns the quiz leaderboard, or nil if nobody has submitted.
func (s *QuizService) GetLeaderboard(ctx context.Context, quizID string) (*domain.Leaderboard, error) {
	lb, err := s.store.GetLeaderboard(ctx, quizID)
	if errors.Is(err, domain.ErrLeaderboardNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}
	return &lb, nil
}

// GetUserRank fails with domain.ErrUserNotRanked when the user is not on the leaderboard.
func (s *QuizService) GetUserRank(ctx context.Context, quizID, userID string) (domain.UserRank, error) {
	lb, err := s.store.GetLeaderboard(ctx, quizID)
	if errors.Is(err, domain.ErrLeaderboardNotFound) {
		return domain.UserRank{}, domain.ErrUserNotRanked
	}
	if err != nil {
		return domain.UserRank{}, fmt.Errorf("get leaderboard: %w", err)
	}
	return lb.RankOf(userID)
}

// GetTopPlayers returns the best n attempts, ranked by position.
func (s *QuizService) GetTopPlayers(ctx context.Context, quizID string, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		return []domain.LeaderboardEntry{}, nil
	}
	attempts, err := s.store.TopAttempts(ctx, quizID, n)
	if err != nil {
		return nil, fmt.Errorf("top attempts: %w", err)
	}
	players := make([]domain.LeaderboardEntry, len(attempts))
	for i, a := range attempts {
		players[i] = a.Entry()
		players[i].Rank = i + 1
	}
	return players, nil
}

// GetQuizPrizePool falls back to the default pool when none was authored.
func (s *QuizService) GetQuizPrizePool(ctx context.Context, quizID string) (domain.PrizePool, error) {
	pool, err := s.store.GetPrizePool(ctx, quizID)
	if errors.Is(err, domain.ErrPrizePoolNotFound) {
		pool = s.defaultPool
		pool.QuizID = quizID
		return pool, nil
	}
	if err != nil {
		return domain.PrizePool{}, fmt.Errorf("get prize pool: %w", err)
	}
	return pool, nil
}

// SetQuizPrizePool stores an authored prize pool.
func (s *QuizService) SetQuizPrizePool(ctx context.Context, pool domain.PrizePool) (domain.PrizePool, error) {
	if pool.QuizID == "" {
		return domain.PrizePool{}, &domain.ValidationError{Errors: []string{"Prize pool must reference a quiz"}}
	}
	var errs []string
	for _, amount := range []int{pool.TotalAmount, pool.FirstPlace, pool.SecondPlace, pool.ThirdPlace} {
		if amount < 0 {
			errs = append(errs, "Prize amounts cannot be negative")
			break
		}
	}
	if pool.FirstPlace+pool.SecondPlace+pool.ThirdPlace > pool.TotalAmount {
		errs = append(errs, "Place prizes cannot exceed the total amount")
	}
	if len(errs) > 0 {
		return domain.PrizePool{}, &domain.ValidationError{Errors: errs}
	}
	if pool.Currency == "" {
		pool.Currency = s.defaultPool.Currency
	}
	if err := s.store.PutPrizePool(ctx, pool); err != nil {
		return domain.PrizePool{}, fmt.Errorf("put prize pool: %w", err)
	}
	return pool, nil
}

// Subscribe returns a channel of leaderboard snapshots for quizID, starting
// with the current one. The caller must invoke cancel to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, quizID string) (<-chan domain.Leaderboard, func(), error) {
	// Register before reading so a rewrite landing in between still arrives.
	ch, seed, cancel := s.hub.Register(quizID)
	initial, err := s.store.GetLeaderboard(ctx, quizID)
	if errors.Is(err, domain.ErrLeaderboardNotFound) {
		initial = domain.Leaderboard{QuizID: quizID, AllScores: []domain.LeaderboardEntry{}, TopTen: []domain.LeaderboardEntry{}}
	} else if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("get leaderboard: %w", err)
	}
	seed(initial)
	return ch, cancel, nil
}
