package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"weekly-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Store keeps every document as JSONB, with the columns needed for lookups
// and ordering denormalized next to it.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, subject, status, scheduled_start, data) VALUES ($1, $2, $3, $4, $5)`,
		quiz.ID, string(quiz.Subject), string(quiz.Status), quiz.ScheduledStart.Time, data,
	)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	row := s.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID)
	if err := scanJSON(row, &quiz, domain.ErrQuizNotFound); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (s *Store) CurrentQuiz(ctx context.Context, subject domain.Subject) (domain.Quiz, error) {
	var quiz domain.Quiz
	row := s.pool.QueryRow(ctx,
		`SELECT data FROM quizzes
		 WHERE subject=$1 AND status IN ($2, $3)
		 ORDER BY scheduled_start DESC
		 LIMIT 1`,
		string(subject), string(domain.QuizScheduled), string(domain.QuizActive),
	)
	if err := scanJSON(row, &quiz, domain.ErrQuizNotFound); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (s *Store) SaveAttempt(ctx context.Context, attempt domain.Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO attempts (id, quiz_id, user_id, percentage_score, completion_time_seconds, completed_at, is_complete, data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		attempt.ID, attempt.QuizID, attempt.UserID, attempt.PercentageScore,
		attempt.CompletionTimeSeconds, attempt.CompletedAt.Time, attempt.IsComplete, data,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *Store) FindAttempt(ctx context.Context, userID, quizID string) (domain.Attempt, error) {
	var attempt domain.Attempt
	row := s.pool.QueryRow(ctx,
		`SELECT data FROM attempts
		 WHERE quiz_id=$1 AND user_id=$2 AND is_complete
		 ORDER BY seq
		 LIMIT 1`,
		quizID, userID,
	)
	if err := scanJSON(row, &attempt, domain.ErrAttemptNotFound); err != nil {
		return domain.Attempt{}, err
	}
	return attempt, nil
}

func (s *Store) TopAttempts(ctx context.Context, quizID string, n int) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM attempts
		 WHERE quiz_id=$1 AND is_complete
		 ORDER BY percentage_score DESC, completion_time_seconds ASC, completed_at ASC
		 LIMIT $2`,
		quizID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]domain.Attempt, 0, n)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		var attempt domain.Attempt
		if err := json.Unmarshal(raw, &attempt); err != nil {
			return nil, fmt.Errorf("unmarshal attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

func (s *Store) GetLeaderboard(ctx context.Context, quizID string) (domain.Leaderboard, error) {
	var lb domain.Leaderboard
	row := s.pool.QueryRow(ctx, `SELECT data FROM leaderboards WHERE quiz_id=$1`, quizID)
	if err := scanJSON(row, &lb, domain.ErrLeaderboardNotFound); err != nil {
		return domain.Leaderboard{}, err
	}
	return lb, nil
}

// PutLeaderboard replaces the stored document unconditionally.
func (s *Store) PutLeaderboard(ctx context.Context, lb domain.Leaderboard) error {
	return s.upsert(ctx, "leaderboards", lb.QuizID, lb)
}

func (s *Store) GetPrizePool(ctx context.Context, quizID string) (domain.PrizePool, error) {
	var pool domain.PrizePool
	row := s.pool.QueryRow(ctx, `SELECT data FROM prize_pools WHERE quiz_id=$1`, quizID)
	if err := scanJSON(row, &pool, domain.ErrPrizePoolNotFound); err != nil {
		return domain.PrizePool{}, err
	}
	return pool, nil
}

func (s *Store) PutPrizePool(ctx context.Context, pool domain.PrizePool) error {
	return s.upsert(ctx, "prize_pools", pool.QuizID, pool)
}

func (s *Store) upsert(ctx context.Context, table, quizID string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", table, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+table+` (quiz_id, data) VALUES ($1, $2)
		 ON CONFLICT (quiz_id) DO UPDATE SET data = EXCLUDED.data`,
		quizID, data,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func scanJSON(row pgx.Row, out any, notFound error) error {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound
		}
		return fmt.Errorf("scan: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
