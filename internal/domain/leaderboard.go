package domain

import (
	"sort"
	"time"
)

// TopTenSize is the number of leaders kept in Leaderboard.TopTen.
const TopTenSize = 10

// SortEntries orders entries by percentage descending, then completion time
// ascending. Entries equal on both keys keep their submission order.
func SortEntries(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].PercentageScore != entries[j].PercentageScore {
			return entries[i].PercentageScore > entries[j].PercentageScore
		}
		return entries[i].CompletionTimeSeconds < entries[j].CompletionTimeSeconds
	})
}

// SortAttempts orders attempts the way a leaderboard does: percentage
// descending, completion time ascending, earlier completion first on ties.
func SortAttempts(attempts []Attempt) {
	sort.SliceStable(attempts, func(i, j int) bool {
		a, b := attempts[i], attempts[j]
		if a.PercentageScore != b.PercentageScore {
			return a.PercentageScore > b.PercentageScore
		}
		if a.CompletionTimeSeconds != b.CompletionTimeSeconds {
			return a.CompletionTimeSeconds < b.CompletionTimeSeconds
		}
		return a.CompletedAt.Before(b.CompletedAt.Time)
	})
}

// ApplyScore appends entry to lb and recomputes ranking and aggregates. The
// input leaderboard is not modified.
func ApplyScore(lb Leaderboard, quizID string, entry LeaderboardEntry, now time.Time) Leaderboard {
	all := make([]LeaderboardEntry, 0, len(lb.AllScores)+1)
	all = append(all, lb.AllScores...)
	all = append(all, entry)
	return Rebuild(quizID, all, now)
}

// Rebuild ranks entries positionally (no shared ranks) and derives TopTen,
// TotalParticipants and AverageScore.
func Rebuild(quizID string, entries []LeaderboardEntry, now time.Time) Leaderboard {
	SortEntries(entries)

	sum := 0
	for i := range entries {
		entries[i].Rank = i + 1
		sum += entries[i].PercentageScore
	}

	average := 0
	if len(entries) > 0 {
		average = roundHalfUp(float64(sum) / float64(len(entries)))
	}

	n := len(entries)
	if n > TopTenSize {
		n = TopTenSize
	}
	top := make([]LeaderboardEntry, n)
	copy(top, entries)

	return Leaderboard{
		QuizID:            quizID,
		AllScores:         entries,
		TopTen:            top,
		TotalParticipants: len(entries),
		AverageScore:      average,
		LastUpdated:       now,
	}
}

// RankOf finds userID on the leaderboard.
func (lb Leaderboard) RankOf(userID string) (UserRank, error) {
	for _, e := range lb.AllScores {
		if e.UserID == userID {
			return UserRank{
				Rank:              e.Rank,
				TotalParticipants: lb.TotalParticipants,
				PercentageScore:   e.PercentageScore,
				CompletionTime:    e.CompletionTimeSeconds,
			}, nil
		}
	}
	return UserRank{}, ErrUserNotRanked
}
