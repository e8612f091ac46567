package domain

import "math"

// ScoreResult is the outcome of comparing a submission against an answer key.
type ScoreResult struct {
	CorrectCount    int `json:"correctAnswers"`
	PercentageScore int `json:"percentageScore"`
}

// Score counts positions where answers[i] equals correctAnswers[i] exactly.
// An empty answer never matches. The percentage is rounded half up.
func Score(answers, correctAnswers []string, totalQuestions int) (ScoreResult, error) {
	if totalQuestions <= 0 {
		return ScoreResult{}, ErrNoQuestions
	}

	correct := 0
	for i, answer := range answers {
		if i >= len(correctAnswers) {
			break
		}
		if answer != "" && answer == correctAnswers[i] {
			correct++
		}
	}

	return ScoreResult{
		CorrectCount:    correct,
		PercentageScore: roundHalfUp(100 * float64(correct) / float64(totalQuestions)),
	}, nil
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
