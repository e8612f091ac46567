package domain

import (
	"errors"
	"testing"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name     string
		answers  []string
		key      []string
		total    int
		wantHits int
		wantPct  int
	}{
		{"partial", []string{"A", "B", "C"}, []string{"A", "X", "C"}, 3, 2, 67},
		{"half", []string{"Paris", "5"}, []string{"Paris", "4"}, 2, 1, 50},
		{"unanswered never matches", []string{"", ""}, []string{"", "B"}, 2, 0, 0},
		{"short submission", []string{"A"}, []string{"A", "B"}, 2, 1, 50},
		{"half rounds up", []string{"A", "", "", "", "", "", "", ""}, []string{"A", "B", "C", "D", "E", "F", "G", "H"}, 8, 1, 13},
		{"order dependent", []string{"B", "A"}, []string{"A", "B"}, 2, 0, 0},
		{"case sensitive", []string{"paris"}, []string{"Paris"}, 1, 0, 0},
		{"perfect", []string{"A", "B"}, []string{"A", "B"}, 2, 2, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Score(tc.answers, tc.key, tc.total)
			if err != nil {
				t.Fatalf("score: %v", err)
			}
			if got.CorrectCount != tc.wantHits || got.PercentageScore != tc.wantPct {
				t.Fatalf("expected %d/%d%%, got %+v", tc.wantHits, tc.wantPct, got)
			}
		})
	}
}

func TestScoreRejectsZeroQuestions(t *testing.T) {
	if _, err := Score(nil, nil, 0); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}
