package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// TimePhase is the lifecycle phase of a quiz at a given instant.
type TimePhase string

const (
	PhaseUpcoming  TimePhase = "upcoming"
	PhaseActive    TimePhase = "active"
	PhaseCompleted TimePhase = "completed"
)

const quizEndedMessage = "This quiz has ended"

// TimeStatus is the derived time-status of a quiz. TimeUntilStart is set only
// while upcoming and TimeRemaining only while active.
type TimeStatus struct {
	Status         TimePhase
	TimeUntilStart time.Duration
	TimeRemaining  time.Duration
	Message        string
}

// MarshalJSON reports durations in milliseconds.
func (s TimeStatus) MarshalJSON() ([]byte, error) {
	out := struct {
		Status         TimePhase `json:"status"`
		TimeUntilStart *int64    `json:"timeUntilStart,omitempty"`
		TimeRemaining  *int64    `json:"timeRemaining,omitempty"`
		Message        string    `json:"message"`
	}{Status: s.Status, Message: s.Message}
	switch s.Status {
	case PhaseUpcoming:
		ms := s.TimeUntilStart.Milliseconds()
		out.TimeUntilStart = &ms
	case PhaseActive:
		ms := s.TimeRemaining.Milliseconds()
		out.TimeRemaining = &ms
	}
	return json.Marshal(out)
}

// EvaluateTimeStatus places now relative to the scheduled window [start, end].
// Both bounds are inclusive for the active phase. The upcoming message is
// rendered in start's location.
func EvaluateTimeStatus(now, start, end time.Time) TimeStatus {
	switch {
	case now.Before(start):
		return TimeStatus{
			Status:         PhaseUpcoming,
			TimeUntilStart: start.Sub(now),
			Message:        "Quiz starts " + start.Format("Monday, Jan 2 at 3:04 PM MST"),
		}
	case !now.After(end):
		remaining := end.Sub(now)
		minutes := int(math.Ceil(remaining.Minutes()))
		return TimeStatus{
			Status:        PhaseActive,
			TimeRemaining: remaining,
			Message:       minutesRemaining(minutes),
		}
	default:
		return TimeStatus{Status: PhaseCompleted, Message: quizEndedMessage}
	}
}

func minutesRemaining(minutes int) string {
	if minutes == 1 {
		return "1 minute remaining"
	}
	return fmt.Sprintf("%d minutes remaining", minutes)
}
