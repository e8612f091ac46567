package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	minTitleLength    = 3
	minQuestionLength = 5
	minOptions        = 2
)

// ValidateQuiz checks a draft for structural completeness. Every rule is
// checked independently; the returned list is empty iff the draft is valid.
func ValidateQuiz(draft QuizDraft) []string {
	var errs []string

	if !draft.Subject.Valid() {
		errs = append(errs, "Please select a valid subject")
	}
	if utf8.RuneCountInString(strings.TrimSpace(draft.Title)) < minTitleLength {
		errs = append(errs, fmt.Sprintf("Quiz title must be at least %d characters", minTitleLength))
	}
	if len(draft.Questions) == 0 {
		errs = append(errs, "Quiz must have at least one question")
	}

	for i, q := range draft.Questions {
		n := i + 1
		if utf8.RuneCountInString(strings.TrimSpace(q.Question)) < minQuestionLength {
			errs = append(errs, fmt.Sprintf("Question %d: question text must be at least %d characters", n, minQuestionLength))
		}
		if len(q.Options) < minOptions {
			errs = append(errs, fmt.Sprintf("Question %d: at least %d options are required", n, minOptions))
		}
		switch {
		case q.CorrectAnswer == "":
			errs = append(errs, fmt.Sprintf("Question %d: a correct answer is required", n))
		case !contains(q.Options, q.CorrectAnswer):
			errs = append(errs, fmt.Sprintf("Question %d: correct answer must match one of the options", n))
		}
	}

	if draft.ScheduledStart.IsZero() {
		errs = append(errs, "Scheduled start time is required")
	}
	if draft.ScheduledEnd.IsZero() {
		errs = append(errs, "Scheduled end time is required")
	}
	if !draft.ScheduledStart.IsZero() && !draft.ScheduledEnd.IsZero() && !draft.ScheduledEnd.After(draft.ScheduledStart.Time) {
		errs = append(errs, "Scheduled end time must be after the start time")
	}

	return errs
}

// Validate wraps ValidateQuiz into an error, nil when the draft is valid.
func (d QuizDraft) Validate() error {
	if errs := ValidateQuiz(d); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func contains(options []string, answer string) bool {
	for _, opt := range options {
		if opt == answer {
			return true
		}
	}
	return false
}
