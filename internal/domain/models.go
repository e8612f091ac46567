package domain

import "time"

// Subject is a supported quiz subject code.
type Subject string

const (
	SubjectMath       Subject = "math"
	SubjectEnglish    Subject = "english"
	SubjectScience    Subject = "science"
	SubjectHistory    Subject = "history"
	SubjectVocabulary Subject = "vocabulary"
)

// Subjects lists the supported subject codes.
var Subjects = []Subject{SubjectMath, SubjectEnglish, SubjectScience, SubjectHistory, SubjectVocabulary}

// Valid reports whether s is one of the supported subject codes.
func (s Subject) Valid() bool {
	for _, known := range Subjects {
		if s == known {
			return true
		}
	}
	return false
}

// QuizStatus is the stored lifecycle marker of a quiz. It is advisory only;
// the time-status derived from the schedule is authoritative.
type QuizStatus string

const (
	QuizScheduled QuizStatus = "scheduled"
	QuizActive    QuizStatus = "active"
	QuizCompleted QuizStatus = "completed"
)

// Question models a multiple-choice question whose correct answer is one of its options.
type Question struct {
	Question      string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
}

// QuizDraft is an authored quiz before it has been persisted.
type QuizDraft struct {
	Subject        Subject    `json:"subject" yaml:"subject"`
	Title          string     `json:"title" yaml:"title"`
	Questions      []Question `json:"questions" yaml:"questions"`
	ScheduledStart Timestamp  `json:"scheduledStart" yaml:"scheduledStart"`
	ScheduledEnd   Timestamp  `json:"scheduledEnd" yaml:"scheduledEnd"`
}

// Quiz is a scheduled, timed set of questions for one subject.
type Quiz struct {
	ID             string     `json:"quizId"`
	Subject        Subject    `json:"subject"`
	Title          string     `json:"title"`
	Questions      []Question `json:"questions"`
	ScheduledStart Timestamp  `json:"scheduledStart"`
	ScheduledEnd   Timestamp  `json:"scheduledEnd"`
	Status         QuizStatus `json:"status"`
	CreatedAt      Timestamp  `json:"createdAt"`
}

// AnswerKey returns the correct answers in question order.
func (q Quiz) AnswerKey() []string {
	key := make([]string, len(q.Questions))
	for i, question := range q.Questions {
		key[i] = question.CorrectAnswer
	}
	return key
}

// AttemptSubmission is what a client sends when finishing a quiz.
type AttemptSubmission struct {
	UserID                string    `json:"userId"`
	DisplayName           string    `json:"displayName"`
	QuizID                string    `json:"quizId"`
	Answers               []string  `json:"answers"`
	CompletionTimeSeconds int       `json:"completionTimeSeconds"`
	StartedAt             Timestamp `json:"startedAt"`
}

// Attempt is one user's completed submission for a quiz.
type Attempt struct {
	ID                    string    `json:"attemptId"`
	UserID                string    `json:"userId"`
	QuizID                string    `json:"quizId"`
	Subject               Subject   `json:"subject"`
	DisplayName           string    `json:"displayName"`
	Answers               []string  `json:"answers"`
	AnswerKey             []string  `json:"correctAnswerKey"`
	TotalQuestions        int       `json:"totalQuestions"`
	CorrectAnswers        int       `json:"correctAnswers"`
	PercentageScore       int       `json:"percentageScore"`
	CompletionTimeSeconds int       `json:"completionTimeSeconds"`
	StartedAt             Timestamp `json:"startedAt"`
	CompletedAt           Timestamp `json:"completedAt"`
	IsComplete            bool      `json:"isComplete"`
}

// Entry projects the attempt onto its leaderboard row.
func (a Attempt) Entry() LeaderboardEntry {
	return LeaderboardEntry{
		UserID:                a.UserID,
		DisplayName:           a.DisplayName,
		PercentageScore:       a.PercentageScore,
		CompletionTimeSeconds: a.CompletionTimeSeconds,
	}
}

// LeaderboardEntry is one ranked row of a leaderboard.
type LeaderboardEntry struct {
	UserID                string `json:"userId"`
	DisplayName           string `json:"displayName"`
	PercentageScore       int    `json:"percentageScore"`
	CompletionTimeSeconds int    `json:"completionTimeSeconds"`
	Rank                  int    `json:"rank"`
}

// Leaderboard is the denormalized ranking document for one quiz.
type Leaderboard struct {
	QuizID            string             `json:"quizId"`
	AllScores         []LeaderboardEntry `json:"allScores"`
	TopTen            []LeaderboardEntry `json:"topTen"`
	TotalParticipants int                `json:"totalParticipants"`
	AverageScore      int                `json:"averageScore"`
	LastUpdated       time.Time          `json:"lastUpdated"`
}

// UserRank is a single user's standing on a leaderboard.
type UserRank struct {
	Rank              int `json:"rank"`
	TotalParticipants int `json:"totalParticipants"`
	PercentageScore   int `json:"percentageScore"`
	CompletionTime    int `json:"completionTime"`
}

// PrizePool describes the payout for a quiz's top three finishers.
type PrizePool struct {
	QuizID      string `json:"quizId"`
	TotalAmount int    `json:"totalAmount"`
	FirstPlace  int    `json:"firstPlace"`
	SecondPlace int    `json:"secondPlace"`
	ThirdPlace  int    `json:"thirdPlace"`
	Currency    string `json:"currency"`
}
