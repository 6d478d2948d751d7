package domain

import (
	"encoding/json"
	"time"
)

// PartNA is the sentinel grouping label for attempts recorded without a
// quiz part.
const PartNA = "NA"

// Attempt is one recorded quiz submission. It has no identity of its own;
// it belongs to exactly one Participant and is ordered by insertion.
type Attempt struct {
	AttemptNumber int             `json:"attemptNumber,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	Score         int             `json:"score"`
	Total         int             `json:"total"`
	TimeTaken     int             `json:"timeTaken,omitempty"`
	QuizPart      string          `json:"quizPart,omitempty"`
	QuizName      string          `json:"quizName,omitempty"`
	RoundTimings  json.RawMessage `json:"roundTimings,omitempty"`
}

// Part returns the attempt's grouping label, normalized to PartNA.
func (a Attempt) Part() string {
	if a.QuizPart == "" {
		return PartNA
	}
	return a.QuizPart
}

// Participant is a quiz-taking user record. QuizPart, QuizName, Score and
// Total mirror the participant's "current" attempt for quick display; they
// are recomputed on deletion and cleared when no attempts remain.
type Participant struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	JoinedOn        time.Time  `json:"joinedOn"`
	DailyAttempts   int        `json:"dailyAttempts"`
	LastAttemptDate *time.Time `json:"lastAttemptDate,omitempty"`
	Attempts        []Attempt  `json:"attempts"`
	QuizPart        string     `json:"quizPart,omitempty"`
	QuizName        string     `json:"quizName,omitempty"`
	Score           int        `json:"score"`
	Total           int        `json:"total"`
}

// Attempt availability shown on the admin dashboard.
const (
	StatusLimitReached = "Limit Reached"
	StatusAvailable    = "Available"
	StatusReady        = "Ready"
)

// ParticipantRow is one flattened display row per (participant, part).
type ParticipantRow struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	JoinedOn        time.Time       `json:"joinedOn"`
	QuizPart        string          `json:"quizPart"`
	QuizName        string          `json:"quizName,omitempty"`
	Score           int             `json:"score"`
	Total           int             `json:"total"`
	AttemptNumber   int             `json:"attemptNumber,omitempty"`
	TimeTaken       int             `json:"timeTaken,omitempty"`
	RoundTimings    json.RawMessage `json:"roundTimings,omitempty"`
	DailyAttempts   int             `json:"dailyAttempts"`
	LastAttemptDate *time.Time      `json:"lastAttemptDate,omitempty"`
	Status          string          `json:"status"`
}

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
	Points  int      `json:"points"` // defaults to 1 if zero
}

// QuestionSet is a named group of questions within a round.
type QuestionSet struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Round groups question sets within a quiz.
type Round struct {
	Name string        `json:"name"`
	Sets []QuestionSet `json:"sets"`
}

// Quiz is a stored quiz document. The admin backend persists it as-is.
type Quiz struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rounds []Round `json:"rounds"`
}
