package domain

import "time"

// Unanswered is the selected index reported for questions the user never answered.
const Unanswered = -1

// Question models a fixed-choice question with exactly one correct option.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
	Source       string   `json:"source,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
}

// Quiz is a generated collection of questions.
type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Subject          string     `json:"subject,omitempty"`
	Topic            string     `json:"topic,omitempty"`
	Difficulty       string     `json:"difficulty,omitempty"`
	TimeLimitSeconds int        `json:"timeLimitSeconds,omitempty"`
	Questions        []Question `json:"questions"`
}

// PublicQuestion is the test-taker's view of a question: no answer key.
type PublicQuestion struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options"`
	Difficulty string   `json:"difficulty,omitempty"`
}

// PublicQuiz is handed to the client when a session starts.
type PublicQuiz struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Subject    string           `json:"subject,omitempty"`
	Topic      string           `json:"topic,omitempty"`
	Difficulty string           `json:"difficulty,omitempty"`
	Questions  []PublicQuestion `json:"questions"`
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusSubmitted SessionStatus = "submitted"
	StatusExpired   SessionStatus = "expired"
)

// Terminal reports whether no further transition can leave the status.
func (s SessionStatus) Terminal() bool {
	return s == StatusSubmitted || s == StatusExpired
}

// FinalizeCause records what triggered finalization.
type FinalizeCause string

const (
	CauseManual  FinalizeCause = "manual"
	CauseTimeout FinalizeCause = "timeout"
)

// SessionTicket is returned to the caller when a session is created.
type SessionTicket struct {
	Token            string    `json:"token"`
	TimeLimitSeconds int       `json:"timeLimitSeconds"`
	StartedAt        time.Time `json:"startedAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// QuestionResult is the graded outcome for a single question.
type QuestionResult struct {
	QuestionID    string   `json:"questionId"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	SelectedIndex int      `json:"selectedIndex"` // Unanswered when absent
	CorrectIndex  int      `json:"correctIndex"`
	Correct       bool     `json:"correct"`
	Explanation   string   `json:"explanation,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// Performance is a coarse feedback band derived from the percentage.
type Performance string

const (
	PerformanceExcellent     Performance = "excellent"
	PerformanceGood          Performance = "good"
	PerformanceFair          Performance = "fair"
	PerformanceNeedsPractice Performance = "needs_practice"
)

// ScoreReport is the deterministic grading of a session.
type ScoreReport struct {
	Total       int              `json:"totalQuestions"`
	Correct     int              `json:"correctAnswers"`
	Percentage  int              `json:"percentage"`
	Performance Performance      `json:"performance"`
	Results     []QuestionResult `json:"results"`
}

// Result is the single outcome of a finalized session.
type Result struct {
	Token       string        `json:"token"`
	UserID      string        `json:"userId"`
	QuizID      string        `json:"quizId,omitempty"`
	Status      SessionStatus `json:"status"`
	Cause       FinalizeCause `json:"cause"`
	StartedAt   time.Time     `json:"startedAt"`
	FinalizedAt time.Time     `json:"finalizedAt"`
	Report      ScoreReport   `json:"report"`
}

// SessionView describes a session for lookups.
type SessionView struct {
	Token            string        `json:"token"`
	UserID           string        `json:"userId"`
	QuizID           string        `json:"quizId,omitempty"`
	Status           SessionStatus `json:"status"`
	StartedAt        time.Time     `json:"startedAt"`
	TimeLimitSeconds int           `json:"timeLimitSeconds"`
	RemainingSeconds int           `json:"remainingSeconds"`
	QuestionCount    int           `json:"questionCount"`
	AnsweredCount    int           `json:"answeredCount"`
	Result           *Result       `json:"result,omitempty"`
}
