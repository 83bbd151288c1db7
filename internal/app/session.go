package app

import (
	"fmt"
	"sync"
	"time"

	"quiz-session-engine/internal/domain"
)

// Session is one test-taker's attempt. All mutable state is guarded by mu,
// so operations on the same session are totally ordered while unrelated
// sessions never contend.
type Session struct {
	token     string
	userID    string
	quizID    string
	questions QuestionSet
	startedAt time.Time
	timeLimit int

	mu       sync.Mutex
	status   domain.SessionStatus
	answers  *AnswerRegister
	deadline *DeadlineTracker
	result   *domain.Result
	done     chan struct{}
}

func newSession(token, userID, quizID string, questions QuestionSet, startedAt time.Time, timeLimitSeconds int, schedule Scheduler) *Session {
	return &Session{
		token:     token,
		userID:    userID,
		quizID:    quizID,
		questions: questions,
		startedAt: startedAt,
		timeLimit: timeLimitSeconds,
		status:    domain.StatusActive,
		answers:   NewAnswerRegister(),
		deadline:  NewDeadlineTracker(schedule),
		done:      make(chan struct{}),
	}
}

// Token returns the session's opaque identity.
func (s *Session) Token() string { return s.token }

// UserID returns the owning user.
func (s *Session) UserID() string { return s.userID }

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Status returns the current lifecycle state.
func (s *Session) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// TimeLimit returns the session's fixed time limit.
func (s *Session) TimeLimit() time.Duration {
	return time.Duration(s.timeLimit) * time.Second
}

// FinalizedBefore reports whether the session is terminal and was finalized before cutoff.
func (s *Session) FinalizedBefore(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result != nil && s.result.FinalizedAt.Before(cutoff)
}

func (s *Session) start(onExpire func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline.Start(s.startedAt, s.TimeLimit(), onExpire)
}

// submit validates and records an answer. If the deadline already passed but the
// timer has not yet fired, the session is expired here and the returned result is
// the fresh finalization for the caller to announce.
func (s *Session) submit(now time.Time, questionID string, selectedIndex int) (*domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusActive {
		return nil, domain.ErrSessionAlreadyFinalized
	}
	if s.deadline.Expired(now) {
		res := s.finalizeLocked(domain.CauseTimeout, now)
		return &res, fmt.Errorf("%w: time limit reached", domain.ErrSessionAlreadyFinalized)
	}

	count, ok := s.questions.OptionCount(questionID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownQuestion, questionID)
	}
	if selectedIndex < 0 || selectedIndex >= count {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", domain.ErrInvalidOptionIndex, selectedIndex, count)
	}
	s.answers.Upsert(questionID, selectedIndex)
	return nil, nil
}

// finalize performs the Active -> terminal transition at most once. The bool
// reports whether this call won; losers get the winner's result. A manual
// submit past the deadline finalizes as a timeout, like a late answer does.
func (s *Session) finalize(cause domain.FinalizeCause, now time.Time) (domain.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusActive {
		return cloneResult(*s.result), false
	}
	if cause == domain.CauseManual && s.deadline.Expired(now) {
		cause = domain.CauseTimeout
	}
	return s.finalizeLocked(cause, now), true
}

func (s *Session) finalizeLocked(cause domain.FinalizeCause, now time.Time) domain.Result {
	status := domain.StatusSubmitted
	if cause == domain.CauseTimeout {
		status = domain.StatusExpired
	}

	report := Score(s.questions.questions, s.answers.Snapshot())
	s.status = status
	s.result = &domain.Result{
		Token:       s.token,
		UserID:      s.userID,
		QuizID:      s.quizID,
		Status:      status,
		Cause:       cause,
		StartedAt:   s.startedAt,
		FinalizedAt: now,
		Report:      report,
	}
	s.deadline.Cancel()
	close(s.done)
	return cloneResult(*s.result)
}

func (s *Session) remaining(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusActive {
		return 0, domain.ErrSessionNotFound
	}
	return s.deadline.RemainingSeconds(now), nil
}

func (s *Session) view(now time.Time) domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := domain.SessionView{
		Token:            s.token,
		UserID:           s.userID,
		QuizID:           s.quizID,
		Status:           s.status,
		StartedAt:        s.startedAt,
		TimeLimitSeconds: s.timeLimit,
		QuestionCount:    s.questions.Len(),
		AnsweredCount:    s.answers.Len(),
	}
	if s.status == domain.StatusActive {
		v.RemainingSeconds = s.deadline.RemainingSeconds(now)
	}
	if s.result != nil {
		res := cloneResult(*s.result)
		v.Result = &res
	}
	return v
}

func (s *Session) publicQuestions() []domain.PublicQuestion {
	out := make([]domain.PublicQuestion, 0, s.questions.Len())
	for _, q := range s.questions.questions {
		out = append(out, domain.PublicQuestion{
			ID:         q.ID,
			Prompt:     q.Prompt,
			Options:    append([]string(nil), q.Options...),
			Difficulty: q.Difficulty,
		})
	}
	return out
}
