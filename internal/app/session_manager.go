package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quiz-session-engine/internal/domain"
)

// maxTokenAttempts bounds retries when a store reports a token collision.
const maxTokenAttempts = 3

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-backed, etc).
type SessionRepository interface {
	// Add stores a new session. It returns domain.ErrTokenCollision if the token was ever issued.
	Add(ctx context.Context, session *Session) error
	Get(token string) (*Session, bool)
	// DeleteIfFinalized drops a session finalized before cutoff and reports whether it did.
	DeleteIfFinalized(token string, cutoff time.Time) bool
	Tokens() []string
}

// Observer receives engine lifecycle events (metrics, tracing).
type Observer interface {
	SessionCreated()
	AnswerRecorded()
	SessionFinalized(status domain.SessionStatus, cause domain.FinalizeCause)
}

type nopObserver struct{}

func (nopObserver) SessionCreated()                                           {}
func (nopObserver) AnswerRecorded()                                           {}
func (nopObserver) SessionFinalized(domain.SessionStatus, domain.FinalizeCause) {}

// FinalizeHook is invoked once per session by the winning finalization, after
// the session lock is released. Hooks must not block.
type FinalizeHook func(domain.Result)

// SessionRequest describes a session to create.
type SessionRequest struct {
	UserID           string
	QuizID           string
	Questions        []domain.Question
	TimeLimitSeconds int
}

// SessionManager owns session state transitions: creation, answer submission,
// finalization (manual or timer-driven) and lookup.
type SessionManager struct {
	sessions SessionRepository
	now      func() time.Time
	schedule Scheduler
	newToken func() string
	observer Observer
	logger   *zap.Logger
	hooks    []FinalizeHook
}

// ManagerOption customizes a SessionManager.
type ManagerOption func(*SessionManager)

// WithClock replaces time.Now, for deterministic tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *SessionManager) { m.now = now }
}

// WithScheduler replaces time.AfterFunc for deadline callbacks.
func WithScheduler(schedule Scheduler) ManagerOption {
	return func(m *SessionManager) { m.schedule = schedule }
}

// WithTokenSource replaces the random token generator.
func WithTokenSource(newToken func() string) ManagerOption {
	return func(m *SessionManager) { m.newToken = newToken }
}

func WithObserver(o Observer) ManagerOption {
	return func(m *SessionManager) { m.observer = o }
}

func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *SessionManager) { m.logger = l }
}

// WithFinalizeHook registers a hook for finalized sessions.
func WithFinalizeHook(h FinalizeHook) ManagerOption {
	return func(m *SessionManager) { m.hooks = append(m.hooks, h) }
}

func NewSessionManager(store SessionRepository, opts ...ManagerOption) *SessionManager {
	m := &SessionManager{
		sessions: store,
		now:      time.Now,
		schedule: AfterFunc,
		newToken: uuid.NewString,
		observer: nopObserver{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateSession freezes the questions, issues a fresh token and arms the deadline.
func (m *SessionManager) CreateSession(ctx context.Context, req SessionRequest) (domain.SessionTicket, error) {
	if req.TimeLimitSeconds <= 0 {
		return domain.SessionTicket{}, fmt.Errorf("%w: time limit must be positive", domain.ErrInvalidQuizDefinition)
	}
	questions, err := NewQuestionSet(req.Questions)
	if err != nil {
		return domain.SessionTicket{}, err
	}

	startedAt := m.now()
	var session *Session
	for attempt := 0; ; attempt++ {
		session = newSession(m.newToken(), req.UserID, req.QuizID, questions, startedAt, req.TimeLimitSeconds, m.schedule)
		err = m.sessions.Add(ctx, session)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrTokenCollision) || attempt+1 >= maxTokenAttempts {
			return domain.SessionTicket{}, fmt.Errorf("store session: %w", err)
		}
	}

	if err := session.start(func() { m.expire(session) }); err != nil {
		return domain.SessionTicket{}, err
	}

	m.observer.SessionCreated()
	m.logger.Info("session created",
		zap.String("user_id", req.UserID),
		zap.String("quiz_id", req.QuizID),
		zap.Int("questions", questions.Len()),
		zap.Int("time_limit_seconds", req.TimeLimitSeconds),
	)

	return domain.SessionTicket{
		Token:            session.token,
		TimeLimitSeconds: req.TimeLimitSeconds,
		StartedAt:        startedAt,
		ExpiresAt:        startedAt.Add(session.TimeLimit()),
	}, nil
}

// SubmitAnswer upserts a selection. It never touches the deadline.
func (m *SessionManager) SubmitAnswer(_ context.Context, token, questionID string, selectedIndex int) error {
	session, ok := m.sessions.Get(token)
	if !ok {
		return domain.ErrSessionNotFound
	}

	expired, err := session.submit(m.now(), questionID, selectedIndex)
	if expired != nil {
		m.announce(*expired)
	}
	if err != nil {
		return err
	}
	m.observer.AnswerRecorded()
	return nil
}

// Finalize moves an active session to Submitted (manual) or Expired (timeout).
// Exactly one call wins; every call, winner or not, returns the same result.
func (m *SessionManager) Finalize(_ context.Context, token string, cause domain.FinalizeCause) (domain.Result, error) {
	if cause != domain.CauseManual && cause != domain.CauseTimeout {
		return domain.Result{}, fmt.Errorf("unknown finalize cause %q", cause)
	}
	session, ok := m.sessions.Get(token)
	if !ok {
		return domain.Result{}, domain.ErrSessionNotFound
	}

	res, won := session.finalize(cause, m.now())
	if won {
		m.announce(res)
	}
	return res, nil
}

// GetRemainingSeconds returns the whole seconds left on an active session.
func (m *SessionManager) GetRemainingSeconds(_ context.Context, token string) (int, error) {
	session, ok := m.sessions.Get(token)
	if !ok {
		return 0, domain.ErrSessionNotFound
	}
	return session.remaining(m.now())
}

// Lookup returns a view of the session, including its result once finalized.
func (m *SessionManager) Lookup(_ context.Context, token string) (domain.SessionView, error) {
	session, ok := m.sessions.Get(token)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return session.view(m.now()), nil
}

// Questions returns the session's questions without the answer key.
func (m *SessionManager) Questions(_ context.Context, token string) ([]domain.PublicQuestion, error) {
	session, ok := m.sessions.Get(token)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.publicQuestions(), nil
}

// Owner returns the user a session was issued to.
func (m *SessionManager) Owner(token string) (string, error) {
	session, ok := m.sessions.Get(token)
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return session.userID, nil
}

// Done returns a channel closed when the session finalizes.
func (m *SessionManager) Done(token string) (<-chan struct{}, error) {
	session, ok := m.sessions.Get(token)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Done(), nil
}

// Prune drops sessions finalized more than retention ago and returns how many went.
func (m *SessionManager) Prune(retention time.Duration) int {
	cutoff := m.now().Add(-retention)
	pruned := 0
	for _, token := range m.sessions.Tokens() {
		if m.sessions.DeleteIfFinalized(token, cutoff) {
			pruned++
		}
	}
	return pruned
}

// DefaultPruneInterval is used when RunPruner gets a non-positive interval.
const DefaultPruneInterval = time.Minute

// RunPruner calls Prune every interval until ctx is done.
func (m *SessionManager) RunPruner(ctx context.Context, interval, retention time.Duration) {
	if interval <= 0 {
		interval = DefaultPruneInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Prune(retention); n > 0 {
				m.logger.Debug("pruned finalized sessions", zap.Int("count", n))
			}
		}
	}
}

func (m *SessionManager) expire(session *Session) {
	res, won := session.finalize(domain.CauseTimeout, m.now())
	if won {
		m.announce(res)
	}
}

func (m *SessionManager) announce(res domain.Result) {
	m.observer.SessionFinalized(res.Status, res.Cause)
	m.logger.Info("session finalized",
		zap.String("user_id", res.UserID),
		zap.String("status", string(res.Status)),
		zap.String("cause", string(res.Cause)),
		zap.Int("correct", res.Report.Correct),
		zap.Int("total", res.Report.Total),
	)
	for _, hook := range m.hooks {
		hook(cloneResult(res))
	}
}
