package memory

import (
	"context"
	"sync"
	"time"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Issued tokens are remembered for the life of the process, so a pruned
// token is never handed out again.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
	issued   map[string]struct{}
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
		issued:   make(map[string]struct{}),
	}
}

func (s *SessionStore) Add(_ context.Context, session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issued[session.Token()]; ok {
		return domain.ErrTokenCollision
	}
	s.issued[session.Token()] = struct{}{}
	s.sessions[session.Token()] = session
	return nil
}

func (s *SessionStore) Get(token string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	return session, ok
}

func (s *SessionStore) DeleteIfFinalized(token string, cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return false
	}
	if session.FinalizedBefore(cutoff) {
		delete(s.sessions, token)
		return true
	}
	return false
}

func (s *SessionStore) Tokens() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tokens := make([]string, 0, len(s.sessions))
	for token := range s.sessions {
		tokens = append(tokens, token)
	}
	return tokens
}
