package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/domain"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Session state (answers, status, deadline) lives in the local map; the
//     per-session mutex in app.Session is the only lock taken on the hot path.
//   - Redis reserves each issued token with SETNX so no two instances sharing
//     the same Redis ever hand out the same token while the reservation lives.
//   - Sharding sessions across instances is done by routing on the token.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Add(ctx context.Context, session *app.Session) error {
	reserved, err := s.client.SetNX(ctx, s.key(session.Token()), session.UserID(), session.TimeLimit()+s.ttl).Result()
	if err != nil {
		return fmt.Errorf("reserve session token: %w", err)
	}
	if !reserved {
		return domain.ErrTokenCollision
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.Token()]; ok {
		return domain.ErrTokenCollision
	}
	s.sessions[session.Token()] = session
	return nil
}

func (s *SessionStore) Get(token string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	return session, ok
}

// DeleteIfFinalized drops the local session. The Redis reservation is left to
// expire so the token stays unusable.
func (s *SessionStore) DeleteIfFinalized(token string, cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok || !session.FinalizedBefore(cutoff) {
		return false
	}
	delete(s.sessions, token)
	return true
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

func (s *SessionStore) key(token string) string {
	return "quiz:session:" + token
}
