package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	manager := app.NewSessionManager(store,
		app.WithClock(func() time.Time { return now }),
		app.WithScheduler(func(time.Duration, func()) app.Timer { return noopTimer{} }),
		app.WithTokenSource(func() string { return "tok-1" }),
	)

	ticket, err := manager.CreateSession(ctx, app.SessionRequest{
		UserID:           "u1",
		Questions:        sampleQuiz().Questions,
		TimeLimitSeconds: 60,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := store.Get(ticket.Token); !ok {
		t.Fatalf("expected session present")
	}
	if len(store.Tokens()) != 1 {
		t.Fatalf("expected one token, got %v", store.Tokens())
	}

	if store.DeleteIfFinalized(ticket.Token, now.Add(time.Hour)) {
		t.Fatalf("active session must not be deleted")
	}

	if _, err := manager.Finalize(ctx, ticket.Token, domain.CauseManual); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if store.DeleteIfFinalized(ticket.Token, now) {
		t.Fatalf("session finalized at cutoff must be kept")
	}
	if !store.DeleteIfFinalized(ticket.Token, now.Add(time.Second)) {
		t.Fatalf("expected finalized session removed")
	}
	if _, ok := store.Get(ticket.Token); ok {
		t.Fatalf("expected session gone")
	}
}

func TestSessionStoreRejectsDuplicateToken(t *testing.T) {
	store := NewSessionStore()
	manager := app.NewSessionManager(store,
		app.WithScheduler(func(time.Duration, func()) app.Timer { return noopTimer{} }),
		app.WithTokenSource(func() string { return "same" }),
	)
	req := app.SessionRequest{UserID: "u1", Questions: sampleQuiz().Questions, TimeLimitSeconds: 60}

	if _, err := manager.CreateSession(context.Background(), req); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := manager.CreateSession(context.Background(), req); !errors.Is(err, domain.ErrTokenCollision) {
		t.Fatalf("expected token collision, got %v", err)
	}
}

func TestSessionStoreNeverReissuesPrunedToken(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	manager := app.NewSessionManager(store,
		app.WithClock(func() time.Time { return now }),
		app.WithScheduler(func(time.Duration, func()) app.Timer { return noopTimer{} }),
		app.WithTokenSource(func() string { return "same" }),
	)
	req := app.SessionRequest{UserID: "u1", Questions: sampleQuiz().Questions, TimeLimitSeconds: 60}

	ticket, err := manager.CreateSession(ctx, req)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := manager.Finalize(ctx, ticket.Token, domain.CauseManual); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	now = now.Add(time.Hour)
	if pruned := manager.Prune(time.Minute); pruned != 1 {
		t.Fatalf("expected one pruned session, got %d", pruned)
	}

	if _, err := manager.CreateSession(ctx, req); !errors.Is(err, domain.ErrTokenCollision) {
		t.Fatalf("expected pruned token to stay reserved, got %v", err)
	}
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }
