package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/infra/memory"
)

func TestCollectorTracksSessionLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)
	manager := app.NewSessionManager(memory.NewSessionStore(),
		app.WithObserver(collector),
		app.WithScheduler(func(time.Duration, func()) app.Timer { return time.NewTimer(time.Hour) }),
	)

	ctx := context.Background()
	ticket, err := manager.CreateSession(ctx, app.SessionRequest{
		UserID: "u1",
		Questions: []domain.Question{
			{ID: "q1", Prompt: "2 + 2?", Options: []string{"3", "4"}, CorrectIndex: 1},
		},
		TimeLimitSeconds: 60,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := testutil.ToFloat64(collector.active); got != 1 {
		t.Fatalf("expected 1 active session, got %v", got)
	}

	_ = manager.SubmitAnswer(ctx, ticket.Token, "q1", 1)
	_ = manager.SubmitAnswer(ctx, ticket.Token, "q1", 7)
	if got := testutil.ToFloat64(collector.answers); got != 1 {
		t.Fatalf("expected 1 recorded answer, got %v", got)
	}

	_, _ = manager.Finalize(ctx, ticket.Token, domain.CauseManual)
	_, _ = manager.Finalize(ctx, ticket.Token, domain.CauseTimeout)

	if got := testutil.ToFloat64(collector.finalized.WithLabelValues("submitted", "manual")); got != 1 {
		t.Fatalf("expected 1 manual finalization, got %v", got)
	}
	if got := testutil.ToFloat64(collector.active); got != 0 {
		t.Fatalf("expected no active sessions, got %v", got)
	}
}
