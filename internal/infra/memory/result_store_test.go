package memory

import (
	"context"
	"testing"
	"time"

	"quiz-session-engine/internal/domain"
)

func TestResultStoreIsIdempotentAndOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	first := domain.Result{Token: "a", UserID: "u1", Status: domain.StatusSubmitted, FinalizedAt: base}
	second := domain.Result{Token: "b", UserID: "u1", Status: domain.StatusExpired, FinalizedAt: base.Add(time.Minute)}
	other := domain.Result{Token: "c", UserID: "u2", FinalizedAt: base}

	for _, r := range []domain.Result{first, second, other} {
		if err := store.SaveResult(ctx, r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	dup := first
	dup.Status = domain.StatusExpired
	_ = store.SaveResult(ctx, dup)

	results, err := store.ListResults(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Token != "b" || results[1].Token != "a" {
		t.Fatalf("expected newest first, got %s,%s", results[0].Token, results[1].Token)
	}
	if results[1].Status != domain.StatusSubmitted {
		t.Fatalf("duplicate save must not overwrite, got %s", results[1].Status)
	}
}
