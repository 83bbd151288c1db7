package app_test

import (
	"sync"
	"time"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/infra/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeScheduler records deadline callbacks so tests decide when they fire.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) Schedule(d time.Duration, fn func()) app.Timer {
	t := &fakeTimer{d: d, fn: fn}
	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
	return t
}

func (s *fakeScheduler) last() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[len(s.timers)-1]
}

type fakeTimer struct {
	mu      sync.Mutex
	d       time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// Fire runs the callback as time.AfterFunc would, unless stopped.
func (t *fakeTimer) Fire() {
	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()
	if !stopped {
		t.fn()
	}
}

// FireAnyway runs the callback even if stopped, like a timer that already
// left the runtime queue when Stop was called.
func (t *fakeTimer) FireAnyway() {
	t.fn()
}

func (t *fakeTimer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type hookRecorder struct {
	mu      sync.Mutex
	results []domain.Result
}

func (h *hookRecorder) Hook(r domain.Result) {
	h.mu.Lock()
	h.results = append(h.results, r)
	h.mu.Unlock()
}

func (h *hookRecorder) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.results)
}

type harness struct {
	clock     *fakeClock
	scheduler *fakeScheduler
	hooks     *hookRecorder
	store     *memory.SessionStore
	manager   *app.SessionManager
}

func newHarness(opts ...app.ManagerOption) *harness {
	h := &harness{
		clock:     newFakeClock(),
		scheduler: &fakeScheduler{},
		hooks:     &hookRecorder{},
		store:     memory.NewSessionStore(),
	}
	base := []app.ManagerOption{
		app.WithClock(h.clock.Now),
		app.WithScheduler(h.scheduler.Schedule),
		app.WithFinalizeHook(h.hooks.Hook),
	}
	h.manager = app.NewSessionManager(h.store, append(base, opts...)...)
	return h
}

func twoQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:           "q1",
			Prompt:       "Which keyword declares a goroutine?",
			Options:      []string{"go", "async", "spawn"},
			CorrectIndex: 0,
			Explanation:  "The go statement starts a goroutine.",
			Source:       "https://go.dev/ref/spec#Go_statements",
		},
		{
			ID:           "q2",
			Prompt:       "What does len(nil slice) return?",
			Options:      []string{"panic", "0", "-1"},
			CorrectIndex: 1,
			Explanation:  "A nil slice has length zero.",
			Difficulty:   "easy",
		},
	}
}
