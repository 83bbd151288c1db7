package app

import (
	"errors"
	"sync"
	"time"
)

// ErrAlreadyStarted is returned when Start is called twice on the same tracker.
var ErrAlreadyStarted = errors.New("deadline tracker already started")

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d elapses.
type Scheduler func(d time.Duration, fn func()) Timer

// AfterFunc is the production Scheduler backed by time.AfterFunc.
func AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// DeadlineTracker counts down a fixed time limit from a start instant and
// fires a single expiry notification unless cancelled first.
type DeadlineTracker struct {
	schedule Scheduler

	mu        sync.Mutex
	startedAt time.Time
	limit     time.Duration
	timer     Timer
	started   bool
	fired     bool
	cancelled bool
}

func NewDeadlineTracker(schedule Scheduler) *DeadlineTracker {
	if schedule == nil {
		schedule = AfterFunc
	}
	return &DeadlineTracker{schedule: schedule}
}

// Start arms the tracker. onExpire runs at most once, on the scheduler's goroutine.
// A tracker cancelled before Start records the limit but never schedules.
func (d *DeadlineTracker) Start(startedAt time.Time, limit time.Duration, onExpire func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return ErrAlreadyStarted
	}
	d.started = true
	d.startedAt = startedAt
	d.limit = limit
	if d.cancelled {
		return nil
	}

	d.timer = d.schedule(limit, func() {
		d.mu.Lock()
		if d.cancelled || d.fired {
			d.mu.Unlock()
			return
		}
		d.fired = true
		d.mu.Unlock()
		onExpire()
	})
	return nil
}

// Cancel prevents a pending expiry from firing. Calling it after expiry is a no-op.
func (d *DeadlineTracker) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fired || d.cancelled {
		return
	}
	d.cancelled = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Fired reports whether the expiry notification was delivered.
func (d *DeadlineTracker) Fired() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fired
}

// RemainingSeconds returns the whole seconds left at now, clamped to [0, limit].
func (d *DeadlineTracker) RemainingSeconds(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	limitSeconds := int(d.limit / time.Second)
	elapsed := now.Sub(d.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := limitSeconds - int(elapsed/time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether the time limit has fully elapsed at now.
func (d *DeadlineTracker) Expired(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started && !now.Before(d.startedAt.Add(d.limit))
}

// ExpiresAt returns the scheduled expiry instant.
func (d *DeadlineTracker) ExpiresAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.startedAt.Add(d.limit)
}
