package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"quiz-session-engine/internal/domain"
)

// ResultPublisher announces finalized results to downstream consumers (export, analytics).
type ResultPublisher interface {
	PublishResult(ctx context.Context, result domain.Result) error
}

// Recorder persists and publishes finalized results off the session lock.
// Record is the SessionManager finalize hook; Run drains the queue. Once Run
// has returned, Record persists inline.
type Recorder struct {
	store     ResultStore
	publisher ResultPublisher
	logger    *zap.Logger
	timeout   time.Duration
	queue     chan domain.Result

	mu     sync.Mutex
	closed bool
}

func NewRecorder(store ResultStore, publisher ResultPublisher, logger *zap.Logger, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		store:     store,
		publisher: publisher,
		logger:    logger,
		timeout:   5 * time.Second,
		queue:     make(chan domain.Result, queueSize),
	}
}

// Record enqueues a result without blocking.
func (r *Recorder) Record(result domain.Result) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.persist(context.Background(), result)
		return
	}
	select {
	case r.queue <- result:
		r.mu.Unlock()
	default:
		r.mu.Unlock()
		r.logger.Warn("recorder queue full, persisting inline")
		go r.persist(context.Background(), result)
	}
}

// Run processes queued results until ctx is done, then drains what is left.
func (r *Recorder) Run(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for {
		select {
		case result := <-r.queue:
			r.persist(base, result)
		case <-ctx.Done():
			// nothing is enqueued after closed is set
			r.mu.Lock()
			r.closed = true
			r.mu.Unlock()
			for {
				select {
				case result := <-r.queue:
					r.persist(base, result)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) persist(ctx context.Context, result domain.Result) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.store.SaveResult(ctx, result); err != nil {
		r.logger.Error("save result failed", zap.String("user_id", result.UserID), zap.Error(err))
	}
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishResult(ctx, result); err != nil {
		r.logger.Error("publish result failed", zap.String("user_id", result.UserID), zap.Error(err))
	}
}
