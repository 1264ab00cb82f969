// Package analytics runs best-effort viewer telemetry off the request path.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
	libsvc "library/internal/domain/services/library"
	"library/internal/metrics"
)

const (
	// DefaultQueueSize bounds pending writes; beyond it new writes are dropped
	DefaultQueueSize = 256

	// DefaultTaskTimeout bounds each individual write
	DefaultTaskTimeout = 5 * time.Second
)

// Operation names used in logs and the failure counter
const (
	opViewCount   = "view_count"
	opLastPage    = "last_page"
	opInteraction = "interaction"
)

type task struct {
	op        string
	contentID string
	ctx       context.Context // Detached from the request's cancellation
	run       func(ctx context.Context) error
}

// Recorder queues analytics writes and executes them on a background worker. Writes
// never block the caller, never see the caller's cancellation and never report errors
// back; failures are logged at Warn and counted.
type Recorder struct {
	router       libraryRepo.ContentRouter
	interactions libraryRepo.InteractionRepository
	metrics      *metrics.Metrics
	logger       *slog.Logger
	timeout      time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan task
	done   chan struct{}
}

var _ libsvc.AnalyticsRecorder = (*Recorder)(nil)

// Option configures a Recorder
type Option func(*Recorder)

// WithTimeout sets the per-write timeout
func WithTimeout(d time.Duration) Option {
	return func(r *Recorder) { r.timeout = d }
}

// WithQueueSize sets how many writes may wait before new ones are dropped
func WithQueueSize(n int) Option {
	return func(r *Recorder) { r.queue = make(chan task, n) }
}

// WithMetrics reports failures and drops to m
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) { r.metrics = m }
}

// NewRecorder starts a recorder with one worker
func NewRecorder(
	router libraryRepo.ContentRouter,
	interactions libraryRepo.InteractionRepository,
	logger *slog.Logger,
	opts ...Option,
) *Recorder {
	r := &Recorder{
		router:       router,
		interactions: interactions,
		logger:       logger,
		timeout:      DefaultTaskTimeout,
		queue:        make(chan task, DefaultQueueSize),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	go r.work()
	return r
}

// IncrementViewCount adds one to the item's view counter and stamps last_viewed_at
func (r *Recorder) IncrementViewCount(ctx context.Context, contentID string) {
	r.enqueue(ctx, task{
		op:        opViewCount,
		contentID: contentID,
		run: func(ctx context.Context) error {
			store, _, err := r.router.Locate(ctx, contentID)
			if err != nil {
				return err
			}
			return store.IncrementViewCount(ctx, contentID)
		},
	})
}

// UpdateLastPage records the page a viewer reached in a PDF
func (r *Recorder) UpdateLastPage(ctx context.Context, contentID string, page int) {
	r.enqueue(ctx, task{
		op:        opLastPage,
		contentID: contentID,
		run: func(ctx context.Context) error {
			store, _, err := r.router.Locate(ctx, contentID)
			if err != nil {
				return err
			}
			return store.UpdateLastPage(ctx, contentID, page)
		},
	})
}

// LogInteraction appends an entry to the interaction log
func (r *Recorder) LogInteraction(ctx context.Context, entry *models.Interaction) {
	if entry == nil {
		return
	}
	e := *entry
	r.enqueue(ctx, task{
		op:        opInteraction,
		contentID: e.ContentID,
		run: func(ctx context.Context) error {
			return r.interactions.Append(ctx, &e)
		},
	})
}

// Close stops accepting writes and waits for queued ones to finish, or for ctx
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) enqueue(ctx context.Context, t task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.drop(t, "recorder closed")
		return
	}

	// Keep request-scoped values but not the request's deadline
	t.ctx = context.WithoutCancel(ctx)

	select {
	case r.queue <- t:
	default:
		r.drop(t, "queue full")
	}
}

func (r *Recorder) work() {
	defer close(r.done)
	for t := range r.queue {
		r.execute(t)
	}
}

func (r *Recorder) execute(t task) {
	ctx, cancel := context.WithTimeout(t.ctx, r.timeout)
	defer cancel()

	err := safeRun(ctx, t.run)
	if err != nil {
		r.logger.Warn("analytics write failed",
			"op", t.op,
			"content_id", t.contentID,
			"error", err,
		)
		r.metrics.TelemetryFailed(t.op)
	}
}

func (r *Recorder) drop(t task, reason string) {
	r.logger.Warn("analytics write dropped",
		"op", t.op,
		"content_id", t.contentID,
		"reason", reason,
	)
	r.metrics.TelemetryDropped()
}

// safeRun keeps a panicking write from taking the worker down
func safeRun(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx)
}
