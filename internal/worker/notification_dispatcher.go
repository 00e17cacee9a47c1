package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/polkiloo/pdfshop/internal/adapter/notify"
	"github.com/polkiloo/pdfshop/internal/domain/model"
	"github.com/polkiloo/pdfshop/internal/domain/repository"
)

const (
	defaultMaxRetries     = 4
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 10 * time.Second
)

// RetryPolicy bounds redelivery of a single notification.
type RetryPolicy struct {
	MaxRetries     uint64
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// NotificationDispatcher delivers download notifications off the request
// path with a fixed pool of workers.
type NotificationDispatcher struct {
	notifier notify.Notifier
	events   repository.EventRepository
	workers  int
	retry    RetryPolicy
	logger   *slog.Logger

	jobs    chan model.DownloadNotification
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	started bool
	cancel  context.CancelFunc
}

// NewNotificationDispatcher constructs dispatcher worker pool.
func NewNotificationDispatcher(
	notifier notify.Notifier,
	events repository.EventRepository,
	workers, queueSize int,
	retry RetryPolicy,
	logger *slog.Logger,
) *NotificationDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = defaultInitialBackoff
	}
	if retry.MaxBackoff < retry.InitialBackoff {
		retry.MaxBackoff = max(defaultMaxBackoff, retry.InitialBackoff)
	}
	return &NotificationDispatcher{
		notifier: notifier,
		events:   events,
		workers:  workers,
		retry:    retry,
		logger:   logger,
		jobs:     make(chan model.DownloadNotification, queueSize),
	}
}

// Enqueue schedules n for delivery. It never blocks and reports false when
// the queue is full or the dispatcher is stopped.
func (d *NotificationDispatcher) Enqueue(n model.DownloadNotification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.jobs <- n:
		return true
	default:
		return false
	}
}

// Start launches background delivery.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}
}

// Stop rejects new notifications and waits for queued ones to be delivered.
// When ctx ends first, pending retries are abandoned.
func (d *NotificationDispatcher) Stop(ctx context.Context) {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	cancel := d.cancel
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		d.logger.Warn("notification drain interrupted", slog.Int("pending", len(d.jobs)))
		if cancel != nil {
			cancel()
		}
		<-done
	}
	if cancel != nil {
		cancel()
	}
}

func (d *NotificationDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for n := range d.jobs {
		d.deliver(ctx, n)
	}
}

func (d *NotificationDispatcher) deliver(ctx context.Context, n model.DownloadNotification) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.retry.InitialBackoff
	policy.MaxInterval = d.retry.MaxBackoff
	policy.MaxElapsedTime = 0

	attempt := 0
	err := backoff.RetryNotify(
		func() error {
			attempt++
			return d.notifier.Notify(ctx, n)
		},
		backoff.WithContext(backoff.WithMaxRetries(policy, d.retry.MaxRetries), ctx),
		func(err error, wait time.Duration) {
			d.logger.Warn("notification delivery failed, retrying",
				slog.String("order_id", n.OrderID),
				slog.Int("attempt", attempt),
				slog.Duration("retry_in", wait),
				slog.String("error", err.Error()),
			)
		},
	)
	if err != nil {
		d.logger.Error("notification delivery abandoned",
			slog.String("order_id", n.OrderID),
			slog.Int("attempts", attempt),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := d.events.Append(ctx, n.OrderID, model.EventEmailSent, map[string]any{
		"email":    n.Email,
		"attempts": attempt,
	}); err != nil {
		d.logger.Error("record notification event failed", slog.String("order_id", n.OrderID), slog.String("error", err.Error()))
	}
	d.logger.Info("download notification sent", slog.String("order_id", n.OrderID))
}
