package notification

import (
	"context"
	"errors"
	"sync"

	"github.com/phonefeed-api/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrStopped   = errors.New("notification worker stopped")
)

// Worker is an in-process notification queue drained by a fixed pool of
// goroutines. Enqueue never blocks the caller.
type Worker struct {
	deliverer *Deliverer
	queue     chan domain.PushNotification
	wg        sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	stopped bool
}

func NewWorker(d *Deliverer, workers, queueSize int) *Worker {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		deliverer: d,
		queue:     make(chan domain.PushNotification, queueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
	w.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go w.run()
	}
	return w
}

func (w *Worker) run() {
	defer w.wg.Done()
	for n := range w.queue {
		if err := w.deliverer.Deliver(w.ctx, n); err != nil {
			log.Error().Err(err).Str("title", n.Title).Msg("push notification dropped")
		}
	}
}

// Enqueue schedules n for delivery. The request context is not carried over:
// delivery outlives the request that triggered it.
func (w *Worker) Enqueue(_ context.Context, n domain.PushNotification) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	select {
	case w.queue <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new work and waits for queued notifications to drain. When ctx
// expires first, in-flight deliveries are cancelled and ctx.Err() is returned.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		w.cancel()
		return nil
	case <-ctx.Done():
		w.cancel()
		return ctx.Err()
	}
}
