package workers

import (
	"context"
	"log/slog"
	"sync"
)

// DeliveryWorker is the single consumer context of the sync layer.
//
// Store callbacks fire on store-owned goroutines. Everything that reaches an
// observer (snapshots, terminal failures) is posted here and executed one
// after the other, in posting order, on the worker goroutine.
//
// DeliveryWorker is safe for concurrent use by multiple goroutines.
type DeliveryWorker struct {
	log      *slog.Logger
	queue    chan func()
	stopped  chan struct{}
	stopOnce sync.Once
}

func NewDeliveryWorker(log *slog.Logger, bufferSize int) *DeliveryWorker {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &DeliveryWorker{
		log:     log,
		queue:   make(chan func(), bufferSize),
		stopped: make(chan struct{}),
	}
}

// Post enqueues fn. It blocks while the queue is full and returns false
// once the worker has stopped.
func (w *DeliveryWorker) Post(fn func()) bool {
	select {
	case <-w.stopped:
		return false
	default:
	}
	select {
	case w.queue <- fn:
		return true
	case <-w.stopped:
		return false
	}
}

// Run drains the queue until ctx is done or the worker is stopped. A panicking delivery escapes to
// the supervisor, which restarts Run on the same queue.
func (w *DeliveryWorker) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-w.queue:
			fn()
		case <-ctx.Done():
			w.log.Debug("Context done, stopping snapshot delivery")
			w.Stop()
			return nil
		case <-w.stopped:
			return nil
		}
	}
}

// Backlog reports the deliveries waiting in the queue and its capacity.
func (w *DeliveryWorker) Backlog() (int, int) {
	return len(w.queue), cap(w.queue)
}

// Stop makes every pending and future Post fail fast.
func (w *DeliveryWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopped) })
}
