package runtime

import (
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"context"
	"sync"
)

// Subscription is one observer of a topic.
//
// Snapshots arrive on a single slot channel: when the observer lags, the
// pending snapshot is replaced by the newer one, there is no backlog. The
// channel is closed on Close or when the topic fails, Err tells which.
type Subscription[T any] struct {
	id      uint64
	path    chat.Path
	ch      chan Snapshot[T]
	release func(*Subscription[T])

	mu     sync.Mutex
	closed bool
	err    error
	seen   uint64

	closeOnce sync.Once
}

func newSubscription[T any](id uint64, path chat.Path, release func(*Subscription[T])) *Subscription[T] {
	return &Subscription[T]{
		id:      id,
		path:    path,
		ch:      make(chan Snapshot[T], 1),
		release: release,
	}
}

func (s *Subscription[T]) Path() chat.Path { return s.path }

func (s *Subscription[T]) Snapshots() <-chan Snapshot[T] { return s.ch }

// Err returns the terminal failure of the topic, nil while the subscription
// is live or after a plain Close.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Next blocks until a snapshot is available, the subscription ends or ctx is done.
func (s *Subscription[T]) Next(ctx context.Context) (Snapshot[T], error) {
	select {
	case snapshot, ok := <-s.ch:
		if !ok {
			if err := s.Err(); err != nil {
				return Snapshot[T]{}, err
			}
			return Snapshot[T]{}, errors.ErrSubscriptionClosed
		}
		return snapshot, nil
	case <-ctx.Done():
		return Snapshot[T]{}, ctx.Err()
	}
}

// Close detaches the observer. Releasing the last observer of a path
// cancels the store listener.
func (s *Subscription[T]) Close() {
	s.closeOnce.Do(func() {
		s.release(s)
		s.terminate(nil)
	})
}

// offer hands snapshot to the observer, replacing a pending one.
// Versions already seen are dropped so a replay never moves it backwards.
func (s *Subscription[T]) offer(snapshot Snapshot[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || snapshot.version <= s.seen {
		return
	}
	s.seen = snapshot.version
	select {
	case s.ch <- snapshot:
		return
	default:
	}
	// Only deliveries write to ch and they hold mu, so after draining the slot is free.
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snapshot
}

func (s *Subscription[T]) terminate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.ch)
}
