// Package runtime keeps the local view of the store in sync.
// It owns store listeners, materializes their children into typed
// collections and fans snapshots out to observers. It holds no chat rules.
package runtime

import (
	"chat-sync/contract"
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jpillora/backoff"
	"github.com/samber/lo"
)

// Decoder materializes one raw child node into a record.
type Decoder[T any] func(node chat.Node) (T, error)

// RetryPolicy bounds the retries of a write when the store is unavailable.
type RetryPolicy struct {
	MaxAttempts int
	Min         time.Duration
	Max         time.Duration
	Factor      float64
}

type EngineOptions struct {
	// ReplayLastSnapshot hands the last known snapshot to an observer joining
	// an already synchronized topic instead of waiting for the next change.
	ReplayLastSnapshot bool
	Retry              RetryPolicy
	Now                func() time.Time
}

func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		ReplayLastSnapshot: true,
		Retry:              RetryPolicy{MaxAttempts: 3, Min: 100 * time.Millisecond, Max: 2 * time.Second, Factor: 2},
		Now:                time.Now,
	}
}

// SyncEngine subscribes once per path and fans full snapshots out to every
// observer of that path.
//
// Every store notification re-materializes the whole collection: no diffing.
// Deliveries go through the dispatcher so observers are only ever served
// from the consumer goroutine, never from store callbacks.
type SyncEngine[T any] struct {
	log        *slog.Logger
	store      contract.RemoteStore
	dispatcher contract.Dispatcher
	registry   *Registry[T]
	options    EngineOptions
	nextID     atomic.Uint64
}

func NewSyncEngine[T any](log *slog.Logger, store contract.RemoteStore, dispatcher contract.Dispatcher, options EngineOptions) *SyncEngine[T] {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.Retry.MaxAttempts < 1 {
		options.Retry.MaxAttempts = 1
	}
	return &SyncEngine[T]{
		log:        log,
		store:      store,
		dispatcher: dispatcher,
		registry:   NewRegistry[T](),
		options:    options,
	}
}

// Subscribe attaches a new observer to path.
//
// The first observer opens the store listener, later ones share it. The
// returned subscription has no data until the first snapshot is delivered.
func (e *SyncEngine[T]) Subscribe(path chat.Path, decode Decoder[T]) (*Subscription[T], error) {
	sub := newSubscription(e.nextID.Add(1), path, e.release)
	t, created := e.registry.attach(sub, decode)
	if !created {
		e.log.Debug("Observer joined topic", "path", path.String(), "observers", e.registry.Observers(path))
		if e.options.ReplayLastSnapshot {
			e.dispatcher.Post(func() { e.replay(t, sub) })
		}
		return sub, nil
	}

	listener, err := e.store.SubscribeSubtree(path,
		func(children []chat.Node) { e.onSnapshot(t, children) },
		func(cause error) { e.onError(t, cause) },
	)
	if err != nil {
		e.onError(t, err)
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrSubscription, path, err)
	}
	if !e.registry.setListener(t, listener) {
		// Every observer left while the listener was being opened
		listener.Cancel()
		return sub, nil
	}
	e.log.Debug("Store listener opened", "path", path.String())
	return sub, nil
}

// Write stores value at path, retrying with backoff while the store is unavailable.
func (e *SyncEngine[T]) Write(ctx context.Context, path chat.Path, value any) error {
	policy := e.options.Retry
	b := &backoff.Backoff{Min: policy.Min, Max: policy.Max, Factor: policy.Factor, Jitter: true}
	for attempt := 1; ; attempt++ {
		err := e.store.WriteValue(ctx, path, value)
		if err == nil {
			return nil
		}
		if !stderrors.Is(err, errors.ErrStoreUnavailable) || attempt >= policy.MaxAttempts {
			return fmt.Errorf("%w: %s: %w", errors.ErrWrite, path, err)
		}
		wait := b.Duration()
		e.log.Warn("Store write failed, retrying", "path", path.String(), "attempt", attempt, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s: %w", errors.ErrWrite, path, ctx.Err())
		case <-time.After(wait):
		}
	}
}

// Append writes value under a fresh push key of path and returns the key.
// The key is reserved once, retries reuse it.
func (e *SyncEngine[T]) Append(ctx context.Context, path chat.Path, value any) (string, error) {
	key, err := e.store.GenerateChildKey(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", errors.ErrWrite, path, err)
	}
	child, err := path.Child(key)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", errors.ErrWrite, path, err)
	}
	if err = e.Write(ctx, child, value); err != nil {
		return "", err
	}
	return key, nil
}

// Listeners is the number of store listeners currently open.
func (e *SyncEngine[T]) Listeners() int { return e.registry.Listeners() }

// Observers is the number of subscriptions attached to path.
func (e *SyncEngine[T]) Observers(path chat.Path) int { return e.registry.Observers(path) }

// onSnapshot runs on the store goroutine. Malformed children are skipped,
// they never fail the whole topic.
func (e *SyncEngine[T]) onSnapshot(t *topic[T], children []chat.Node) {
	items := lo.FilterMap(children, func(node chat.Node, _ int) (T, bool) {
		item, err := t.decode(node)
		if err != nil {
			e.log.Warn("Skipping child node", "path", t.path.String(), "key", node.Key, "error", err)
			return item, false
		}
		return item, true
	})
	if !e.registry.publish(t, items, e.options.Now()) {
		return
	}
	if !e.dispatcher.Post(func() { e.fanout(t) }) {
		e.log.Debug("Dispatcher stopped, snapshot not delivered", "path", t.path.String())
	}
}

// onError makes the failure terminal for the topic: observers get their
// stream closed with the cause, the next Subscribe on the path starts over.
func (e *SyncEngine[T]) onError(t *topic[T], cause error) {
	observers, listener, ok := e.registry.fail(t)
	if !ok {
		return
	}
	if listener != nil {
		listener.Cancel()
	}
	err := fmt.Errorf("%w: %s: %w", errors.ErrSubscription, t.path, cause)
	e.log.Error("Store subscription failed", "path", t.path.String(), "observers", len(observers), "error", cause)

	terminate := func() {
		for _, sub := range observers {
			sub.terminate(err)
		}
	}
	if !e.dispatcher.Post(terminate) {
		terminate()
	}
}

// fanout runs on the consumer goroutine. It sends the newest snapshot of t,
// whatever the number of notifications since it was scheduled.
func (e *SyncEngine[T]) fanout(t *topic[T]) {
	snapshot, observers := e.registry.drain(t)
	if snapshot == nil {
		return
	}
	e.log.Debug("Delivering snapshot", "path", t.path.String(), "version", snapshot.version,
		"items", len(snapshot.items), "observers", len(observers))
	for _, sub := range observers {
		sub.offer(*snapshot)
	}
}

func (e *SyncEngine[T]) replay(t *topic[T], sub *Subscription[T]) {
	if snapshot := e.registry.last(t); snapshot != nil {
		sub.offer(*snapshot)
	}
}

func (e *SyncEngine[T]) release(sub *Subscription[T]) {
	listener, last := e.registry.detach(sub)
	if !last {
		return
	}
	if listener != nil {
		listener.Cancel()
	}
	e.log.Debug("Store listener released", "path", sub.path.String())
}
