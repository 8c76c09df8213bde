package runtime

import (
	"chat-sync/contract"
	"chat-sync/domain/chat"
	"sync"
	"time"
)

// topic is the per-path state of the engine: the single store listener,
// the observers attached to it and the last materialized snapshot.
type topic[T any] struct {
	path      chat.Path
	decode    Decoder[T]
	listener  contract.Listener
	last      *Snapshot[T]
	version   uint64
	scheduled bool
	closed    bool
	observers map[uint64]*Subscription[T]
}

// Registry maps paths to topics. It is the only writer of topic state and
// every method holds its lock for the whole read-modify-write.
type Registry[T any] struct {
	mu     sync.RWMutex
	topics map[chat.Path]*topic[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{topics: make(map[chat.Path]*topic[T])}
}

// attach registers sub on its path. created reports that the topic did not
// exist yet, the caller then owns opening the store listener.
// The decoder of the first observer wins for the lifetime of the topic.
func (r *Registry[T]) attach(sub *Subscription[T], decode Decoder[T]) (t *topic[T], created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.topics[sub.path]
	if !ok {
		t = &topic[T]{
			path:      sub.path,
			decode:    decode,
			observers: make(map[uint64]*Subscription[T]),
		}
		r.topics[sub.path] = t
	}
	t.observers[sub.id] = sub
	return t, !ok
}

// detach removes sub. When it was the last observer the topic is dropped
// and its listener returned so the caller can cancel it outside the lock.
func (r *Registry[T]) detach(sub *Subscription[T]) (contract.Listener, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.topics[sub.path]
	if !ok {
		return nil, false
	}
	if _, member := t.observers[sub.id]; !member {
		return nil, false
	}
	delete(t.observers, sub.id)

	// If no one is left on the path, remove the topic entirely
	if len(t.observers) == 0 {
		t.closed = true
		delete(r.topics, sub.path)
		return t.listener, true
	}
	return nil, false
}

// setListener binds the store listener to t. It returns false when the
// topic was torn down while the listener was being opened.
func (r *Registry[T]) setListener(t *topic[T], listener contract.Listener) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.closed {
		return false
	}
	t.listener = listener
	return true
}

// publish stores items as the newest snapshot of t. It returns true when a
// delivery has to be scheduled, false when one is already pending (it will
// pick this snapshot up) or the topic is gone.
func (r *Registry[T]) publish(t *topic[T], items []T, at time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.closed {
		return false
	}
	t.version++
	t.last = &Snapshot[T]{path: t.path, version: t.version, items: items, at: at}
	if t.scheduled {
		return false
	}
	t.scheduled = true
	return true
}

// drain clears the pending delivery flag and returns what has to be sent.
func (r *Registry[T]) drain(t *topic[T]) (*Snapshot[T], []*Subscription[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.scheduled = false
	return t.last, observersOf(t)
}

// last returns the current snapshot of t, nil before the first notification.
func (r *Registry[T]) last(t *topic[T]) *Snapshot[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t.closed {
		return nil
	}
	return t.last
}

// fail drops t after a store error and returns its observers and listener.
// ok is false when the topic was already gone.
func (r *Registry[T]) fail(t *topic[T]) (observers []*Subscription[T], listener contract.Listener, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.closed {
		return nil, nil, false
	}
	t.closed = true
	if r.topics[t.path] == t {
		delete(r.topics, t.path)
	}
	return observersOf(t), t.listener, true
}

// Listeners counts topics holding an open store listener.
func (r *Registry[T]) Listeners() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, t := range r.topics {
		if t.listener != nil {
			count++
		}
	}
	return count
}

// Observers counts the observers attached to path.
func (r *Registry[T]) Observers(path chat.Path) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.topics[path]; ok {
		return len(t.observers)
	}
	return 0
}

func observersOf[T any](t *topic[T]) []*Subscription[T] {
	res := make([]*Subscription[T], 0, len(t.observers))
	for _, sub := range t.observers {
		res = append(res, sub)
	}
	return res
}
