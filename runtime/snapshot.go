package runtime

import (
	"chat-sync/domain/chat"
	"iter"
	"slices"
	"time"
)

// Snapshot is the fully materialized collection of a topic at one point in
// time. It is a value: observers sharing it cannot mutate each other's view,
// items only leave through copying accessors.
type Snapshot[T any] struct {
	path    chat.Path
	version uint64
	items   []T
	at      time.Time
}

func (s Snapshot[T]) Path() chat.Path { return s.path }

// Version increases by one with every store notification of the topic.
func (s Snapshot[T]) Version() uint64 { return s.version }

func (s Snapshot[T]) MaterializedAt() time.Time { return s.at }

func (s Snapshot[T]) Len() int { return len(s.items) }

func (s Snapshot[T]) At(i int) T { return s.items[i] }

// Items returns a copy of the collection in store order.
func (s Snapshot[T]) Items() []T { return slices.Clone(s.items) }

func (s Snapshot[T]) All() iter.Seq2[int, T] { return slices.All(s.items) }
