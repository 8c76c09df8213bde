package storage

import (
	"chat-sync/contract"
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// MemoryStore is a realtime hierarchical store held in memory.
// It backs tests and the client when no database is configured, and
// can simulate a lost connection or a revoked read permission.
type MemoryStore struct {
	mu      sync.RWMutex
	root    *tree
	offline atomic.Bool
	keys    *PushKeyGenerator
	hub     *listenerHub
}

func NewMemoryStore(log *slog.Logger) *MemoryStore {
	return &MemoryStore{
		root: newTree(),
		keys: NewPushKeyGenerator(),
		hub:  newListenerHub(log),
	}
}

func (s *MemoryStore) SubscribeSubtree(path chat.Path, onSnapshot func([]chat.Node), onError func(error)) (contract.Listener, error) {
	return s.hub.subscribe(path, s.children, onSnapshot, onError), nil
}

func (s *MemoryStore) WriteValue(ctx context.Context, path chat.Path, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path.IsRoot() {
		return fmt.Errorf("%w: cannot overwrite the root", errors.ErrInvalidKey)
	}
	if s.offline.Load() {
		return errors.ErrStoreUnavailable
	}

	s.mu.Lock()
	s.root.set(path.Segments(), value)
	s.mu.Unlock()

	s.hub.notify(path)
	return nil
}

func (s *MemoryStore) GenerateChildKey(_ chat.Path) (string, error) {
	return s.keys.Next()
}

// SetOffline makes writes fail with ErrStoreUnavailable until reset.
func (s *MemoryStore) SetOffline(offline bool) {
	s.offline.Store(offline)
}

// Revoke fails every listener at or below path with an access denied cause.
func (s *MemoryStore) Revoke(path chat.Path) {
	s.hub.revoke(path, fmt.Errorf("%w: read %s", errors.ErrAccessDenied, path))
}

// Listeners is the number of live subtree listeners.
func (s *MemoryStore) Listeners() int { return s.hub.count() }

func (s *MemoryStore) Close() {
	s.hub.close()
}

func (s *MemoryStore) children(path chat.Path) ([]chat.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node := s.root.lookup(path.Segments())
	if node == nil {
		return []chat.Node{}, nil
	}
	return node.childNodes(), nil
}
