package storage

import (
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recorder collects what a subtree listener reports.
type recorder struct {
	mu        sync.Mutex
	snapshots [][]chat.Node
	err       error
}

func (r *recorder) onSnapshot(children []chat.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, children)
}

func (r *recorder) onError(cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = cause
}

func (r *recorder) last() []chat.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return nil
	}
	return r.snapshots[len(r.snapshots)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func (r *recorder) failure() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func keysOf(nodes []chat.Node) []string {
	keys := make([]string, 0, len(nodes))
	for _, node := range nodes {
		keys = append(keys, node.Key)
	}
	return keys
}

func TestMemoryStore_Initial_Snapshot_Of_Empty_Path(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(slog.Default())
	defer store.Close()
	rec := &recorder{}

	// When subscribing to a path that holds nothing
	listener, err := store.SubscribeSubtree("general", rec.onSnapshot, rec.onError)
	req.NoError(err)
	defer listener.Cancel()

	// Then an empty snapshot is reported
	req.Eventually(func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	req.Empty(rec.last())
	req.NotNil(rec.last())
}

func TestMemoryStore_Children_Are_Sorted_By_Key(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore(slog.Default())
	defer store.Close()

	// Given groups written out of order
	for _, name := range []string{"zeta", "alpha", "mid"} {
		path, err := chat.GroupPath(name)
		req.NoError(err)
		req.NoError(store.WriteValue(ctx, path, true))
	}
	rec := &recorder{}

	// When subscribing to the root
	listener, err := store.SubscribeSubtree(chat.Root, rec.onSnapshot, rec.onError)
	req.NoError(err)
	defer listener.Cancel()

	// Then children come in key order
	req.Eventually(func() bool { return rec.count() >= 1 }, time.Second, 5*time.Millisecond)
	req.Equal([]string{"alpha", "mid", "zeta"}, keysOf(rec.last()))
}

func TestMemoryStore_Notifies_Ancestors_Of_A_Write(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore(slog.Default())
	defer store.Close()
	root, messages := &recorder{}, &recorder{}

	rootListener, err := store.SubscribeSubtree(chat.Root, root.onSnapshot, root.onError)
	req.NoError(err)
	defer rootListener.Cancel()
	messagesListener, err := store.SubscribeSubtree("general", messages.onSnapshot, messages.onError)
	req.NoError(err)
	defer messagesListener.Cancel()

	// When a message is written below the group
	key, err := store.GenerateChildKey("general")
	req.NoError(err)
	path, err := chat.Path("general").Child(key)
	req.NoError(err)
	req.NoError(store.WriteValue(ctx, path, chat.NewMessage("u1", "hi", time.UnixMilli(1000)).Value()))

	// Then both the group and the root listeners see it
	req.Eventually(func() bool { return len(messages.last()) == 1 }, time.Second, 5*time.Millisecond)
	req.Eventually(func() bool { return len(root.last()) == 1 }, time.Second, 5*time.Millisecond)
	req.Equal(key, messages.last()[0].Key)
	req.Equal("general", root.last()[0].Key)
}

func TestMemoryStore_Writing_A_Group_Keeps_Its_Messages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore(slog.Default())
	defer store.Close()

	// Given a group with one message
	req.NoError(store.WriteValue(ctx, "general", true))
	req.NoError(store.WriteValue(ctx, "general/m1", map[string]any{"text": "hi"}))

	// When the group is written again
	req.NoError(store.WriteValue(ctx, "general", true))

	// Then the message survives
	children, err := store.children("general")
	req.NoError(err)
	req.Equal([]string{"m1"}, keysOf(children))
}

func TestMemoryStore_Values_Are_Copied(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore(slog.Default())
	defer store.Close()

	value := map[string]any{"text": "hi"}
	req.NoError(store.WriteValue(ctx, "general/m1", value))

	// When the caller mutates what it wrote
	value["text"] = "changed"

	// Then the store is not affected
	children, err := store.children("general")
	req.NoError(err)
	req.Equal(map[string]any{"text": "hi"}, children[0].Value)
}

func TestMemoryStore_Offline_Write_Fails(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(slog.Default())
	defer store.Close()

	// Given a store that lost its connection
	store.SetOffline(true)

	// Then writes are rejected as unavailable
	err := store.WriteValue(context.Background(), "general", true)
	req.ErrorIs(err, errors.ErrStoreUnavailable)

	// And accepted again once back online
	store.SetOffline(false)
	req.NoError(store.WriteValue(context.Background(), "general", true))
}

func TestMemoryStore_Rejects_Root_Write(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(slog.Default())
	defer store.Close()

	err := store.WriteValue(context.Background(), chat.Root, true)
	req.ErrorIs(err, errors.ErrInvalidKey)
}

func TestMemoryStore_Revoke_Fails_Listeners_Below_Path(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(slog.Default())
	defer store.Close()
	general, random := &recorder{}, &recorder{}

	generalListener, err := store.SubscribeSubtree("general", general.onSnapshot, general.onError)
	req.NoError(err)
	defer generalListener.Cancel()
	randomListener, err := store.SubscribeSubtree("random", random.onSnapshot, random.onError)
	req.NoError(err)
	defer randomListener.Cancel()
	req.Eventually(func() bool { return store.Listeners() == 2 }, time.Second, 5*time.Millisecond)

	// When read access to one group is revoked
	store.Revoke("general")

	// Then only its listener fails and is removed
	req.Eventually(func() bool { return general.failure() != nil }, time.Second, 5*time.Millisecond)
	req.True(stderrors.Is(general.failure(), errors.ErrAccessDenied))
	req.Eventually(func() bool { return store.Listeners() == 1 }, time.Second, 5*time.Millisecond)
	req.NoError(random.failure())
}

func TestMemoryStore_Cancel_Stops_Notifications(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore(slog.Default())
	defer store.Close()
	rec := &recorder{}

	listener, err := store.SubscribeSubtree("general", rec.onSnapshot, rec.onError)
	req.NoError(err)
	req.Eventually(func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	// When the listener is cancelled twice
	listener.Cancel()
	listener.Cancel()

	// Then later writes are not reported
	req.NoError(store.WriteValue(ctx, "general/m1", map[string]any{"text": "hi"}))
	req.Never(func() bool { return rec.count() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
	req.Zero(store.Listeners())
}
