package storage

import (
	"chat-sync/contract"
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const nodePrefix = "node:"

// BadgerStore persists the namespace in BadgerDB.
//
// Every node value lives under "node:{path}", e.g. "node:/general/01J...".
// Badger iterates keys lexicographically, so a prefix scan returns the
// children of a path already ordered by key, push keys in creation order.
// Listeners are woken up after each committed write of this store.
type BadgerStore struct {
	db   *badger.DB
	log  *slog.Logger
	keys *PushKeyGenerator
	hub  *listenerHub
}

func NewBadgerStore(db *badger.DB, log *slog.Logger) *BadgerStore {
	return &BadgerStore{
		db:   db,
		log:  log,
		keys: NewPushKeyGenerator(),
		hub:  newListenerHub(log),
	}
}

func (s *BadgerStore) SubscribeSubtree(path chat.Path, onSnapshot func([]chat.Node), onError func(error)) (contract.Listener, error) {
	return s.hub.subscribe(path, s.children, onSnapshot, onError), nil
}

func (s *BadgerStore) WriteValue(ctx context.Context, path chat.Path, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path.IsRoot() {
		return fmt.Errorf("%w: cannot overwrite the root", errors.ErrInvalidKey)
	}
	data, err := encodeValue(value)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(nodeKey(path), data)
	})
	if err != nil {
		if err == badger.ErrDBClosed {
			return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
		}
		return err
	}
	s.hub.notify(path)
	return nil
}

func (s *BadgerStore) GenerateChildKey(_ chat.Path) (string, error) {
	return s.keys.Next()
}

// Listeners is the number of live subtree listeners.
func (s *BadgerStore) Listeners() int { return s.hub.count() }

// Close cancels the listeners. The database is owned by the caller.
func (s *BadgerStore) Close() {
	s.hub.close()
}

// children rebuilds the subtree of path from a prefix scan.
func (s *BadgerStore) children(path chat.Path) ([]chat.Node, error) {
	subtree := newTree()
	base := len(subtreePrefix(path)) - len(nodePrefix)
	err := Scan(s.db, path, func(key string, value any, err error) {
		if err != nil {
			// One unreadable node must not hide its siblings
			s.log.Warn("Unreadable node value", "key", key, "error", err)
		}
		subtree.set(strings.Split(key[base:], "/"), value)
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return subtree.childNodes(), nil
}

// Scan calls fn, in key order, for every node strictly below path.
// Keys are absolute paths such as "/general/01J...". A value that cannot
// be decoded is reported through err and the scan goes on.
func Scan(db *badger.DB, path chat.Path, fn func(key string, value any, err error)) error {
	prefix := subtreePrefix(path)
	return db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key()[len(nodePrefix):])
			err := item.Value(func(data []byte) error {
				value, err := decodeValue(data)
				fn(key, value, err)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func nodeKey(path chat.Path) []byte {
	return []byte(nodePrefix + path.String())
}

func subtreePrefix(path chat.Path) []byte {
	if path.IsRoot() {
		return []byte(nodePrefix + "/")
	}
	return []byte(nodePrefix + path.String() + "/")
}
