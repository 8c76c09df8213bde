//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-sync/domain/chat"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// RemoteStore is the hierarchical realtime store the sync layer consumes.
//
// SubscribeSubtree keeps notifying onSnapshot with the ordered children of
// path, first with the current state and then after every change at or
// below path. Callbacks of one listener never overlap and run on a goroutine
// owned by the store. After onError the listener is dead.
type RemoteStore interface {
	SubscribeSubtree(path chat.Path, onSnapshot func(children []chat.Node), onError func(cause error)) (Listener, error)
	WriteValue(ctx context.Context, path chat.Path, value any) error
	// GenerateChildKey returns a key unique under path, sortable by creation time.
	GenerateChildKey(path chat.Path) (string, error)
}

// Listener is the handle of a store subscription. Cancel is idempotent.
type Listener interface {
	Cancel()
}

// Dispatcher marshals deliveries onto the single consumer goroutine.
// Post returns false once the dispatcher is stopped.
type Dispatcher interface {
	Post(fn func()) bool
}

// Authenticator is the identity provider of the client.
type Authenticator interface {
	SignInAnonymously(ctx context.Context) (string, error)
	CurrentUserID() (string, bool)
	SignOut()
}
