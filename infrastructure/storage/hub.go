package storage

import (
	"chat-sync/contract"
	"chat-sync/domain/chat"
	"log/slog"
	"sync"
)

type readFunc func(path chat.Path) ([]chat.Node, error)

// listenerHub keeps the subtree listeners of a store and wakes them up
// after writes. Each listener owns a goroutine: notifications are
// coalesced, every wake-up reads the current children, so a listener
// always reports the latest state and never overlaps with itself.
type listenerHub struct {
	log       *slog.Logger
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]*subtreeListener
}

func newListenerHub(log *slog.Logger) *listenerHub {
	return &listenerHub{log: log, listeners: make(map[uint64]*subtreeListener)}
}

type subtreeListener struct {
	id         uint64
	path       chat.Path
	read       readFunc
	onSnapshot func([]chat.Node)
	onError    func(error)
	dirty      chan struct{}
	failure    chan error
	done       chan struct{}
	once       sync.Once
	remove     func(id uint64)
}

func (h *listenerHub) subscribe(path chat.Path, read readFunc, onSnapshot func([]chat.Node), onError func(error)) contract.Listener {
	h.mu.Lock()
	h.nextID++
	l := &subtreeListener{
		id:         h.nextID,
		path:       path,
		read:       read,
		onSnapshot: onSnapshot,
		onError:    onError,
		dirty:      make(chan struct{}, 1),
		failure:    make(chan error, 1),
		done:       make(chan struct{}),
		remove:     h.remove,
	}
	h.listeners[l.id] = l
	h.mu.Unlock()

	// The initial snapshot goes through the same path as changes
	l.touch()
	go l.run()
	h.log.Debug("Subtree listener registered", "path", path.String(), "id", l.id)
	return l
}

// notify wakes up every listener whose subtree contains or sits below path.
func (h *listenerHub) notify(path chat.Path) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, l := range h.listeners {
		if l.path.Related(path) {
			l.touch()
		}
	}
}

// revoke fails every listener at or below path.
func (h *listenerHub) revoke(path chat.Path, cause error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, l := range h.listeners {
		if path.Contains(l.path) {
			select {
			case l.failure <- cause:
			default:
			}
		}
	}
}

func (h *listenerHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

func (h *listenerHub) close() {
	h.mu.Lock()
	listeners := make([]*subtreeListener, 0, len(h.listeners))
	for _, l := range h.listeners {
		listeners = append(listeners, l)
	}
	h.mu.Unlock()
	for _, l := range listeners {
		l.Cancel()
	}
}

func (h *listenerHub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.listeners, id)
}

func (l *subtreeListener) Cancel() {
	l.once.Do(func() {
		close(l.done)
		l.remove(l.id)
	})
}

func (l *subtreeListener) touch() {
	select {
	case l.dirty <- struct{}{}:
	default:
	}
}

func (l *subtreeListener) cancelled() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

func (l *subtreeListener) run() {
	for {
		select {
		case <-l.done:
			return
		case cause := <-l.failure:
			l.fail(cause)
			return
		case <-l.dirty:
			children, err := l.read(l.path)
			if err != nil {
				l.fail(err)
				return
			}
			if l.cancelled() {
				return
			}
			l.onSnapshot(children)
		}
	}
}

func (l *subtreeListener) fail(cause error) {
	if l.cancelled() {
		return
	}
	l.Cancel()
	l.onError(cause)
}
