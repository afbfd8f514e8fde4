package formhistory

import (
	"maps"
	"slices"
	"sync"

	"github.com/dshills/formhistory/internal/engine/history"
)

// ChangeType identifies what moved the state.
type ChangeType int

const (
	// ChangeSnapshot indicates a new snapshot was committed.
	ChangeSnapshot ChangeType = iota

	// ChangeUndo indicates a snapshot was undone.
	ChangeUndo

	// ChangeRedo indicates a snapshot was redone.
	ChangeRedo

	// ChangeJump indicates a jump to another history position.
	ChangeJump
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSnapshot:
		return "snapshot"
	case ChangeUndo:
		return "undo"
	case ChangeRedo:
		return "redo"
	case ChangeJump:
		return "jump"
	default:
		return "unknown"
	}
}

// Change is delivered to listeners after the state moved.
type Change struct {
	Type ChangeType

	// State is a copy of the committed state after the change.
	State any

	// Snapshot is the snapshot committed, undone or redone. Nil for jumps.
	Snapshot *history.Snapshot

	// Position is the history position after the change.
	Position int
}

// Listener is called when the state changes.
type Listener func(change Change)

// Subscription represents an active listener.
type Subscription struct {
	id       uint64
	notifier *notifier
}

// Unsubscribe removes the listener. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// notifier is the listener registry of a History.
type notifier struct {
	mu        sync.RWMutex
	listeners map[uint64]Listener
	nextID    uint64
}

func newNotifier() *notifier {
	return &notifier{listeners: make(map[uint64]Listener)}
}

func (n *notifier) subscribe(l Listener) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.listeners[id] = l

	return &Subscription{id: id, notifier: n}
}

func (n *notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.listeners, id)
}

func (n *notifier) count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

func (n *notifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	clear(n.listeners)
}

// notify calls every listener in subscription order. The registry lock is
// not held during the calls, so listeners may subscribe or unsubscribe.
func (n *notifier) notify(change Change) {
	n.mu.RLock()
	ids := slices.Sorted(maps.Keys(n.listeners))
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, n.listeners[id])
	}
	n.mu.RUnlock()

	for _, l := range listeners {
		l(change)
	}
}
