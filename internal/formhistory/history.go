package formhistory

import (
	"github.com/dshills/formhistory/internal/engine/history"
)

// History is a Manager plus a subscriber list.
type History struct {
	manager  *history.Manager
	notifier *notifier
}

// New creates a History over initial. Observer options such as
// history.WithOnSnapshot keep working; subscribers are notified after them.
func New(initial any, opts ...history.Option) *History {
	h := &History{notifier: newNotifier()}

	wrapped := append([]history.Option{}, opts...)
	wrapped = append(wrapped,
		history.WithOnSnapshot(func(s *history.Snapshot) { h.publish(ChangeSnapshot, s) }),
		history.WithOnUndo(func(s *history.Snapshot) { h.publish(ChangeUndo, s) }),
		history.WithOnRedo(func(s *history.Snapshot) { h.publish(ChangeRedo, s) }),
		history.WithOnJump(func(int) { h.publish(ChangeJump, nil) }),
	)

	h.manager = history.New(initial, wrapped...)
	return h
}

func (h *History) publish(t ChangeType, snap *history.Snapshot) {
	if h.notifier.count() == 0 {
		return
	}
	h.notifier.notify(Change{
		Type:     t,
		State:    h.manager.Committed(),
		Snapshot: snap,
		Position: h.manager.Position(),
	})
}

// Manager returns the underlying Manager.
func (h *History) Manager() *history.Manager {
	return h.manager
}

// State returns the current state, committing any pending update.
func (h *History) State() any {
	return h.manager.CurrentState()
}

// Update proposes a new state. It is recorded once the debounce window
// passes without further updates.
func (h *History) Update(state any, meta ...history.Metadata) {
	h.manager.Update(state, meta...)
}

// UpdateFunc derives the next state from the current one.
func (h *History) UpdateFunc(fn func(prev any) any, meta ...history.Metadata) {
	h.manager.Update(fn(h.manager.CurrentState()), meta...)
}

// Snapshot records the current state immediately.
func (h *History) Snapshot(meta ...history.Metadata) {
	h.manager.Snapshot(h.manager.CurrentState(), meta...)
}

// Undo reverts the last change.
func (h *History) Undo() (any, bool) {
	return h.manager.Undo()
}

// Redo reapplies the next change.
func (h *History) Redo() (any, bool) {
	return h.manager.Redo()
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool {
	return h.manager.CanUndo()
}

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool {
	return h.manager.CanRedo()
}

// Pause stops recording.
func (h *History) Pause() {
	h.manager.Pause()
}

// Resume restarts recording.
func (h *History) Resume() {
	h.manager.Resume()
}

// Clear drops all history and keeps the current state.
func (h *History) Clear() {
	h.manager.Clear()
}

// JumpTo moves to a history position; -1 is the initial state.
func (h *History) JumpTo(position int) (any, bool) {
	return h.manager.JumpTo(position)
}

// Info returns a point-in-time view of the history.
func (h *History) Info() history.Info {
	return h.manager.Info()
}

// Subscribe registers a listener for snapshot, undo, redo and jump changes.
func (h *History) Subscribe(l Listener) *Subscription {
	return h.notifier.subscribe(l)
}

// Destroy stops the debounce timer, clears the history and drops every
// subscriber.
func (h *History) Destroy() {
	h.manager.Destroy()
	h.notifier.reset()
}
