package formhistory

import (
	"github.com/dshills/formhistory/internal/engine/history"
)

const fieldKey = "value"

// Field tracks the history of a single value of type T. T should be a type
// of the state value model: a primitive, time.Time, []any or map[string]any.
type Field[T any] struct {
	manager *history.Manager
	initial T
}

// NewField creates a Field holding initial.
func NewField[T any](initial T, opts ...history.Option) *Field[T] {
	return &Field[T]{
		manager: history.New(map[string]any{fieldKey: initial}, opts...),
		initial: initial,
	}
}

// Value returns the current value, committing any pending change.
func (f *Field[T]) Value() T {
	return f.value(f.manager.CurrentState())
}

func (f *Field[T]) value(state any) T {
	var zero T
	rec, ok := state.(map[string]any)
	if !ok {
		return zero
	}
	v, ok := rec[fieldKey].(T)
	if !ok {
		return zero
	}
	return v
}

// Set proposes a new value.
func (f *Field[T]) Set(v T) {
	f.manager.Update(map[string]any{fieldKey: v})
}

// Undo reverts the last change and returns the resulting value.
func (f *Field[T]) Undo() (T, bool) {
	state, ok := f.manager.Undo()
	return f.value(state), ok
}

// Redo reapplies the next change and returns the resulting value.
func (f *Field[T]) Redo() (T, bool) {
	state, ok := f.manager.Redo()
	return f.value(state), ok
}

// CanUndo reports whether Undo would succeed.
func (f *Field[T]) CanUndo() bool { return f.manager.CanUndo() }

// CanRedo reports whether Redo would succeed.
func (f *Field[T]) CanRedo() bool { return f.manager.CanRedo() }

// Reset clears the history and proposes the initial value again.
func (f *Field[T]) Reset() {
	f.manager.Clear()
	f.manager.Update(map[string]any{fieldKey: f.initial})
}

// Destroy releases the debounce timer.
func (f *Field[T]) Destroy() {
	f.manager.Destroy()
}
