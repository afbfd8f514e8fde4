// Package history provides undo/redo for structured state values.
//
// Instead of storing full copies, the history records the incremental patch
// between successive committed states (see package diff). Key concepts:
//
// # Snapshots
//
// A Snapshot is one undoable step: the patch from the previous committed state
// to the new one, plus an id, a timestamp and optional metadata. Snapshots are
// never modified after creation.
//
// # Manager
//
// The Manager owns the snapshot stack, the committed state and the debounce
// timer:
//
//	m := history.New(map[string]any{"title": ""},
//	    history.WithMaxHistory(100),
//	    history.WithDebounce(300*time.Millisecond),
//	    history.WithExcludeFields("password", "meta.*"),
//	)
//	defer m.Destroy()
//
//	m.Update(next)              // debounced, bursts collapse into one step
//	m.Snapshot(next)            // committed immediately
//
//	state, ok := m.Undo()       // ok is false when there is nothing to undo
//	state, ok = m.Redo()
//	state, ok = m.JumpTo(0)
//
// Committing a new step while positioned in the middle of the stack discards
// the redo entries, unless branching is enabled, in which case they are kept
// and stay reachable from their parent step.
//
// # Grouping
//
// Several updates can be committed as a single undo unit:
//
//	defer m.GroupScope("Paste rows").End()
//
// # Concurrency
//
// A Manager is meant to be driven by a single owner. Operations are serialized
// internally because the debounce timer settles on its own goroutine. Observer
// callbacks run after the internal lock is released, so they may call back
// into the Manager.
package history
