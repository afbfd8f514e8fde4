package history

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dshills/formhistory/internal/engine/diff"
)

type eventKind uint8

const (
	eventSnapshot eventKind = iota
	eventUndo
	eventRedo
	eventClear
	eventJump
)

// event is an observer notification queued while the lock is held.
type event struct {
	kind     eventKind
	snap     *Snapshot
	position int
}

// Manager records undoable snapshots of a state value.
type Manager struct {
	mu sync.Mutex

	cfg     Config
	matcher *diff.Matcher
	ids     IDSource
	now     func() time.Time
	logger  *slog.Logger

	stack   stack
	current any

	// Debounced state not yet committed.
	pending     any
	pendingMeta Metadata
	hasPending  bool
	debounce    debouncer

	paused bool

	// Grouping state
	grouping  bool
	groupName string

	// Observers
	onSnapshot []SnapshotFunc
	onUndo     []SnapshotFunc
	onRedo     []SnapshotFunc
	onClear    []func()
	onJump     []JumpFunc

	events []event
}

// New creates a Manager whose committed state is a copy of initial.
func New(initial any, opts ...Option) *Manager {
	m := &Manager{
		cfg:     DefaultConfig(),
		ids:     NewUUIDSource(),
		now:     time.Now,
		logger:  slog.New(slog.DiscardHandler),
		stack:   newStack(),
		current: diff.Clone(initial),
		debounce: debouncer{
			sched: RealScheduler(),
		},
	}

	for _, opt := range opts {
		opt(m)
	}

	m.debounce.delay = m.cfg.Debounce
	m.matcher = diff.NewMatcher(m.cfg.ExcludeFields)
	return m
}

// Config returns the effective recording policy.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.cfg
	c.ExcludeFields = m.matcher.Patterns()
	return c
}

// run executes fn under the lock, then delivers the events it queued.
func (m *Manager) run(fn func()) {
	m.mu.Lock()
	fn()
	events := m.events
	m.events = nil
	m.mu.Unlock()

	m.dispatch(events)
}

func (m *Manager) emit(e event) {
	m.events = append(m.events, e)
}

func (m *Manager) dispatch(events []event) {
	for _, e := range events {
		switch e.kind {
		case eventSnapshot:
			for _, fn := range m.onSnapshot {
				fn(e.snap)
			}
		case eventUndo:
			for _, fn := range m.onUndo {
				fn(e.snap)
			}
		case eventRedo:
			for _, fn := range m.onRedo {
				fn(e.snap)
			}
		case eventClear:
			for _, fn := range m.onClear {
				fn()
			}
		case eventJump:
			for _, fn := range m.onJump {
				fn(e.position)
			}
		}
	}
}

// Update proposes a new state.
//
// While paused the state is adopted immediately without recording anything.
// Otherwise it becomes the pending state and the debounce timer restarts; when
// the timer settles, the last pending state of the burst is committed with its
// metadata. Inside a group the pending state waits for EndGroup instead.
func (m *Manager) Update(state any, meta ...Metadata) {
	m.run(func() {
		if m.paused {
			m.current = diff.Clone(state)
			return
		}

		m.pending = diff.Clone(state)
		m.pendingMeta = mergeMetadata(meta...)
		m.hasPending = true

		if m.grouping {
			return
		}
		m.debounce.schedule(m.settle)
	})
}

// settle commits the pending state when the debounce timer fires.
func (m *Manager) settle(seq uint64) {
	m.run(func() {
		if !m.debounce.claim(seq) {
			return
		}
		m.commitPendingLocked()
	})
}

// Snapshot commits state immediately, after flushing any pending update.
// Inside a group it is folded into the group like Update.
func (m *Manager) Snapshot(state any, meta ...Metadata) {
	m.run(func() {
		if m.grouping {
			m.pending = diff.Clone(state)
			m.pendingMeta = mergeMetadata(meta...)
			m.hasPending = true
			return
		}
		m.flushLocked()
		m.commitLocked(diff.Clone(state), mergeMetadata(meta...))
	})
}

// flushLocked commits the pending state if its debounce timer is running.
func (m *Manager) flushLocked() {
	if !m.debounce.active() {
		return
	}
	m.debounce.cancel()
	m.commitPendingLocked()
}

func (m *Manager) commitPendingLocked() {
	if !m.hasPending {
		return
	}
	state, meta := m.pending, m.pendingMeta
	m.dropPendingLocked()
	m.commitLocked(state, meta)
}

func (m *Manager) dropPendingLocked() {
	m.pending = nil
	m.pendingMeta = Metadata{}
	m.hasPending = false
}

// commitLocked records the change from the committed state to candidate.
// Nothing is recorded when every difference is excluded or there is none.
func (m *Manager) commitLocked(candidate any, meta Metadata) {
	patch := diff.CreatePatchMatching(m.current, candidate, m.matcher)
	if patch.Empty() {
		m.logger.Debug("no changes to record")
		return
	}

	meta.AffectedFields = patch.Paths()
	snap := &Snapshot{
		ID:        m.ids.NextID(),
		Timestamp: m.now(),
		Metadata:  meta,
		patch:     patch,
	}

	m.stack.push(snap, m.cfg.EnableBranching)
	if evicted := m.stack.evict(m.cfg.MaxHistory); evicted > 0 {
		m.logger.Debug("evicted oldest snapshots", "count", evicted, "max", m.cfg.MaxHistory)
	}
	m.current = candidate

	m.logger.Debug("snapshot committed",
		"id", snap.ID,
		"fields", meta.AffectedFields,
		"position", m.stack.position,
		"size", m.stack.len(),
	)
	m.emit(event{kind: eventSnapshot, snap: snap})
}

// reverse returns the inverse of a stored patch.
func (m *Manager) reverse(snap *Snapshot) diff.Patch {
	inv, err := snap.patch.Reverse()
	if err != nil {
		m.logger.Warn("snapshot cannot be reversed", "id", snap.ID, "error", err)
		return diff.ReversePatch(snap.patch)
	}
	return inv
}

// Undo reverts the most recent applied snapshot and returns the resulting
// state. It returns false when there is nothing to undo.
func (m *Manager) Undo() (state any, ok bool) {
	m.run(func() {
		if !m.stack.canUndo() {
			return
		}
		m.flushLocked()

		snap, _ := m.stack.undo()
		m.current = diff.ApplyPatch(m.current, m.reverse(snap))

		m.logger.Debug("undo", "id", snap.ID, "position", m.stack.position)
		m.emit(event{kind: eventUndo, snap: snap})
		state, ok = diff.Clone(m.current), true
	})
	return state, ok
}

// Redo reapplies the next snapshot and returns the resulting state. It
// returns false when there is nothing to redo.
func (m *Manager) Redo() (state any, ok bool) {
	m.run(func() {
		snap, moved := m.stack.redo()
		if !moved {
			return
		}
		m.current = diff.ApplyPatch(m.current, snap.patch)

		m.logger.Debug("redo", "id", snap.ID, "position", m.stack.position)
		m.emit(event{kind: eventRedo, snap: snap})
		state, ok = diff.Clone(m.current), true
	})
	return state, ok
}

// JumpTo moves to an arbitrary history position, where -1 is the initial
// state, and returns the state there. It returns false if the position is
// outside [-1, Size()-1].
//
// The state is rebuilt by undoing every applied snapshot back to the initial
// state and replaying forward to the target.
func (m *Manager) JumpTo(target int) (state any, ok bool) {
	m.run(func() {
		if !m.validPositionLocked(target) {
			return
		}
		m.flushLocked()
		// Flushing may have truncated the stack.
		if !m.validPositionLocked(target) {
			return
		}
		m.jumpLocked(target)
		state, ok = diff.Clone(m.current), true
	})
	return state, ok
}

func (m *Manager) jumpLocked(target int) {
	rebuilt := m.current
	for m.stack.canUndo() {
		snap, _ := m.stack.undo()
		rebuilt = diff.ApplyPatch(rebuilt, m.reverse(snap))
	}
	for _, i := range m.stack.lineage(target) {
		rebuilt = diff.ApplyPatch(rebuilt, m.stack.entries[i].patch)
	}
	m.stack.position = target
	m.current = rebuilt

	m.logger.Debug("jump", "position", target)
	m.emit(event{kind: eventJump, position: target})
}

func (m *Manager) validPositionLocked(pos int) bool {
	return pos >= noParent && pos < m.stack.len()
}

// Pause stops recording. Updates made while paused replace the committed
// state without creating snapshots.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

// Resume restarts recording.
func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
}

// Paused reports whether recording is paused.
func (m *Manager) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Clear cancels any pending update and drops all snapshots. The committed
// state is kept.
func (m *Manager) Clear() {
	m.run(m.clearLocked)
}

func (m *Manager) clearLocked() {
	m.debounce.cancel()
	m.dropPendingLocked()
	m.grouping = false
	m.groupName = ""
	m.stack.reset()

	m.logger.Debug("history cleared")
	m.emit(event{kind: eventClear})
}

// Destroy releases the debounce timer and clears the history. The Manager
// must not be used afterwards.
func (m *Manager) Destroy() {
	m.run(func() {
		m.debounce.cancel()
		m.clearLocked()
	})
}

// CurrentState flushes any pending update and returns a copy of the
// committed state. Inside a group it returns the latest grouped state.
func (m *Manager) CurrentState() any {
	var state any
	m.run(func() {
		m.flushLocked()
		if m.grouping && m.hasPending {
			state = diff.Clone(m.pending)
			return
		}
		state = diff.Clone(m.current)
	})
	return state
}

// Committed returns a copy of the committed state without flushing a pending
// update.
func (m *Manager) Committed() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return diff.Clone(m.current)
}

// CanUndo reports whether Undo would succeed.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stack.canUndo()
}

// CanRedo reports whether Redo would succeed. With branching enabled that
// means the current entry has a child; an entry at the tip of an abandoned
// branch has none, even when it is not the last entry in the stack.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stack.canRedo()
}

// Position returns the index of the last applied snapshot, or -1.
func (m *Manager) Position() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stack.position
}

// Size returns the number of stored snapshots.
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stack.len()
}

// HasPending reports whether an update is waiting to be committed.
func (m *Manager) HasPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasPending
}

// Info returns a point-in-time view of the history.
func (m *Manager) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Info{
		Position:  m.stack.position,
		Size:      m.stack.len(),
		CanUndo:   m.stack.canUndo(),
		CanRedo:   m.stack.canRedo(),
		Paused:    m.paused,
		Snapshots: m.stack.snapshots(),
	}
}
