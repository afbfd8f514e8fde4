package history

import "github.com/dshills/formhistory/internal/engine/diff"

// BeginGroup starts collecting updates into a single snapshot.
//
// Any pending update is committed first. Until EndGroup, Update and Snapshot
// only replace the grouped state and no debounce timer runs. Nested calls are
// ignored; the outermost group wins.
func (m *Manager) BeginGroup(name string) {
	m.run(func() {
		if m.grouping {
			return
		}
		m.flushLocked()
		m.grouping = true
		m.groupName = name
		m.logger.Debug("group started", "name", name)
	})
}

// EndGroup commits the grouped state as one snapshot. The group name is used
// as the description unless the last update supplied one.
func (m *Manager) EndGroup() {
	m.run(func() {
		if !m.grouping {
			return
		}
		name := m.groupName
		m.grouping = false
		m.groupName = ""

		if !m.hasPending {
			return
		}
		if m.pendingMeta.Description == "" {
			m.pendingMeta.Description = name
		}
		m.commitPendingLocked()
	})
}

// CancelGroup ends the group and discards its updates. The committed state
// is unchanged.
func (m *Manager) CancelGroup() {
	m.run(func() {
		if !m.grouping {
			return
		}
		m.logger.Debug("group cancelled", "name", m.groupName)
		m.grouping = false
		m.groupName = ""
		m.dropPendingLocked()
	})
}

// Grouping reports whether a group is open.
func (m *Manager) Grouping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grouping
}

// GroupScope provides a convenient way to group updates using defer.
// Usage:
//
//	func pasteRows(m *Manager, rows []any) {
//	    defer m.GroupScope("Paste rows").End()
//	    for _, r := range rows {
//	        m.Update(withRow(m.CurrentState(), r))
//	    }
//	}
type GroupScope struct {
	manager *Manager
	active  bool
}

// GroupScope starts a new group scope.
func (m *Manager) GroupScope(name string) *GroupScope {
	m.BeginGroup(name)
	return &GroupScope{manager: m, active: true}
}

// End ends the group scope. Only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.manager.EndGroup()
		g.active = false
	}
}

// Cancel discards the group scope.
func (g *GroupScope) Cancel() {
	if g.active {
		g.manager.CancelGroup()
		g.active = false
	}
}

// Transaction runs fn inside a group. If fn returns an error the group is
// cancelled and the error returned; otherwise the group is committed.
func (m *Manager) Transaction(name string, fn func() error) error {
	m.BeginGroup(name)

	if err := fn(); err != nil {
		m.CancelGroup()
		return err
	}

	m.EndGroup()
	return nil
}

// Checkpoint marks a history position that can be returned to.
type Checkpoint struct {
	snapshotID string

	// base is the stack generation an initial-state checkpoint was taken in.
	base uint64
}

// Initial reports whether the checkpoint refers to the initial state.
func (c Checkpoint) Initial() bool {
	return c.snapshotID == ""
}

// CreateCheckpoint flushes any pending update and marks the current position.
func (m *Manager) CreateCheckpoint() Checkpoint {
	var cp Checkpoint
	m.run(func() {
		m.flushLocked()
		if m.stack.position >= 0 {
			cp.snapshotID = m.stack.entries[m.stack.position].ID
			return
		}
		cp.base = m.stack.base
	})
	return cp
}

// RestoreCheckpoint jumps back to the checkpoint position. It returns
// ErrCheckpointEvicted when the snapshot has since been evicted or cleared.
// A checkpoint of the initial state is lost the same way once any entry is
// evicted or the history is cleared.
func (m *Manager) RestoreCheckpoint(cp Checkpoint) (state any, err error) {
	m.run(func() {
		m.flushLocked()

		pos := noParent
		if cp.Initial() {
			if cp.base != m.stack.base {
				err = ErrCheckpointEvicted
				return
			}
		} else {
			pos = m.indexLocked(cp.snapshotID)
			if pos < 0 {
				err = ErrCheckpointEvicted
				return
			}
		}
		m.jumpLocked(pos)
		state = diff.Clone(m.current)
	})
	return state, err
}

func (m *Manager) indexLocked(id string) int {
	for i, s := range m.stack.entries {
		if s.ID == id {
			return i
		}
	}
	return -1
}
