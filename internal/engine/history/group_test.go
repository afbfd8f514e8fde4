package history

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupCommitsOneSnapshot(t *testing.T) {
	m, sched := newTestManager(t, rec("rows", []any{}))

	m.BeginGroup("Paste rows")
	require.True(t, m.Grouping())
	m.Update(rec("rows", []any{"a"}))
	m.Update(rec("rows", []any{"a", "b"}))
	m.Snapshot(rec("rows", []any{"a", "b", "c"}))

	assert.Equal(t, 0, sched.Pending(), "no debounce inside a group")
	assert.Equal(t, 0, m.Size())
	assert.Equal(t, rec("rows", []any{"a", "b", "c"}), m.CurrentState())

	m.EndGroup()
	assert.False(t, m.Grouping())
	require.Equal(t, 1, m.Size())
	assert.Equal(t, "Paste rows", m.Info().Snapshots[0].Description())

	state, ok := m.Undo()
	require.True(t, ok)
	assert.Equal(t, rec("rows", []any{}), state)
}

func TestGroupFlushesPendingFirst(t *testing.T) {
	m, sched := newTestManager(t, rec("n", 0))

	m.Update(rec("n", 1))
	m.BeginGroup("g")
	m.Update(rec("n", 2))
	m.EndGroup()

	assert.Equal(t, 2, m.Size())
	assert.Equal(t, 0, sched.Pending())
}

func TestGroupKeepsExplicitDescription(t *testing.T) {
	m, _ := newTestManager(t, rec("n", 0))

	m.BeginGroup("outer")
	m.Update(rec("n", 1), Metadata{Description: "inner"})
	m.EndGroup()

	require.Equal(t, 1, m.Size())
	assert.Equal(t, "inner", m.Info().Snapshots[0].Description())
}

func TestGroupNested(t *testing.T) {
	m, _ := newTestManager(t, rec("n", 0))

	m.BeginGroup("outer")
	m.BeginGroup("inner")
	m.Update(rec("n", 1))
	m.EndGroup()

	require.Equal(t, 1, m.Size())
	assert.Equal(t, "outer", m.Info().Snapshots[0].Description())
	assert.False(t, m.Grouping())
}

func TestGroupEmpty(t *testing.T) {
	m, _ := newTestManager(t, rec("n", 0))

	m.BeginGroup("nothing")
	m.EndGroup()
	m.EndGroup()

	assert.Equal(t, 0, m.Size())
}

func TestGroupCancel(t *testing.T) {
	m, _ := newTestManager(t, rec("n", 0))

	m.BeginGroup("g")
	m.Update(rec("n", 1))
	m.CancelGroup()

	assert.Equal(t, 0, m.Size())
	assert.Equal(t, rec("n", 0), m.CurrentState())
	assert.False(t, m.HasPending())
}

func TestGroupScope(t *testing.T) {
	m, _ := newTestManager(t, rec("n", 0))

	func() {
		defer m.GroupScope("scoped").End()
		m.Update(rec("n", 1))
		m.Update(rec("n", 2))
	}()

	require.Equal(t, 1, m.Size())
	assert.Equal(t, "scoped", m.Info().Snapshots[0].Description())

	scope := m.GroupScope("cancelled")
	m.Update(rec("n", 3))
	scope.Cancel()
	scope.End()
	assert.Equal(t, 1, m.Size())
	assert.Equal(t, rec("n", 2), m.CurrentState())
}

func TestTransaction(t *testing.T) {
	m, _ := newTestManager(t, rec("n", 0))

	err := m.Transaction("ok", func() error {
		m.Update(rec("n", 1))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Size())

	boom := errors.New("boom")
	err = m.Transaction("fails", func() error {
		m.Update(rec("n", 2))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, m.Size())
	assert.Equal(t, rec("n", 1), m.CurrentState())
}

func TestCheckpoint(t *testing.T) {
	m, _ := newTestManager(t, rec("n", 0))

	initial := m.CreateCheckpoint()
	assert.True(t, initial.Initial())

	m.Snapshot(rec("n", 1))
	m.Update(rec("n", 2))
	cp := m.CreateCheckpoint()
	assert.False(t, cp.Initial())
	assert.Equal(t, 2, m.Size(), "checkpoint flushes pending")

	m.Snapshot(rec("n", 3))

	state, err := m.RestoreCheckpoint(cp)
	require.NoError(t, err)
	assert.Equal(t, rec("n", 2), state)
	assert.Equal(t, 1, m.Position())

	state, err = m.RestoreCheckpoint(initial)
	require.NoError(t, err)
	assert.Equal(t, rec("n", 0), state)
}

func TestCheckpointEvicted(t *testing.T) {
	m, _ := newTestManager(t, rec("n", 0), WithMaxHistory(2))

	m.Snapshot(rec("n", 1))
	cp := m.CreateCheckpoint()
	m.Snapshot(rec("n", 2))
	m.Snapshot(rec("n", 3))

	_, err := m.RestoreCheckpoint(cp)
	assert.ErrorIs(t, err, ErrCheckpointEvicted)
	assert.Equal(t, rec("n", 3), m.CurrentState())
}

func TestCheckpointInitialEvicted(t *testing.T) {
	t.Run("eviction", func(t *testing.T) {
		m, _ := newTestManager(t, rec("n", 0), WithMaxHistory(1))

		cp := m.CreateCheckpoint()
		require.True(t, cp.Initial())
		m.Snapshot(rec("n", 1))
		m.Snapshot(rec("n", 2))

		state, err := m.RestoreCheckpoint(cp)
		assert.ErrorIs(t, err, ErrCheckpointEvicted)
		assert.Nil(t, state)
		assert.Equal(t, rec("n", 2), m.CurrentState())
		assert.Equal(t, 0, m.Position())
	})

	t.Run("clear", func(t *testing.T) {
		m, _ := newTestManager(t, rec("n", 0))

		cp := m.CreateCheckpoint()
		m.Snapshot(rec("n", 1))
		m.Clear()

		_, err := m.RestoreCheckpoint(cp)
		assert.ErrorIs(t, err, ErrCheckpointEvicted)
		assert.Equal(t, rec("n", 1), m.CurrentState())
	})

	t.Run("within retention", func(t *testing.T) {
		m, _ := newTestManager(t, rec("n", 0), WithMaxHistory(2))

		cp := m.CreateCheckpoint()
		m.Snapshot(rec("n", 1))
		m.Snapshot(rec("n", 2))

		state, err := m.RestoreCheckpoint(cp)
		require.NoError(t, err)
		assert.Equal(t, rec("n", 0), state)
	})
}
