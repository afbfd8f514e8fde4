package formhistory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/formhistory/internal/engine/history"
)

func newTestHistory(t *testing.T, initial any, opts ...history.Option) (*History, *history.ManualScheduler) {
	t.Helper()

	sched := history.NewManualScheduler()
	base := []history.Option{
		history.WithScheduler(sched),
		history.WithDebounce(50 * time.Millisecond),
		history.WithIDSource(history.NewSequenceSource(nil)),
	}
	h := New(initial, append(base, opts...)...)
	t.Cleanup(h.Destroy)
	return h, sched
}

func form(name, email string) map[string]any {
	return map[string]any{"name": name, "email": email}
}

func TestHistoryUpdateAndUndo(t *testing.T) {
	h, sched := newTestHistory(t, form("", ""))

	h.Update(form("John", ""))
	sched.Advance(50 * time.Millisecond)
	h.Update(form("John", "john@example.com"))
	sched.Advance(50 * time.Millisecond)

	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	state, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, form("John", ""), state)

	state, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, form("John", "john@example.com"), state)
	assert.Equal(t, 2, h.Info().Size)
}

func TestHistoryUpdateFunc(t *testing.T) {
	h, sched := newTestHistory(t, map[string]any{"count": 0})

	inc := func(prev any) any {
		rec := prev.(map[string]any)
		return map[string]any{"count": rec["count"].(int) + 1}
	}
	h.UpdateFunc(inc)
	h.UpdateFunc(inc)
	h.UpdateFunc(inc)

	assert.Equal(t, map[string]any{"count": 3}, h.State())
	sched.Advance(time.Second)
	assert.Equal(t, 3, h.Info().Size, "each functional update flushes the previous one")
}

func TestHistorySnapshotRecordsCurrentState(t *testing.T) {
	h, sched := newTestHistory(t, form("", ""))

	h.Update(form("a", ""))
	h.Snapshot(history.Metadata{Description: "save"})

	info := h.Info()
	require.Equal(t, 1, info.Size)
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, "", info.Snapshots[0].Description(), "pending commit keeps its own metadata")

	h.Snapshot()
	assert.Equal(t, 1, h.Info().Size, "unchanged state records nothing")
}

func TestHistorySubscribe(t *testing.T) {
	var snapshotted int
	h, sched := newTestHistory(t, form("", ""),
		history.WithOnSnapshot(func(*history.Snapshot) { snapshotted++ }))

	var changes []Change
	sub := h.Subscribe(func(c Change) { changes = append(changes, c) })

	h.Update(form("a", ""))
	sched.Advance(time.Second)
	h.Undo()
	h.Redo()
	h.JumpTo(-1)
	h.Clear()

	require.Len(t, changes, 4)
	assert.Equal(t, 1, snapshotted, "configured observers still run")

	assert.Equal(t, ChangeSnapshot, changes[0].Type)
	assert.Equal(t, form("a", ""), changes[0].State)
	assert.Equal(t, 0, changes[0].Position)
	require.NotNil(t, changes[0].Snapshot)

	assert.Equal(t, ChangeUndo, changes[1].Type)
	assert.Equal(t, form("", ""), changes[1].State)
	assert.Equal(t, changes[0].Snapshot.ID, changes[1].Snapshot.ID)

	assert.Equal(t, ChangeRedo, changes[2].Type)
	assert.Equal(t, ChangeJump, changes[3].Type)
	assert.Nil(t, changes[3].Snapshot)
	assert.Equal(t, -1, changes[3].Position)

	sub.Unsubscribe()
	sub.Unsubscribe()
	h.Redo()
	assert.Len(t, changes, 4)
}

func TestHistorySubscribersInOrder(t *testing.T) {
	h, _ := newTestHistory(t, form("", ""))

	var order []int
	for i := range 3 {
		h.Subscribe(func(Change) { order = append(order, i) })
	}

	h.manager.Snapshot(form("x", ""))
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestHistoryListenerReentry(t *testing.T) {
	h, _ := newTestHistory(t, form("", ""))

	var states []any
	h.Subscribe(func(c Change) {
		states = append(states, h.State())
		if c.Type == ChangeSnapshot && h.CanUndo() && h.Info().Size == 1 {
			h.Undo()
		}
	})

	h.manager.Snapshot(form("x", ""))

	require.Len(t, states, 2)
	assert.Equal(t, form("x", ""), states[0])
	assert.Equal(t, form("", ""), states[1])
}

func TestHistoryDestroy(t *testing.T) {
	h, sched := newTestHistory(t, form("", ""))

	var calls int
	h.Subscribe(func(Change) { calls++ })
	h.Update(form("a", ""))
	h.Destroy()

	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 0, h.Info().Size)
	assert.Equal(t, 0, h.notifier.count())
	assert.Zero(t, calls)
}

func TestChangeTypeString(t *testing.T) {
	tests := []struct {
		c    ChangeType
		want string
	}{
		{ChangeSnapshot, "snapshot"},
		{ChangeUndo, "undo"},
		{ChangeRedo, "redo"},
		{ChangeJump, "jump"},
		{ChangeType(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.String())
	}
}
