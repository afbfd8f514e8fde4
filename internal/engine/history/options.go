package history

import (
	"log/slog"
	"time"
)

// Default configuration values.
const (
	DefaultMaxHistory = 50
	DefaultDebounce   = 500 * time.Millisecond
)

// Config holds the recording policy of a Manager.
type Config struct {
	// MaxHistory caps the number of snapshots kept. Oldest entries are
	// evicted first.
	MaxHistory int

	// Debounce is the quiet period after the last Update before the pending
	// state is committed.
	Debounce time.Duration

	// ExcludeFields lists field paths that never produce snapshots. A trailing
	// "*" matches by prefix.
	ExcludeFields []string

	// EnableBranching keeps redo entries when a new step is committed after
	// an undo.
	EnableBranching bool
}

// DefaultConfig returns the default recording policy.
func DefaultConfig() Config {
	return Config{
		MaxHistory: DefaultMaxHistory,
		Debounce:   DefaultDebounce,
	}
}

// SnapshotFunc observes a snapshot being created, undone or redone.
type SnapshotFunc func(snap *Snapshot)

// JumpFunc observes a jump to a history position.
type JumpFunc func(position int)

// Option configures a Manager during creation.
type Option func(*Manager)

// WithConfig applies a whole Config. Invalid values fall back to the
// defaults the same way the individual options do.
func WithConfig(c Config) Option {
	return func(m *Manager) {
		WithMaxHistory(c.MaxHistory)(m)
		WithDebounce(c.Debounce)(m)
		WithExcludeFields(c.ExcludeFields...)(m)
		WithBranching(c.EnableBranching)(m)
	}
}

// WithMaxHistory sets the maximum number of snapshots to keep.
// Non-positive values are ignored.
func WithMaxHistory(max int) Option {
	return func(m *Manager) {
		if max > 0 {
			m.cfg.MaxHistory = max
		}
	}
}

// WithDebounce sets the debounce window. Negative values are ignored; zero
// commits on the next timer tick.
func WithDebounce(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.cfg.Debounce = d
		}
	}
}

// WithExcludeFields adds field paths that are never recorded.
func WithExcludeFields(paths ...string) Option {
	return func(m *Manager) {
		m.cfg.ExcludeFields = append(m.cfg.ExcludeFields, paths...)
	}
}

// WithBranching enables or disables branch retention.
func WithBranching(enabled bool) Option {
	return func(m *Manager) {
		m.cfg.EnableBranching = enabled
	}
}

// WithOnSnapshot registers a callback invoked after a snapshot is committed.
func WithOnSnapshot(fn SnapshotFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.onSnapshot = append(m.onSnapshot, fn)
		}
	}
}

// WithOnUndo registers a callback invoked with the snapshot that was undone.
func WithOnUndo(fn SnapshotFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.onUndo = append(m.onUndo, fn)
		}
	}
}

// WithOnRedo registers a callback invoked with the snapshot that was redone.
func WithOnRedo(fn SnapshotFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.onRedo = append(m.onRedo, fn)
		}
	}
}

// WithOnClear registers a callback invoked after the history is cleared.
func WithOnClear(fn func()) Option {
	return func(m *Manager) {
		if fn != nil {
			m.onClear = append(m.onClear, fn)
		}
	}
}

// WithOnJump registers a callback invoked after JumpTo moves the cursor.
func WithOnJump(fn JumpFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.onJump = append(m.onJump, fn)
		}
	}
}

// WithIDSource sets the snapshot id generator.
func WithIDSource(ids IDSource) Option {
	return func(m *Manager) {
		if ids != nil {
			m.ids = ids
		}
	}
}

// WithClock sets the clock used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithScheduler sets the scheduler that drives the debounce timer.
func WithScheduler(s Scheduler) Option {
	return func(m *Manager) {
		if s != nil {
			m.debounce.sched = s
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}
