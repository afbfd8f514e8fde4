package history

import (
	"maps"
	"slices"
	"time"

	"github.com/dshills/formhistory/internal/engine/diff"
)

// Metadata describes a snapshot.
type Metadata struct {
	// AffectedFields lists the changed field paths in sorted order.
	// It is filled in by the Manager when the snapshot is created.
	AffectedFields []string

	// Description is a human-readable label, e.g. "Paste rows".
	Description string

	// Tags are free-form labels supplied by the caller.
	Tags []string

	// Extra carries arbitrary caller data.
	Extra map[string]any
}

// mergeMetadata folds several metadata values into one. Later descriptions
// win, tags are concatenated and extra keys are overlaid in order.
func mergeMetadata(metas ...Metadata) Metadata {
	var out Metadata
	for _, m := range metas {
		if m.Description != "" {
			out.Description = m.Description
		}
		out.Tags = append(out.Tags, m.Tags...)
		if len(m.Extra) > 0 {
			if out.Extra == nil {
				out.Extra = make(map[string]any, len(m.Extra))
			}
			maps.Copy(out.Extra, m.Extra)
		}
	}
	return out
}

// Snapshot is one immutable entry in the history stack.
type Snapshot struct {
	// ID uniquely identifies this snapshot.
	ID string

	// Timestamp when this snapshot was created.
	Timestamp time.Time

	// Metadata supplied with the committed state.
	Metadata Metadata

	// patch turns the previous committed state into this one.
	patch diff.Patch
}

// Patch returns a copy of the patch recorded by this snapshot.
func (s *Snapshot) Patch() diff.Patch {
	return s.patch.Clone()
}

// AffectedFields returns the field paths this snapshot changed.
func (s *Snapshot) AffectedFields() []string {
	return slices.Clone(s.Metadata.AffectedFields)
}

// Description returns the snapshot description.
func (s *Snapshot) Description() string {
	return s.Metadata.Description
}

// Age returns how long ago this snapshot was created.
func (s *Snapshot) Age() time.Duration {
	return time.Since(s.Timestamp)
}

// Info is a point-in-time view of a Manager.
type Info struct {
	Position int
	Size     int
	CanUndo  bool
	Paused   bool

	// CanRedo is true when the current entry has a child to redo into. With
	// branching, Position < Size-1 does not imply it.
	CanRedo bool

	// Snapshots is a copy of the stack, oldest first. The snapshots
	// themselves are shared and must not be modified.
	Snapshots []*Snapshot
}
