package history

import "errors"

// Errors for adapters that report failed navigation as errors.
var (
	ErrNothingToUndo      = errors.New("nothing to undo")
	ErrNothingToRedo      = errors.New("nothing to redo")
	ErrPositionOutOfRange = errors.New("history position out of range")
)

// ErrCheckpointEvicted is returned when a checkpoint's snapshot is no longer
// in the history.
var ErrCheckpointEvicted = errors.New("checkpoint snapshot evicted")
