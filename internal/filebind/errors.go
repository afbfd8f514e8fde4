package filebind

import "errors"

var (
	// ErrUnsupportedFormat is returned for file extensions with no codec.
	ErrUnsupportedFormat = errors.New("unsupported state file format")

	// ErrUnsupportedState is returned when a codec cannot encode a state.
	ErrUnsupportedState = errors.New("state cannot be encoded")
)
