package formhistory

import "errors"

var (
	// ErrUnknownCommand is returned by Dispatch for an unrecognized command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidArgument is returned by Dispatch when a command argument
	// cannot be parsed.
	ErrInvalidArgument = errors.New("invalid command argument")
)
