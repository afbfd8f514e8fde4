package formhistory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/formhistory/internal/engine/history"
)

// Command names accepted by Dispatch.
const (
	CommandUndo     = "undo"
	CommandRedo     = "redo"
	CommandClear    = "clear"
	CommandPause    = "pause"
	CommandResume   = "resume"
	CommandSnapshot = "snapshot"
	CommandJump     = "jump"
)

// shortcuts maps key chords to commands. Keys are lower case with modifiers
// in ctrl, shift order.
var shortcuts = map[string]string{
	"ctrl+z":       CommandUndo,
	"cmd+z":        CommandUndo,
	"ctrl+y":       CommandRedo,
	"cmd+y":        CommandRedo,
	"ctrl+shift+z": CommandRedo,
	"cmd+shift+z":  CommandRedo,
}

// ShortcutCommand returns the command bound to a key chord such as "Ctrl+Z"
// or "Cmd+Shift+Z".
func ShortcutCommand(chord string) (string, bool) {
	parts := strings.Split(strings.ToLower(strings.ReplaceAll(chord, " ", "")), "+")
	var mod string
	var shift bool
	var key string
	for _, p := range parts {
		switch p {
		case "ctrl", "control":
			mod = "ctrl"
		case "cmd", "meta", "command":
			mod = "cmd"
		case "shift":
			shift = true
		default:
			key = p
		}
	}
	if mod == "" || key == "" {
		return "", false
	}

	norm := mod
	if shift {
		norm += "+shift"
	}
	cmd, ok := shortcuts[norm+"+"+key]
	return cmd, ok
}

// Dispatch runs a named command and returns the resulting state for
// commands that move it (undo, redo, jump, snapshot). Jump takes the target
// position as an argument: "jump 3" or "jump -1".
//
// Navigation that is not possible is reported as history.ErrNothingToUndo,
// history.ErrNothingToRedo or history.ErrPositionOutOfRange.
func (h *History) Dispatch(command string) (any, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrUnknownCommand)
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	if name != CommandJump && len(args) > 0 {
		return nil, fmt.Errorf("%w: %s takes no arguments", ErrInvalidArgument, name)
	}

	switch name {
	case CommandUndo:
		state, ok := h.Undo()
		if !ok {
			return nil, history.ErrNothingToUndo
		}
		return state, nil

	case CommandRedo:
		state, ok := h.Redo()
		if !ok {
			return nil, history.ErrNothingToRedo
		}
		return state, nil

	case CommandJump:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: jump needs one position", ErrInvalidArgument)
		}
		pos, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		state, ok := h.JumpTo(pos)
		if !ok {
			return nil, fmt.Errorf("%w: %d", history.ErrPositionOutOfRange, pos)
		}
		return state, nil

	case CommandSnapshot:
		h.Snapshot()
		return h.manager.Committed(), nil

	case CommandClear:
		h.Clear()
	case CommandPause:
		h.Pause()
	case CommandResume:
		h.Resume()

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return nil, nil
}
