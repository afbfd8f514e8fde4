package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/formhistory/internal/engine/history"
	"github.com/dshills/formhistory/internal/filebind"
	"github.com/dshills/formhistory/internal/formhistory"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Keep a state file under undo history",
		Long: `Watch records every save of a JSON, YAML or TOML file as a history
entry. Commands read from standard input move the file through its history:

  undo | redo | jump N | snapshot | pause | resume | clear | state | info | quit

Each command prints one JSON line with the resulting position.

Examples:
  # Track edits to a settings file
  formhist watch settings.yaml

  # Keep edits that land within two seconds in one entry
  FORMHIST_DEBOUNCE_MS=2000 formhist watch form.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, rootOpts, args[0])
		},
	}
}

func runWatch(cmd *cobra.Command, opts *RootOptions, path string) error {
	cfg, logger, closeLog, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	codec, err := filebind.CodecForPath(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "watch", err)
	}
	initial, err := filebind.ReadState(path, codec)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		initial = map[string]any{}
	case err != nil:
		return WrapExitError(ExitCommandError, "reading state", err)
	}

	h := formhistory.New(initial, append(cfg.HistoryOptions(), history.WithLogger(logger))...)
	defer h.Destroy()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	b, err := filebind.Bind(ctx, h, path, filebind.Options{Codec: codec, Logger: logger})
	if err != nil {
		return WrapExitError(ExitCommandError, "binding file", err)
	}
	defer b.Close()

	logger.Info("watching", "file", path)
	return serveCommands(ctx, h, cmd.InOrStdin(), cmd.OutOrStdout())
}

// serveCommands runs history commands read line by line from in until quit,
// end of input or cancellation.
func serveCommands(ctx context.Context, h *formhistory.History, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	enc := json.NewEncoder(out)
	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		res := runCommand(h, line)
		if err := enc.Encode(res); err != nil {
			return WrapExitError(ExitFailure, "writing output", err)
		}
	}
}

func runCommand(h *formhistory.History, line string) StepResult {
	res := StepResult{Op: strings.Fields(line)[0]}
	m := h.Manager()

	switch res.Op {
	case "state":
		res.State = m.Committed()
	case "info":
		res.Snapshots = snapshotViews(h.Info().Snapshots)
	default:
		state, err := h.Dispatch(line)
		switch res.Op {
		case formhistory.CommandUndo, formhistory.CommandRedo, formhistory.CommandJump:
			ok := err == nil
			res.OK = &ok
		}
		if err != nil {
			res.Error = err.Error()
		} else {
			res.State = state
		}
	}

	info := h.Info()
	res.Position = info.Position
	res.Size = info.Size
	res.CanUndo = info.CanUndo
	res.CanRedo = info.CanRedo
	res.Pending = m.HasPending()
	return res
}
