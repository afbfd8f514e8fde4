package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/formhistory/internal/config"
	"github.com/dshills/formhistory/internal/engine/diff"
	"github.com/dshills/formhistory/internal/engine/history"
	"github.com/dshills/formhistory/internal/formhistory"
)

// replayEpoch is the virtual wall clock origin for replays. Snapshot ids and
// timestamps are derived from it so output is reproducible.
var replayEpoch = time.Unix(0, 0).UTC()

// Script is a scripted sequence of history operations.
type Script struct {
	// History overrides the configured history settings. Keys that are not
	// present keep their configured values.
	History config.HistoryConfig `yaml:"history"`
	Initial any                  `yaml:"initial"`
	Steps   []Step               `yaml:"steps"`
}

// Step is one scripted operation.
type Step struct {
	Op          string   `yaml:"op"`
	State       any      `yaml:"state"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Position    int      `yaml:"position"`
	Ms          int      `yaml:"ms"`
}

func (s Step) metadata() history.Metadata {
	return history.Metadata{Description: s.Description, Tags: s.Tags}
}

// StepResult is the JSON line written for each step.
type StepResult struct {
	Step      int            `json:"step"`
	Op        string         `json:"op"`
	OK        *bool          `json:"ok,omitempty"`
	Error     string         `json:"error,omitempty"`
	State     any            `json:"state,omitempty"`
	Position  int            `json:"position"`
	Size      int            `json:"size"`
	CanUndo   bool           `json:"canUndo"`
	CanRedo   bool           `json:"canRedo"`
	Pending   bool           `json:"pending"`
	Snapshots []SnapshotView `json:"snapshots,omitempty"`
}

// SnapshotView is the JSON form of a history entry.
type SnapshotView struct {
	ID          string   `json:"id"`
	Description string   `json:"description,omitempty"`
	Fields      []string `json:"fields"`
}

// ReplayOptions holds options for the replay command.
type ReplayOptions struct {
	*RootOptions
	Strict bool
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Replay a scripted edit session",
		Long: `Replay runs a YAML script of history operations against a fresh history
using a virtual clock, and prints one JSON line per step.

Operations:
  update    record a state change (debounced)
  snapshot  commit a state immediately (the current state when none is given)
  settle    advance the virtual clock past the debounce delay
  advance   advance the virtual clock by ms milliseconds
  undo, redo, jump, pause, resume, clear
  begin, end, cancel   group changes into one entry
  state     print the committed state
  info      print the history entries

Examples:
  # Replay a script
  formhist replay session.yaml

  # Fail when an undo or redo is not possible
  formhist replay --strict session.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit with an error when navigation fails")

	return cmd
}

func runReplay(cmd *cobra.Command, opts *ReplayOptions, path string) error {
	cfg, logger, closeLog, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading script", err)
	}
	script, err := parseScript(data, cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "parsing script", err)
	}

	return replay(cmd.OutOrStdout(), script, logger, opts.Strict)
}

// parseScript decodes a script over the configured history settings.
func parseScript(data []byte, cfg config.Config) (*Script, error) {
	script := &Script{History: cfg.History}
	if err := yaml.Unmarshal(data, script); err != nil {
		return nil, err
	}
	cfg.History = script.History
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	script.Initial = diff.Normalize(script.Initial)
	for i := range script.Steps {
		script.Steps[i].State = diff.Normalize(script.Steps[i].State)
	}
	return script, nil
}

type replayer struct {
	h        *formhistory.History
	sched    *history.ManualScheduler
	debounce time.Duration
	strict   bool
}

func replay(w io.Writer, script *Script, logger *slog.Logger, strict bool) error {
	sched := history.NewManualScheduler()
	clock := func() time.Time { return replayEpoch.Add(sched.Now()) }

	h := formhistory.New(script.Initial,
		history.WithConfig(config.Config{History: script.History}.HistoryConfig()),
		history.WithScheduler(sched),
		history.WithClock(clock),
		history.WithIDSource(history.NewSequenceSource(clock)),
		history.WithLogger(logger),
	)
	defer h.Destroy()

	r := &replayer{h: h, sched: sched, debounce: script.History.Debounce(), strict: strict}
	enc := json.NewEncoder(w)
	for i, step := range script.Steps {
		res, err := r.step(step)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("step %d", i+1), err)
		}
		res.Step = i + 1
		res.Op = step.Op
		if err := enc.Encode(res); err != nil {
			return WrapExitError(ExitFailure, "writing output", err)
		}
		if strict && res.OK != nil && !*res.OK {
			return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("step %d: %s", i+1, res.Error)}
		}
	}
	return nil
}

func (r *replayer) step(s Step) (StepResult, error) {
	var res StepResult
	m := r.h.Manager()

	switch s.Op {
	case "update":
		r.h.Update(s.State, s.metadata())
	case "snapshot":
		if s.State != nil {
			m.Snapshot(s.State, s.metadata())
		} else {
			r.h.Snapshot(s.metadata())
		}
		res.State = m.Committed()
	case "settle":
		r.sched.Advance(r.debounce)
	case "advance":
		r.sched.Advance(time.Duration(s.Ms) * time.Millisecond)
	case "undo", "redo", "jump":
		command := s.Op
		if s.Op == "jump" {
			command += " " + strconv.Itoa(s.Position)
		}
		state, err := r.h.Dispatch(command)
		ok := err == nil
		res.OK = &ok
		switch {
		case ok:
			res.State = state
		case errors.Is(err, history.ErrNothingToUndo),
			errors.Is(err, history.ErrNothingToRedo),
			errors.Is(err, history.ErrPositionOutOfRange):
			res.Error = err.Error()
		default:
			return res, err
		}
	case "pause", "resume", "clear":
		if _, err := r.h.Dispatch(s.Op); err != nil {
			return res, err
		}
	case "begin":
		m.BeginGroup(s.Description)
	case "end":
		m.EndGroup()
	case "cancel":
		m.CancelGroup()
	case "state":
		res.State = m.Committed()
	case "info":
		res.Snapshots = snapshotViews(r.h.Info().Snapshots)
	default:
		return res, fmt.Errorf("unknown op %q", s.Op)
	}

	info := r.h.Info()
	res.Position = info.Position
	res.Size = info.Size
	res.CanUndo = info.CanUndo
	res.CanRedo = info.CanRedo
	res.Pending = m.HasPending()
	return res, nil
}

func snapshotViews(snaps []*history.Snapshot) []SnapshotView {
	views := make([]SnapshotView, 0, len(snaps))
	for _, s := range snaps {
		views = append(views, SnapshotView{
			ID:          s.ID,
			Description: s.Description(),
			Fields:      s.AffectedFields(),
		})
	}
	return views
}
