package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options carries process attributes added to every record.
type Options struct {
	App     string
	Version string

	// Stderr replaces os.Stderr for the stderr sink.
	Stderr io.Writer
}

// New builds a logger from cfg. The returned close function releases the
// file sink and must be called on shutdown.
func New(cfg Config, opts Options) (*slog.Logger, func() error, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, nil, err
	}
	if opts.App == "" {
		opts.App = "formhist"
	}

	writer, closeFn, err := resolveWriter(cfg, opts)
	if err != nil {
		return nil, nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	switch Format(cfg.Format) {
	case FormatJSON:
		handler = slog.NewJSONHandler(writer, handlerOpts)
	default:
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	logger := slog.New(handler).With(slog.String("app", opts.App))
	if opts.Version != "" {
		logger = logger.With(slog.String("version", opts.Version))
	}
	return logger, closeFn, nil
}

// ParseLevel maps a level name to a slog level. Unknown names mean warn.
func ParseLevel(value string) slog.Level {
	switch value {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func resolveWriter(cfg Config, opts Options) (io.Writer, func() error, error) {
	noop := func() error { return nil }

	switch Sink(cfg.Sink) {
	case SinkNone:
		return io.Discard, noop, nil
	case SinkStderr, "":
		if opts.Stderr != nil {
			return opts.Stderr, noop, nil
		}
		return os.Stderr, noop, nil
	case SinkFile:
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("logging: create log dir: %w", err)
		}
		rot := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		return rot, rot.Close, nil
	default:
		return nil, nil, fmt.Errorf("logging: unknown sink %q", cfg.Sink)
	}
}
