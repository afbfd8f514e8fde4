// Package logging builds the structured logger used by formhist.
package logging

import (
	"fmt"
	"strings"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Sink string

const (
	SinkStderr Sink = "stderr"
	SinkFile   Sink = "file"
	SinkNone   Sink = "none"
)

// Rotation defaults for the file sink.
const (
	DefaultMaxSizeMB  = 20
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 7
)

// Config selects the log level, format and destination.
type Config struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Sink      string `yaml:"sink"`
	File      string `yaml:"file"`
	AddSource bool   `yaml:"addSource"`

	// Rotation settings for the file sink.
	MaxSizeMB  int  `yaml:"maxSizeMb"`
	MaxBackups int  `yaml:"maxBackups"`
	MaxAgeDays int  `yaml:"maxAgeDays"`
	Compress   bool `yaml:"compress"`
}

// DefaultConfig is quiet: warnings and errors as text on stderr.
func DefaultConfig() Config {
	return Config{
		Level:      "warn",
		Format:     string(FormatText),
		Sink:       string(SinkStderr),
		MaxSizeMB:  DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAgeDays: DefaultMaxAgeDays,
		Compress:   true,
	}
}

// Normalize lower-cases the enum fields, clamps negative rotation values to
// zero and validates the result.
func (c Config) Normalize() (Config, error) {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Sink = strings.ToLower(strings.TrimSpace(c.Sink))
	c.File = strings.TrimSpace(c.File)
	c.MaxSizeMB = max(c.MaxSizeMB, 0)
	c.MaxBackups = max(c.MaxBackups, 0)
	c.MaxAgeDays = max(c.MaxAgeDays, 0)
	return c, c.Validate()
}

// Validate reports the first invalid field. Empty values are allowed and
// mean the default.
func (c Config) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: invalid %q", c.Level)
	}
	switch Format(c.Format) {
	case "", FormatText, FormatJSON:
	default:
		return fmt.Errorf("logging.format: invalid %q", c.Format)
	}
	switch Sink(c.Sink) {
	case "", SinkStderr, SinkNone:
	case SinkFile:
		if c.File == "" {
			return fmt.Errorf("logging.file: required for the file sink")
		}
	default:
		return fmt.Errorf("logging.sink: invalid %q", c.Sink)
	}
	return nil
}
