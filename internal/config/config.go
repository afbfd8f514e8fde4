package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/formhistory/internal/config/loader"
	"github.com/dshills/formhistory/internal/engine/diff"
	"github.com/dshills/formhistory/internal/engine/history"
	"github.com/dshills/formhistory/internal/logging"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "FORMHIST_"

// Config is the complete formhist configuration.
type Config struct {
	History HistoryConfig  `yaml:"history"`
	Logging logging.Config `yaml:"logging"`
}

// HistoryConfig is the recording policy of a history.Manager.
type HistoryConfig struct {
	MaxHistory      int       `yaml:"maxHistory"`
	DebounceMs      int       `yaml:"debounceMs"`
	ExcludeFields   FieldList `yaml:"excludeFields"`
	EnableBranching bool      `yaml:"enableBranching"`
}

// FieldList is a list of field paths. It decodes from a sequence or from a
// comma-separated string.
type FieldList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *FieldList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*l = splitFields(node.Value)
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*l = list
	return nil
}

func splitFields(s string) FieldList {
	var out FieldList
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Default returns the built-in configuration.
func Default() Config {
	h := history.DefaultConfig()
	return Config{
		History: HistoryConfig{
			MaxHistory: h.MaxHistory,
			DebounceMs: int(h.Debounce / time.Millisecond),
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads path (if not empty), applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	return LoadWithFS(loader.DefaultFS(), path)
}

// LoadWithFS is Load reading files through fsys.
func LoadWithFS(fsys loader.FileSystem, path string) (Config, error) {
	var layers []map[string]any

	if path != "" {
		fl, err := loader.ForPath(fsys, path)
		if err != nil {
			if errors.Is(err, loader.ErrUnsupportedFormat) {
				return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
			}
			return Config{}, err
		}
		data, err := fl.Load()
		if err != nil {
			return Config{}, err
		}
		if data == nil {
			return Config{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		layers = append(layers, data)
	}

	env, err := loader.NewEnvLoader(EnvPrefix).Load()
	if err != nil {
		return Config{}, err
	}
	layers = append(layers, env)

	cfg, err := decode(Default(), layers...)
	if err != nil {
		return Config{}, err
	}
	if cfg.Logging, err = cfg.Logging.Normalize(); err != nil {
		return Config{}, &ValidationError{
			Path:    "logging",
			Message: err.Error(),
			Value:   cfg.Logging,
			Code:    ErrCodeInvalidEnum,
			Err:     err,
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode merges layers over base.
func decode(base Config, layers ...map[string]any) (Config, error) {
	var merged map[string]any
	for _, l := range layers {
		merged = loader.DeepMerge(merged, l)
	}
	if len(merged) == 0 {
		return base, nil
	}

	data, err := yaml.Marshal(merged)
	if err != nil {
		return Config{}, fmt.Errorf("encoding merged config: %w", err)
	}
	if err := yaml.Unmarshal(data, &base); err != nil {
		return Config{}, &loader.ParseError{Path: "<merged>", Message: err.Error(), Err: err}
	}
	return base, nil
}

// Validate checks the history settings. Logging settings are checked by
// logging.Config.Validate.
func (c Config) Validate() error {
	h := c.History
	if h.MaxHistory <= 0 {
		return &ValidationError{
			Path:    "history.maxHistory",
			Message: "must be positive",
			Value:   h.MaxHistory,
			Code:    ErrCodeOutOfRange,
		}
	}
	if h.DebounceMs < 0 {
		return &ValidationError{
			Path:    "history.debounceMs",
			Message: "must not be negative",
			Value:   h.DebounceMs,
			Code:    ErrCodeOutOfRange,
		}
	}
	for _, f := range h.ExcludeFields {
		if f == "" || f == diff.Wildcard || strings.HasPrefix(f, diff.PathSeparator) {
			return &ValidationError{
				Path:    "history.excludeFields",
				Message: "pattern must name a field",
				Value:   f,
				Code:    ErrCodePatternMismatch,
			}
		}
	}
	return c.Logging.Validate()
}

// Debounce returns the debounce window as a duration.
func (h HistoryConfig) Debounce() time.Duration {
	return time.Duration(h.DebounceMs) * time.Millisecond
}

// HistoryConfig converts the settings to a history.Config.
func (c Config) HistoryConfig() history.Config {
	return history.Config{
		MaxHistory:      c.History.MaxHistory,
		Debounce:        c.History.Debounce(),
		ExcludeFields:   append([]string(nil), c.History.ExcludeFields...),
		EnableBranching: c.History.EnableBranching,
	}
}

// HistoryOptions returns the options that apply the settings to a Manager.
func (c Config) HistoryOptions() []history.Option {
	return []history.Option{history.WithConfig(c.HistoryConfig())}
}
