package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStderrText(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = "DEBUG"

	logger, closeFn, err := New(cfg, Options{Version: "1.2.3", Stderr: &buf})
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("snapshot committed", "position", 0)
	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, `msg="snapshot committed"`)
	assert.Contains(t, out, "app=formhist")
	assert.Contains(t, out, "version=1.2.3")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.Level = "info"

	logger, _, err := New(cfg, Options{App: "test", Stderr: &buf})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown", "size", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "test", rec["app"])
	assert.Equal(t, float64(3), rec["size"])
}

func TestNewFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "formhist.log")
	cfg := DefaultConfig()
	cfg.Sink = "file"
	cfg.File = path

	logger, closeFn, err := New(cfg, Options{})
	require.NoError(t, err)

	logger.Warn("history cleared")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "history cleared")
}

func TestNewNoneSink(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sink = "none"

	logger, closeFn, err := New(cfg, Options{})
	require.NoError(t, err)
	assert.NoError(t, closeFn())
	logger.Error("dropped")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty", func(c *Config) { *c = Config{} }, ""},
		{"bad level", func(c *Config) { c.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Format = "xml" }, "logging.format"},
		{"bad sink", func(c *Config) { c.Sink = "syslog" }, "logging.sink"},
		{"file without path", func(c *Config) { c.Sink = "file" }, "logging.file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := cfg.Normalize()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalizeClampsRotation(t *testing.T) {
	cfg := Config{Level: " Info ", MaxSizeMB: -1, MaxBackups: -2, MaxAgeDays: -3}
	got, err := cfg.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "info", got.Level)
	assert.Zero(t, got.MaxSizeMB)
	assert.Zero(t, got.MaxBackups)
	assert.Zero(t, got.MaxAgeDays)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(""))
}
