package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Time{} }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/formhist.toml", `
[history]
maxHistory = 20
excludeFields = ["password", "card*"]
enableBranching = true

[logging]
level = "debug"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/formhist.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	h, ok := config["history"].(map[string]any)
	if !ok {
		t.Fatal("expected history to be a map")
	}
	if h["maxHistory"] != int64(20) {
		t.Errorf("maxHistory = %v (%T), want 20", h["maxHistory"], h["maxHistory"])
	}
	if h["enableBranching"] != true {
		t.Errorf("enableBranching = %v, want true", h["enableBranching"])
	}
	fields, ok := h["excludeFields"].([]any)
	if !ok || len(fields) != 2 || fields[1] != "card*" {
		t.Errorf("excludeFields = %v, want [password card*]", h["excludeFields"])
	}
}

func TestTOMLLoader_LoadNonExistent(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/missing.toml").Load()
	if err != nil {
		t.Fatalf("expected no error for non-existent file, got: %v", err)
	}
	if config != nil {
		t.Error("expected nil config for non-existent file")
	}
}

func TestTOMLLoader_LoadInvalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/invalid.toml", "[history\nmaxHistory = 4\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/invalid.toml").Load()
	if err == nil {
		t.Fatal("expected parse error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Path != "/invalid.toml" {
		t.Errorf("Path = %q, want /invalid.toml", parseErr.Path)
	}
	if parseErr.Line == 0 {
		t.Error("Line = 0, want the error position")
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := (&TOMLLoader{}).LoadFromReader(strings.NewReader("debounceMs = 250\n"))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if config["debounceMs"] != int64(250) {
		t.Errorf("debounceMs = %v, want 250", config["debounceMs"])
	}
}

func TestYAMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/formhist.yaml", `
history:
  debounceMs: 300
  excludeFields: [token]
`)
	memfs.AddFile("/formhist.json", `{"history": {"maxHistory": 7}}`)
	memfs.AddFile("/empty.yaml", "")

	config, err := NewYAMLLoaderWithFS(memfs, "/formhist.yaml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	h := config["history"].(map[string]any)
	if h["debounceMs"] != 300 {
		t.Errorf("debounceMs = %v (%T), want 300", h["debounceMs"], h["debounceMs"])
	}

	config, err = NewYAMLLoaderWithFS(memfs, "/formhist.json").Load()
	if err != nil {
		t.Fatalf("Load json failed: %v", err)
	}
	if got := config["history"].(map[string]any)["maxHistory"]; got != 7 {
		t.Errorf("maxHistory = %v, want 7", got)
	}

	config, err = NewYAMLLoaderWithFS(memfs, "/empty.yaml").Load()
	if err != nil || config == nil || len(config) != 0 {
		t.Errorf("empty file = %v, %v; want empty map", config, err)
	}
}

func TestYAMLLoader_LoadInvalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.yaml", "history: [unclosed\n")

	_, err := NewYAMLLoaderWithFS(memfs, "/bad.yaml").Load()
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

func TestForPath(t *testing.T) {
	memfs := NewMemFS()
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"a.toml", "*loader.TOMLLoader", false},
		{"a.TOML", "*loader.TOMLLoader", false},
		{"a.yaml", "*loader.YAMLLoader", false},
		{"a.yml", "*loader.YAMLLoader", false},
		{"a.json", "*loader.YAMLLoader", false},
		{"a.ini", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			l, err := ForPath(memfs, tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("ForPath(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ForPath(%q) error = %v", tt.path, err)
			}
			switch l.(type) {
			case *TOMLLoader:
				if tt.want != "*loader.TOMLLoader" {
					t.Errorf("ForPath(%q) = TOML loader, want %s", tt.path, tt.want)
				}
			case *YAMLLoader:
				if tt.want != "*loader.YAMLLoader" {
					t.Errorf("ForPath(%q) = YAML loader, want %s", tt.path, tt.want)
				}
			}
		})
	}
}

func TestReadFileError(t *testing.T) {
	// Reading a directory fails with something other than ErrNotExist.
	_, err := NewYAMLLoader(t.TempDir()).Load()
	if err == nil {
		t.Fatal("expected error reading a directory")
	}
	if errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want a read error", err)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"history": map[string]any{"maxHistory": 50, "debounceMs": 500},
		"logging": map[string]any{"level": "warn"},
	}
	src := map[string]any{
		"history": map[string]any{"maxHistory": 10},
		"logging": "flat",
		"extra":   true,
	}

	got := DeepMerge(dst, src)

	h := got["history"].(map[string]any)
	if h["maxHistory"] != 10 || h["debounceMs"] != 500 {
		t.Errorf("history = %v, want maxHistory 10 and debounceMs 500", h)
	}
	if got["logging"] != "flat" {
		t.Errorf("logging = %v, want flat", got["logging"])
	}
	if got["extra"] != true {
		t.Errorf("extra = %v, want true", got["extra"])
	}

	if DeepMerge(nil, nil) == nil {
		t.Error("DeepMerge(nil, nil) = nil, want empty map")
	}
}
