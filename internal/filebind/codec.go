package filebind

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/formhistory/internal/engine/diff"
)

// Codec converts between file contents and state values.
type Codec interface {
	Decode(data []byte) (any, error)
	Encode(state any) ([]byte, error)
}

// CodecForPath picks a codec from the file extension.
func CodecForPath(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSONCodec{}, nil
	case ".yaml", ".yml":
		return YAMLCodec{}, nil
	case ".toml":
		return TOMLCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// JSONCodec reads and writes indented JSON.
type JSONCodec struct{}

func (JSONCodec) Decode(data []byte) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return diff.Normalize(numbers(v)), nil
}

func (JSONCodec) Encode(state any) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// numbers turns json.Number into int64 where the value is integral.
func numbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = numbers(t[i])
		}
	case map[string]any:
		for k := range t {
			t[k] = numbers(t[k])
		}
	}
	return v
}

// YAMLCodec reads and writes YAML.
type YAMLCodec struct{}

func (YAMLCodec) Decode(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return diff.Normalize(v), nil
}

func (YAMLCodec) Encode(state any) ([]byte, error) {
	return yaml.Marshal(state)
}

// TOMLCodec reads and writes TOML. The state must be a record.
type TOMLCodec struct{}

func (TOMLCodec) Decode(data []byte) (any, error) {
	var v map[string]any
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v == nil {
		v = map[string]any{}
	}
	return diff.Normalize(v), nil
}

func (TOMLCodec) Encode(state any) ([]byte, error) {
	if diff.KindOf(state) != diff.ValueRecord {
		return nil, fmt.Errorf("%w: toml needs a record, got %s", ErrUnsupportedState, diff.KindOf(state))
	}
	return toml.Marshal(state)
}
