package diff

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		value any
		want  ValueKind
	}{
		{nil, ValueNull},
		{Absent, ValueAbsent},
		{"s", ValuePrimitive},
		{3, ValuePrimitive},
		{true, ValuePrimitive},
		{time.Now(), ValueDate},
		{[]any{}, ValueSequence},
		{map[string]any{}, ValueRecord},
		{struct{}{}, ValuePrimitive},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.value))
		})
	}
}

func TestEqual(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"strings", "a", "a", true},
		{"different strings", "a", "b", false},
		{"int and float", 2, 2.0, true},
		{"int and uint", int64(5), uint8(5), true},
		{"negative int and uint", -1, uint64(math.MaxUint64), false},
		{"large ints", int64(1 << 60), int64(1<<60 + 1), false},
		{"int beyond float precision", int64(1<<53 + 1), float64(1 << 53), false},
		{"uint beyond float precision", uint64(1<<63 + 1), float64(1 << 63), false},
		{"large int and exact float", int64(1 << 62), float64(1 << 62), true},
		{"int and fractional float", 2, 2.5, false},
		{"int and out of range float", int64(math.MaxInt64), math.Inf(1), false},
		{"uint and negative float", uint(0), -1.0, false},
		{"int and nan", 0, math.NaN(), false},
		{"nan", math.NaN(), math.NaN(), true},
		{"number and string", 1, "1", false},
		{"bools", true, true, true},
		{"null and absent", nil, Absent, false},
		{"nulls", nil, nil, true},
		{"dates in different zones", at, at.In(time.FixedZone("x", 3600)), true},
		{"different dates", at, at.Add(time.Second), false},
		{"sequences", []any{1, "a"}, []any{1, "a"}, true},
		{"sequence order", []any{1, 2}, []any{2, 1}, false},
		{"sequence length", []any{1}, []any{1, 1}, false},
		{"records", map[string]any{"a": 1, "b": []any{2}}, map[string]any{"b": []any{2}, "a": 1}, true},
		{"record key sets", map[string]any{"a": 1}, map[string]any{"b": 1}, false},
		{"record and sequence", map[string]any{}, []any{}, false},
		{"opaque values", []string{"a"}, []string{"a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	original := map[string]any{
		"name": "x",
		"at":   at,
		"list": []any{map[string]any{"k": 1}},
		"sub":  map[string]any{"n": 1},
	}

	c := Clone(original).(map[string]any)
	c["sub"].(map[string]any)["n"] = 2
	c["list"].([]any)[0].(map[string]any)["k"] = 2
	c["name"] = "y"

	assert.Equal(t, 1, original["sub"].(map[string]any)["n"])
	assert.Equal(t, 1, original["list"].([]any)[0].(map[string]any)["k"])
	assert.Equal(t, "x", original["name"])
	assert.Equal(t, at, c["at"])
}

func TestClonePreservesNil(t *testing.T) {
	var seq []any
	var rec map[string]any

	assert.Nil(t, Clone(seq))
	assert.Nil(t, Clone(rec))
	assert.Nil(t, Clone(nil))
}

func TestNormalize(t *testing.T) {
	at := time.Unix(0, 0)
	in := map[string]any{
		"legacy": map[any]any{"a": 1, 2: "two"},
		"rows":   []map[string]any{{"x": 1}},
		"names":  []string{"a", "b"},
		"when":   &at,
		"labels": map[string]string{"k": "v"},
	}

	out := Normalize(in)

	want := map[string]any{
		"legacy": map[string]any{"a": 1, "2": "two"},
		"rows":   []any{map[string]any{"x": 1}},
		"names":  []any{"a", "b"},
		"when":   at,
		"labels": map[string]any{"k": "v"},
	}
	assert.Equal(t, want, out)
}

func TestMatcher(t *testing.T) {
	m := NewMatcher([]string{"password", "meta.*", "draft*"})

	tests := []struct {
		path string
		want bool
	}{
		{"password", true},
		{"password.hash", true},
		{"passwords", false},
		{"meta", false},
		{"meta.a", true},
		{"meta.a.b", true},
		{"draft", true},
		{"drafts", true},
		{"name", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Excluded(tt.path))
		})
	}

	var nilMatcher *Matcher
	assert.False(t, nilMatcher.Excluded("anything"))
	assert.True(t, nilMatcher.Empty())
	assert.Equal(t, []string{"password", "meta.*", "draft*"}, m.Patterns())
}

func TestGetPath(t *testing.T) {
	state := map[string]any{"a": map[string]any{"b": "c"}}

	v, ok := GetPath(state, "a.b")
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok = GetPath(state, "a.x")
	assert.False(t, ok)

	_, ok = GetPath(state, "a.b.c")
	assert.False(t, ok)
}
