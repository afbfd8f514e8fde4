package diff

import (
	"fmt"
	"time"
)

// ValueKind classifies a value in the state model.
type ValueKind uint8

const (
	// ValueAbsent marks a record key that does not exist.
	ValueAbsent ValueKind = iota

	// ValueNull is an explicit nil.
	ValueNull

	// ValuePrimitive covers bools, strings, numbers and any opaque scalar.
	ValuePrimitive

	// ValueDate is a time.Time.
	ValueDate

	// ValueSequence is an ordered []any.
	ValueSequence

	// ValueRecord is a keyed map[string]any.
	ValueRecord
)

// String returns a human-readable name for the kind.
func (k ValueKind) String() string {
	switch k {
	case ValueAbsent:
		return "absent"
	case ValueNull:
		return "null"
	case ValuePrimitive:
		return "primitive"
	case ValueDate:
		return "date"
	case ValueSequence:
		return "sequence"
	case ValueRecord:
		return "record"
	default:
		return "unknown"
	}
}

type absentValue struct{}

// String makes Absent readable in logs and test failures.
func (absentValue) String() string { return "<absent>" }

// Absent stands in for a record key that is missing on one side of a diff.
// Applying a patch whose value at a path is Absent deletes that key.
var Absent any = absentValue{}

// IsAbsent reports whether v is the Absent marker.
func IsAbsent(v any) bool {
	_, ok := v.(absentValue)
	return ok
}

// KindOf returns the kind of v.
func KindOf(v any) ValueKind {
	switch v.(type) {
	case nil:
		return ValueNull
	case absentValue:
		return ValueAbsent
	case time.Time:
		return ValueDate
	case []any:
		return ValueSequence
	case map[string]any:
		return ValueRecord
	default:
		return ValuePrimitive
	}
}

// lookup returns the value stored under key, or Absent.
func lookup(rec map[string]any, key string) any {
	if v, ok := rec[key]; ok {
		return v
	}
	return Absent
}

// Normalize converts decoder output that falls just outside the state model
// into it: map[any]any and map[string]string become records, typed slices
// become []any. It returns a new value and never mutates v.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[keyString(k)] = Normalize(val)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = val
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case []string:
		return toSequence(t)
	case []int:
		return toSequence(t)
	case []int64:
		return toSequence(t)
	case []float64:
		return toSequence(t)
	case []bool:
		return toSequence(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	default:
		return v
	}
}

func toSequence[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func keyString(k any) string {
	switch t := k.(type) {
	case string:
		return t
	case interface{ String() string }:
		return t.String()
	default:
		return fmt.Sprint(k)
	}
}
