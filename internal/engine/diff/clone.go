package diff

import "time"

// Clone returns a deep copy of v.
//
// Records and sequences are copied recursively, dates are copied by value and
// every other value is returned as-is. Nil records and sequences stay nil.
// Cyclic values are not supported.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneRecord(t)
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	case time.Time:
		return t
	default:
		return v
	}
}

func cloneRecord(rec map[string]any) map[string]any {
	if rec == nil {
		return nil
	}
	out := make(map[string]any, len(rec))
	for key, val := range rec {
		out[key] = Clone(val)
	}
	return out
}
