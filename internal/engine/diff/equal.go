package diff

import (
	"math"
	"reflect"
	"time"
)

// Equal reports whether a and b are structurally equal.
//
// Records are equal when they hold the same keys with equal values; key order
// is irrelevant. Sequences are compared element by element and are order
// sensitive. Dates compare by instant. Numbers compare by value regardless of
// their Go type, so int(1) equals float64(1). Anything outside the state model
// falls back to reflect.DeepEqual.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}

	switch ka {
	case ValueAbsent, ValueNull:
		return true
	case ValueDate:
		return a.(time.Time).Equal(b.(time.Time))
	case ValueSequence:
		return equalSequences(a.([]any), b.([]any))
	case ValueRecord:
		return equalRecords(a.(map[string]any), b.(map[string]any))
	default:
		return equalPrimitives(a, b)
	}
}

func equalSequences(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	if sameSequence(a, b) {
		return true
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalRecords(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	if sameRecord(a, b) {
		return true
	}
	for key, av := range a {
		bv, ok := b[key]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}

// sameSequence reports whether a and b share the same backing array and length.
func sameSequence(a, b []any) bool {
	return len(a) > 0 && len(a) == len(b) && &a[0] == &b[0]
}

// sameRecord reports whether a and b are the same map.
func sameRecord(a, b map[string]any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}

func equalPrimitives(a, b any) bool {
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)
		if !ok {
			return false
		}
		return na.equal(nb)
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return reflect.DeepEqual(a, b)
}

// number is a numeric value normalized to one of three representations.
type number struct {
	kind byte // 'i' signed, 'u' unsigned, 'f' float
	i    int64
	u    uint64
	f    float64
}

func toNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int:
		return number{kind: 'i', i: int64(n)}, true
	case int8:
		return number{kind: 'i', i: int64(n)}, true
	case int16:
		return number{kind: 'i', i: int64(n)}, true
	case int32:
		return number{kind: 'i', i: int64(n)}, true
	case int64:
		return number{kind: 'i', i: n}, true
	case uint:
		return number{kind: 'u', u: uint64(n)}, true
	case uint8:
		return number{kind: 'u', u: uint64(n)}, true
	case uint16:
		return number{kind: 'u', u: uint64(n)}, true
	case uint32:
		return number{kind: 'u', u: uint64(n)}, true
	case uint64:
		return number{kind: 'u', u: n}, true
	case float32:
		return number{kind: 'f', f: float64(n)}, true
	case float64:
		return number{kind: 'f', f: n}, true
	default:
		return number{}, false
	}
}

func (n number) equal(o number) bool {
	switch {
	case n.kind == 'i' && o.kind == 'i':
		return n.i == o.i
	case n.kind == 'u' && o.kind == 'u':
		return n.u == o.u
	case n.kind == 'i' && o.kind == 'u':
		return n.i >= 0 && uint64(n.i) == o.u
	case n.kind == 'u' && o.kind == 'i':
		return o.i >= 0 && uint64(o.i) == n.u
	case n.kind == 'f' && o.kind == 'f':
		if math.IsNaN(n.f) && math.IsNaN(o.f) {
			return true
		}
		return n.f == o.f
	case n.kind == 'f':
		return o.equalFloat(n.f)
	default:
		return n.equalFloat(o.f)
	}
}

// equalFloat compares an integer n with f exactly. f must be integral and
// within the range of n's type.
func (n number) equalFloat(f float64) bool {
	if f != math.Trunc(f) {
		return false
	}
	switch n.kind {
	case 'i':
		if f < -(1<<63) || f >= 1<<63 {
			return false
		}
		return int64(f) == n.i
	default:
		if f < 0 || f >= 1<<64 {
			return false
		}
		return uint64(f) == n.u
	}
}
