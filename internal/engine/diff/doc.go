// Package diff computes, applies and inverts structural patches between
// state values.
//
// State values follow a small tagged model rather than arbitrary Go types:
//
//   - nil (null)
//   - primitives: bool, string and every integer and float kind
//   - date-like scalars: time.Time
//   - ordered sequences: []any
//   - keyed records: map[string]any
//
// This is the shape encoding/json, yaml.v3 and go-toml produce when decoding
// into an `any`. [Normalize] converts the few near-misses (map[any]any,
// []map[string]any, typed slices) into the model.
//
// # Patches
//
// A [Patch] maps dotted field paths to new values and keeps the prior values
// under the same paths so it can be inverted:
//
//	p := diff.CreatePatch(oldState, newState, []string{"password", "meta.*"})
//	if p.Empty() {
//	    return // nothing changed
//	}
//	next := diff.ApplyPatch(oldState, p)
//	back := diff.ApplyPatch(next, diff.ReversePatch(p))
//
// Records are diffed key by key, recursively. Sequences, nulls and values whose
// kind differs between the two sides are compared as a whole and recorded as a
// single change at their path. Sequence elements are never diffed
// individually.
//
// # Exclusion
//
// Exclusion patterns either name a path exactly ("password") or end in '*'
// and exclude every path starting with the prefix ("meta.*", "draft*").
//
// All functions in this package are pure and safe for concurrent use. Values
// are assumed to be acyclic.
package diff
