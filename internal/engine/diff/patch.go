package diff

import (
	"maps"
	"slices"
)

// Kind identifies how a patch transforms a state.
type Kind uint8

const (
	// KindUpdate patches set or delete individual field paths.
	KindUpdate Kind = iota

	// KindReplace patches swap the whole state for another value.
	KindReplace
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUpdate:
		return "update"
	case KindReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// RootPath is the path under which replace patches store the whole value.
const RootPath = ""

// Patch is a set of field-level changes between two states.
//
// Changes maps each changed path to its new value and Previous maps the same
// paths to the value they replaced. A value of Absent means the key does not
// exist on that side. Replace patches keep the whole value under RootPath.
type Patch struct {
	Kind     Kind
	Changes  map[string]any
	Previous map[string]any
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return len(p.Changes) == 0
}

// Len returns the number of changed paths.
func (p Patch) Len() int {
	return len(p.Changes)
}

// Paths returns the changed paths in sorted order.
func (p Patch) Paths() []string {
	return slices.Sorted(maps.Keys(p.Changes))
}

// Clone returns a deep copy of the patch.
func (p Patch) Clone() Patch {
	return Patch{
		Kind:     p.Kind,
		Changes:  cloneRecord(p.Changes),
		Previous: cloneRecord(p.Previous),
	}
}

// Reverse returns the inverse patch by swapping Changes and Previous.
// A replace patch without a captured previous value returns ErrIrreversible.
func (p Patch) Reverse() (Patch, error) {
	if p.Kind == KindReplace {
		if _, ok := p.Previous[RootPath]; !ok {
			return Patch{}, ErrIrreversible
		}
	}
	return Patch{
		Kind:     p.Kind,
		Changes:  p.Previous,
		Previous: p.Changes,
	}, nil
}

// ReversePatch swaps Changes and Previous, keeping the kind. Unlike
// Patch.Reverse it never fails: an irreversible replace patch yields an empty
// replace patch, which ApplyPatch treats as identity.
func ReversePatch(p Patch) Patch {
	return Patch{
		Kind:     p.Kind,
		Changes:  p.Previous,
		Previous: p.Changes,
	}
}

// CreatePatch computes the patch that turns oldState into newState, skipping
// any path matched by the exclude patterns.
func CreatePatch(oldState, newState any, exclude []string) Patch {
	return CreatePatchMatching(oldState, newState, NewMatcher(exclude))
}

// CreatePatchMatching is CreatePatch with a precompiled matcher.
//
// When both states are records the result is an update patch listing every
// changed leaf path; otherwise the states are compared as a whole and a
// differing pair yields a replace patch. Equal states yield an empty patch.
func CreatePatchMatching(oldState, newState any, m *Matcher) Patch {
	p := Patch{
		Kind:     KindUpdate,
		Changes:  make(map[string]any),
		Previous: make(map[string]any),
	}

	oldRec, oldIsRec := oldState.(map[string]any)
	newRec, newIsRec := newState.(map[string]any)
	if !oldIsRec || !newIsRec {
		if !Equal(oldState, newState) && !m.Excluded(RootPath) {
			p.Kind = KindReplace
			p.Changes[RootPath] = newState
			p.Previous[RootPath] = oldState
		}
		return p
	}

	if sameRecord(oldRec, newRec) {
		return p
	}
	diffRecords(oldRec, newRec, RootPath, m, p)
	return p
}

// diffRecords records every differing key of two records into p, recursing
// into keys that hold records on both sides.
func diffRecords(oldRec, newRec map[string]any, prefix string, m *Matcher, p Patch) {
	for key, oldVal := range oldRec {
		diffField(JoinPath(prefix, key), oldVal, lookup(newRec, key), m, p)
	}
	for key, newVal := range newRec {
		if _, seen := oldRec[key]; seen {
			continue
		}
		diffField(JoinPath(prefix, key), Absent, newVal, m, p)
	}
}

func diffField(path string, oldVal, newVal any, m *Matcher, p Patch) {
	oldRec, oldIsRec := oldVal.(map[string]any)
	newRec, newIsRec := newVal.(map[string]any)
	if oldIsRec && newIsRec && oldRec != nil && newRec != nil {
		if !sameRecord(oldRec, newRec) {
			diffRecords(oldRec, newRec, path, m, p)
		}
		return
	}

	if Equal(oldVal, newVal) || m.Excluded(path) {
		return
	}
	p.Changes[path] = newVal
	p.Previous[path] = oldVal
}

// ApplyPatch returns the state produced by applying p to state.
//
// Replace patches return their stored value as-is, without copying it. Update
// patches work on a deep copy of state, so state itself is never modified;
// missing intermediate records along a path are created and Absent values
// delete their key. A non-record state is treated as an empty record.
func ApplyPatch(state any, p Patch) any {
	if p.Kind == KindReplace {
		v, ok := p.Changes[RootPath]
		if !ok {
			return state
		}
		if IsAbsent(v) {
			return nil
		}
		return v
	}

	if p.Empty() {
		return Clone(state)
	}

	rec, ok := Clone(state).(map[string]any)
	if !ok || rec == nil {
		rec = make(map[string]any)
	}
	for _, path := range p.Paths() {
		setPath(rec, path, Clone(p.Changes[path]))
	}
	return rec
}
