package history

// noParent is the parent index of entries committed on top of the initial
// state.
const noParent = -1

// stack is the ordered snapshot list plus the cursor.
//
// Every entry remembers the index of the entry it was committed on top of.
// Without branching that is always the previous index; with branching, entries
// appended after an undo point back to the branch point, which keeps the
// abandoned entries in storage and reachable from their own parent.
type stack struct {
	entries  []*Snapshot
	parents  []int
	position int

	// base changes whenever the state behind position -1 changes, which
	// happens on eviction and reset.
	base uint64
}

func newStack() stack {
	return stack{position: noParent}
}

func (s *stack) len() int {
	return len(s.entries)
}

func (s *stack) canUndo() bool {
	return s.position >= 0
}

func (s *stack) canRedo() bool {
	return s.child(s.position) >= 0
}

// child returns the most recently committed entry whose parent is pos, or -1.
func (s *stack) child(pos int) int {
	for i := len(s.entries) - 1; i > pos; i-- {
		if s.parents[i] == pos {
			return i
		}
	}
	return -1
}

// push appends snap on top of the current position. Without branching, the
// entries after the position are discarded first.
func (s *stack) push(snap *Snapshot, branching bool) {
	if !branching && s.position < len(s.entries)-1 {
		keep := s.position + 1
		clear(s.entries[keep:])
		s.entries = s.entries[:keep]
		s.parents = s.parents[:keep]
	}

	s.entries = append(s.entries, snap)
	s.parents = append(s.parents, s.position)
	s.position = len(s.entries) - 1
}

// evict removes entries from the oldest end until at most limit remain and
// returns how many were removed. The position and parent links shift down by
// the same amount; entries whose parent was evicted now start from the
// initial state.
func (s *stack) evict(limit int) int {
	excess := len(s.entries) - limit
	if limit <= 0 || excess <= 0 {
		return 0
	}

	entries := make([]*Snapshot, len(s.entries)-excess)
	copy(entries, s.entries[excess:])
	parents := make([]int, len(s.parents)-excess)
	for i, p := range s.parents[excess:] {
		p -= excess
		if p < 0 {
			p = noParent
		}
		parents[i] = p
	}

	s.entries = entries
	s.parents = parents
	s.base++
	s.position -= excess
	if s.position < noParent {
		s.position = noParent
	}
	return excess
}

// undo moves the cursor to the parent of the current entry and returns the
// entry that was undone.
func (s *stack) undo() (*Snapshot, bool) {
	if !s.canUndo() {
		return nil, false
	}
	snap := s.entries[s.position]
	s.position = s.parents[s.position]
	return snap, true
}

// redo moves the cursor to the latest child of the current entry and returns
// it.
func (s *stack) redo() (*Snapshot, bool) {
	next := s.child(s.position)
	if next < 0 {
		return nil, false
	}
	s.position = next
	return s.entries[next], true
}

// lineage returns the indices from the initial state to target, oldest first.
func (s *stack) lineage(target int) []int {
	var path []int
	for i := target; i >= 0; i = s.parents[i] {
		path = append(path, i)
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

// reset drops every entry.
func (s *stack) reset() {
	s.entries = nil
	s.parents = nil
	s.position = noParent
	s.base++
}

// snapshots returns a copy of the entry list.
func (s *stack) snapshots() []*Snapshot {
	out := make([]*Snapshot, len(s.entries))
	copy(out, s.entries)
	return out
}
