package diff

import "strings"

// PathSeparator joins the keys of a field path.
const PathSeparator = "."

// JoinPath appends key to a parent path.
func JoinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + PathSeparator + key
}

// SplitPath splits a dotted field path into its keys.
func SplitPath(path string) []string {
	return strings.Split(path, PathSeparator)
}

// GetPath retrieves the value at a dotted path inside a record.
func GetPath(state any, path string) (any, bool) {
	current := state
	for _, part := range SplitPath(path) {
		rec, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		val, exists := rec[part]
		if !exists {
			return nil, false
		}
		current = val
	}
	return current, true
}

// setPath stores value at a dotted path inside rec, creating intermediate
// records as needed. An Absent value deletes the leaf key instead.
func setPath(rec map[string]any, path string, value any) {
	parts := SplitPath(path)
	current := rec

	for _, part := range parts[:len(parts)-1] {
		if next, ok := current[part].(map[string]any); ok && next != nil {
			current = next
			continue
		}
		next := make(map[string]any)
		current[part] = next
		current = next
	}

	leaf := parts[len(parts)-1]
	if IsAbsent(value) {
		delete(current, leaf)
		return
	}
	current[leaf] = value
}
