package diff

import "strings"

// Wildcard terminates a prefix exclusion pattern.
const Wildcard = "*"

// Matcher decides whether a field path is excluded from change tracking.
//
// A plain pattern excludes the path it names and everything nested under it,
// so "secret" also hides "secret.token". A pattern ending in Wildcard excludes
// every path that starts with the text before the wildcard: "meta.*" hides
// "meta.a" but not "meta", and "draft*" hides "draft" and "drafts". A nil
// Matcher excludes nothing.
type Matcher struct {
	patterns []string
	exact    []string
	prefixes []string
}

// NewMatcher compiles a list of exclusion patterns.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{patterns: append([]string(nil), patterns...)}
	for _, p := range patterns {
		if prefix, ok := strings.CutSuffix(p, Wildcard); ok {
			m.prefixes = append(m.prefixes, prefix)
		} else {
			m.exact = append(m.exact, p)
		}
	}
	return m
}

// Excluded reports whether path matches any pattern.
func (m *Matcher) Excluded(path string) bool {
	if m == nil {
		return false
	}
	for _, p := range m.exact {
		if path == p || strings.HasPrefix(path, p+PathSeparator) {
			return true
		}
	}
	for _, p := range m.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the patterns the matcher was built from.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

// Empty reports whether the matcher has no patterns.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.patterns) == 0
}
