package fs

import (
	"path/filepath"
	"strings"
)

// DefaultIgnorePatterns hide dot-files (.DS_Store, in-flight .tmp-* writes)
// from every listing.
var DefaultIgnorePatterns = []string{".*"}

// IgnoreMatcher checks directory child names against a set of glob patterns.
type IgnoreMatcher struct {
	patterns []string
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines, lines starting with '#', and malformed globs are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []string
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if _, err := filepath.Match(raw, ""); err != nil {
			continue
		}
		patterns = append(patterns, raw)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether the child name should be hidden.
func (m *IgnoreMatcher) Match(name string) bool {
	for _, p := range m.patterns {
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}
