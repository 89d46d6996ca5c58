package fs

import "testing"

func TestNewIgnoreMatcher(t *testing.T) {
	t.Run("skips blank lines and comments", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"", "  ", "# comment", "*.log"})
		if len(m.patterns) != 1 {
			t.Fatalf("expected 1 pattern, got %d", len(m.patterns))
		}
		if m.patterns[0] != "*.log" {
			t.Errorf("expected *.log, got %s", m.patterns[0])
		}
	})

	t.Run("skips malformed globs", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"[", "Thumbs.db"})
		if len(m.patterns) != 1 {
			t.Fatalf("expected 1 pattern, got %d", len(m.patterns))
		}
	})
}

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		child    string
		want     bool
	}{
		{
			name:     "default hides dot-files",
			patterns: DefaultIgnorePatterns,
			child:    ".DS_Store",
			want:     true,
		},
		{
			name:     "default hides temp files",
			patterns: DefaultIgnorePatterns,
			child:    ".tmp-12345",
			want:     true,
		},
		{
			name:     "default keeps date folders",
			patterns: DefaultIgnorePatterns,
			child:    "2024-01-14",
			want:     false,
		},
		{
			name:     "default keeps entry folders",
			patterns: DefaultIgnorePatterns,
			child:    "03:03:45.522668_Shrek Eat Chips",
			want:     false,
		},
		{
			name:     "exact name",
			patterns: []string{"Thumbs.db"},
			child:    "Thumbs.db",
			want:     true,
		},
		{
			name:     "extension glob does not match other extension",
			patterns: []string{"*.txt"},
			child:    "1.png",
			want:     false,
		},
		{
			name:     "no patterns",
			patterns: nil,
			child:    ".hidden",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewIgnoreMatcher(tt.patterns)
			if got := m.Match(tt.child); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.child, got, tt.want)
			}
		})
	}
}
