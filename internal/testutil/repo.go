package testutil

import (
	"bytes"
	"path/filepath"
	"testing"

	"paiid/internal/gallery"
)

// RepoLayout describes a repo tree: date -> entry folder name -> image file names.
type RepoLayout map[string]map[string][]string

// TestImage is the content written for every image by Populate.
var TestImage = []byte("\x89PNG\r\n\x1a\ntest")

// Populate creates layout below repoPath in fsys. It works with any
// FilesystemManager, so tests can use the mock or a t.TempDir tree.
func Populate(t *testing.T, fsys gallery.FilesystemManager, repoPath string, layout RepoLayout) {
	t.Helper()

	if err := fsys.MkdirAll(repoPath); err != nil {
		t.Fatalf("creating repo: %v", err)
	}
	for date, entries := range layout {
		if err := fsys.MkdirAll(filepath.Join(repoPath, date)); err != nil {
			t.Fatalf("creating date %s: %v", date, err)
		}
		for entry, images := range entries {
			entryPath := filepath.Join(repoPath, date, entry)
			if err := fsys.MkdirAll(entryPath); err != nil {
				t.Fatalf("creating entry %s: %v", entry, err)
			}
			for _, image := range images {
				if _, err := fsys.WriteFile(filepath.Join(entryPath, image), bytes.NewReader(TestImage)); err != nil {
					t.Fatalf("writing image %s: %v", image, err)
				}
			}
		}
	}
}

// Prompts returns the prompts of entries in order.
func Prompts(entries []*gallery.Entry) []string {
	prompts := make([]string, 0, len(entries))
	for _, e := range entries {
		prompts = append(prompts, e.Prompt)
	}
	return prompts
}
