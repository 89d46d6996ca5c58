package testutil

import (
	"testing"

	"paiid/internal/database"
	"paiid/internal/gallery"
)

// NewTestJournal creates a new in-memory SQLite journal with schema applied.
// The journal is automatically closed when the test completes.
func NewTestJournal(t *testing.T) gallery.Journal {
	t.Helper()

	j, err := database.NewSQLiteJournal(":memory:", "op-test")
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}

	t.Cleanup(func() {
		j.Close()
	})

	return j
}
