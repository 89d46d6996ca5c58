package database

import (
	"fmt"
	"os"
	"path/filepath"

	"paiid/internal/config"
	"paiid/internal/gallery"
)

// journalFileName is the SQLite file created inside JournalConfig.DataDir.
const journalFileName = "journal.db"

// NewJournalFromConfig creates a Journal implementation based on the journal
// config type. Type "none" returns a nil Journal, which disables recording.
func NewJournalFromConfig(cfg config.JournalConfig, operationID string) (gallery.Journal, error) {
	var path string
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite journal")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
		path = filepath.Join(cfg.DataDir, journalFileName)
	case "memory":
		path = ":memory:"
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}

	j, err := NewSQLiteJournal(path, operationID)
	if err != nil {
		return nil, err
	}
	return j, nil
}
