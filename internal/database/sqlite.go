package database

import (
	"database/sql"
	"fmt"
	"time"

	"paiid/internal/database/migrations"
	"paiid/internal/gallery"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal implements the gallery.Journal interface using SQLite.
type SQLiteJournal struct {
	db          *sql.DB
	path        string
	operationID string
}

// NewSQLiteJournal opens the journal at path and migrates it to the latest
// schema. path can be a file path or ":memory:". Events recorded without an
// operation ID are stamped with operationID.
func NewSQLiteJournal(path string, operationID string) (*SQLiteJournal, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}

	return &SQLiteJournal{
		db:          db,
		path:        path,
		operationID: operationID,
	}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Every new connection to :memory: is a new, empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

func (s *SQLiteJournal) Record(ev *gallery.Event) error {
	if ev.OperationID == "" {
		ev.OperationID = s.operationID
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO events (id, operation_id, kind, repo, entry_date, entry_time, prompt, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.OperationID, string(ev.Kind),
		ev.Ref.Repo, ev.Ref.Date, ev.Ref.Time, ev.Ref.Prompt,
		ev.Detail, ev.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	return nil
}

func (s *SQLiteJournal) Recent(limit int) ([]*gallery.Event, error) {
	rows, err := s.db.Query(`
		SELECT id, operation_id, kind, repo, entry_date, entry_time, prompt, detail, created_at
		FROM events
		ORDER BY seq DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []*gallery.Event
	for rows.Next() {
		var (
			ev   gallery.Event
			kind string
		)
		if err := rows.Scan(&ev.ID, &ev.OperationID, &kind,
			&ev.Ref.Repo, &ev.Ref.Date, &ev.Ref.Time, &ev.Ref.Prompt,
			&ev.Detail, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		ev.Kind = gallery.EventKind(kind)
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteJournal) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteJournal) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo creates a complete copy of the journal at destPath using VACUUM INTO.
func (s *SQLiteJournal) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up journal: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteJournal) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteJournal implements gallery.Journal interface
var _ gallery.Journal = (*SQLiteJournal)(nil)
