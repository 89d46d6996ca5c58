package migrations

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	err := MigrateUp(db)
	if err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{"events", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	err := CheckDBMigrationStatus(db)
	if err == nil {
		t.Error("CheckDBMigrationStatus() expected error for fresh database, got nil")
	}

	if !errors.Is(err, ErrNoSchema) {
		t.Errorf("CheckDBMigrationStatus() error = %v, want ErrNoSchema", err)
	}
}

func TestLatestVersion(t *testing.T) {
	latest, err := LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion() failed: %v", err)
	}
	if latest != 2 {
		t.Errorf("LatestVersion() = %d, want 2", latest)
	}
}

func TestReadStatus(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	st, err := ReadStatus(db)
	if err != nil {
		t.Fatalf("ReadStatus() on fresh database failed: %v", err)
	}
	if st.Version != 0 || st.Dirty || st.Behind() != st.Latest {
		t.Errorf("fresh status = %+v, behind %d", st, st.Behind())
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}
	st, err = ReadStatus(db)
	if err != nil {
		t.Fatalf("ReadStatus() failed: %v", err)
	}
	if st.Version != st.Latest || st.Behind() != 0 {
		t.Errorf("migrated status = %+v", st)
	}
}

func TestCheckDBMigrationStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Status should be OK now
	err := CheckDBMigrationStatus(db)
	if err != nil {
		t.Errorf("CheckDBMigrationStatus() after migration returned error: %v", err)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Run migration twice
	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}

	// Status should still be OK
	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() after double migration returned error: %v", err)
	}
}

func TestCheckDBMigrationStatus_Behind(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	m, err := newMigrate(db)
	if err != nil {
		t.Fatalf("newMigrate() failed: %v", err)
	}
	if err := m.Steps(-1); err != nil {
		t.Fatalf("Steps(-1) failed: %v", err)
	}

	err = CheckDBMigrationStatus(db)
	if err == nil {
		t.Fatal("CheckDBMigrationStatus() expected error for outdated database, got nil")
	}
	if !strings.Contains(err.Error(), "migrations behind") {
		t.Errorf("CheckDBMigrationStatus() error = %q, want it to mention migrations behind", err.Error())
	}
}

func TestSchema_EventIDUnique(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	insert := "INSERT INTO events (id, operation_id, kind, created_at) VALUES ('ev-1', 'op-1', 'generate', datetime('now'))"
	if _, err := db.Exec(insert); err != nil {
		t.Fatalf("Failed to insert first event: %v", err)
	}

	// Same id again should fail due to UNIQUE constraint
	if _, err := db.Exec(insert); err == nil {
		t.Error("Expected unique constraint violation for duplicate event id, but insert succeeded")
	}
}

func TestSchema_EventDefaults(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	_, err := db.Exec("INSERT INTO events (id, operation_id, kind, created_at) VALUES ('ev-1', 'op-1', 'switch_repo', datetime('now'))")
	if err != nil {
		t.Fatalf("Failed to insert event: %v", err)
	}

	var repo, date, prompt string
	err = db.QueryRow("SELECT repo, entry_date, prompt FROM events WHERE id = 'ev-1'").Scan(&repo, &date, &prompt)
	if err != nil {
		t.Fatalf("Failed to retrieve event: %v", err)
	}
	if repo != "" || date != "" || prompt != "" {
		t.Errorf("Defaults = (%q, %q, %q), want empty strings", repo, date, prompt)
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Every new connection to :memory: is a new, empty database.
	db.SetMaxOpenConns(1)

	return db
}
