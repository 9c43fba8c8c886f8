package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func tableExists(t *testing.T, dbPath, table string) bool {
	t.Helper()
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	var name string
	err = conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("Failed to query schema: %v", err)
	}
	return true
}

func TestMigrator_UpIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	for i := 0; i < 2; i++ {
		mgr, err := NewMigrator(dbPath)
		if err != nil {
			t.Fatalf("Failed to create migrator: %v", err)
		}
		if err := mgr.Up(); err != nil {
			t.Fatalf("Up run %d failed: %v", i+1, err)
		}
		if err := mgr.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	if !tableExists(t, dbPath, "kv_store") {
		t.Error("Expected kv_store table after Up")
	}
}

func TestMigrator_Down(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	mgr, err := NewMigrator(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migrator: %v", err)
	}
	defer mgr.Close()

	if err := mgr.Up(); err != nil {
		t.Fatalf("Up failed: %v", err)
	}
	if err := mgr.Down(); err != nil {
		t.Fatalf("Down failed: %v", err)
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != 0 || dirty {
		t.Errorf("Expected version 0 clean after Down, got %d dirty=%v", version, dirty)
	}
	if tableExists(t, dbPath, "kv_store") {
		t.Error("Expected kv_store table to be dropped")
	}
}

func markSchema(t *testing.T, dbPath string, version int, dirty bool) {
	t.Helper()
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Exec("UPDATE schema_migrations SET version = ?, dirty = ?", version, dirty); err != nil {
		t.Fatalf("Failed to update schema_migrations: %v", err)
	}
}

func TestMigrator_RefusesDirtySchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	mgr, err := NewMigrator(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migrator: %v", err)
	}
	if err := mgr.Up(); err != nil {
		t.Fatalf("Up failed: %v", err)
	}
	mgr.Close()

	markSchema(t, dbPath, 1, true)

	mgr, err = NewMigrator(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migrator: %v", err)
	}
	defer mgr.Close()

	if err := mgr.Up(); !errors.Is(err, ErrDirtySchema) {
		t.Errorf("Expected ErrDirtySchema, got %v", err)
	}
}

func TestMigrateURL(t *testing.T) {
	if got := migrateURL("/data/binder.db"); got != "sqlite:///data/binder.db" {
		t.Errorf("Unexpected URL %s", got)
	}
}
