package storage

import (
	"path/filepath"
	"testing"
)

// setupTestService creates a test service with a migrated temporary database file.
func setupTestService(t *testing.T) *Service {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	config := DefaultConfig(dbPath)
	config.AutoMigrate = true
	db, err := Open(config)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	service := NewService(db)
	t.Cleanup(func() {
		if err := service.Close(); err != nil {
			t.Errorf("Failed to close service: %v", err)
		}
	})

	return service
}
