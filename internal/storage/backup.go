package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// backupTimeFormat names backup files so that they sort by creation time.
const backupTimeFormat = "20060102_150405"

// BackupInfo describes one backup file.
type BackupInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// BackupDir returns the default backup directory for a database path.
func BackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "backups")
}

// Backup writes a consistent copy of the open database into dir using
// VACUUM INTO, then checks that the copy holds the binder schema.
func (db *DB) Backup(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path := filepath.Join(dir, "binder_"+time.Now().Format(backupTimeFormat)+".db")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("backup %s already exists", path)
	}

	// VACUUM INTO does not accept bound parameters.
	stmt := "VACUUM INTO '" + strings.ReplaceAll(path, "'", "''") + "'"
	if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if err := VerifyBackup(path); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("backup verification failed: %w", err)
	}

	return path, nil
}

// VerifyBackup checks that path is a clean SQLite database with the
// key/value table at a schema version this build can open.
func VerifyBackup(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("backup file not found: %w", err)
	}

	conn, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open backup as database: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM kv_store").Scan(&n); err != nil {
		return fmt.Errorf("backup has no key/value table: %w", err)
	}

	var version int
	var dirty bool
	if err := conn.QueryRow("SELECT version, dirty FROM schema_migrations LIMIT 1").Scan(&version, &dirty); err != nil {
		return fmt.Errorf("backup has no schema version: %w", err)
	}
	if dirty {
		return ErrDirtySchema
	}
	if version > SchemaVersion {
		return fmt.Errorf("backup schema version %d is newer than this build (%d)", version, SchemaVersion)
	}
	return nil
}

// Restore replaces the database file at dbPath with a verified copy of
// backupPath. The database must be closed. The replaced file is kept next
// to it with an ".old.<timestamp>" suffix.
func Restore(dbPath, backupPath string) error {
	if err := VerifyBackup(backupPath); err != nil {
		return err
	}

	tempPath := dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to copy backup: %w", err)
	}

	if _, err := os.Stat(dbPath); err == nil {
		oldPath := dbPath + ".old." + time.Now().Format(backupTimeFormat)
		if err := os.Rename(dbPath, oldPath); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to keep current database: %w", err)
		}
	}
	// Stale WAL files would be replayed onto the restored database.
	_ = os.Remove(dbPath + "-wal")
	_ = os.Remove(dbPath + "-shm")

	if err := os.Rename(tempPath, dbPath); err != nil {
		return fmt.Errorf("failed to replace database: %w", err)
	}
	return nil
}

// ListBackups returns the backups in dir, newest first. A missing directory
// yields an empty list.
func ListBackups(dir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".db" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
