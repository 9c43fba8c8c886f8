package storage

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaVersion is the newest migration shipped with this build.
const SchemaVersion = 1

// ErrDirtySchema is returned when an earlier migration stopped half way.
// The file has to be restored from a backup.
var ErrDirtySchema = errors.New("database schema is dirty")

// Migrator applies the embedded schema migrations to one database file.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator opens dbPath for migration. In-memory databases cannot be
// migrated this way because the migrator uses its own connection.
func NewMigrator(dbPath string) (*Migrator, error) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to access embedded migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for migration: %w", dbPath, err)
	}
	return &Migrator{m: m}, nil
}

// migrateURL builds the sqlite:// URL golang-migrate expects. Windows paths
// get forward slashes and a leading slash.
func migrateURL(dbPath string) string {
	p := filepath.ToSlash(dbPath)
	if filepath.IsAbs(dbPath) && p[0] != '/' {
		p = "/" + p
	}
	return "sqlite://" + p
}

// Up brings the schema to SchemaVersion. It refuses to touch a dirty schema.
func (mg *Migrator) Up() error {
	if _, dirty, err := mg.Version(); err != nil {
		return err
	} else if dirty {
		return ErrDirtySchema
	}

	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down drops every table the migrations created.
func (mg *Migrator) Down() error {
	if err := mg.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

// Version reports the applied schema version. A fresh file is version 0.
func (mg *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

// Close releases the migrator's source and database handles.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
