package database

import (
	"database/sql"
	"log/slog"
	"sort"
	"sync"

	"github.com/evidenceledger/noticegen/internal/errl"
)

// MigrationFunc applies or reverts one schema change
type MigrationFunc func(db *sql.DB) error

type migration struct {
	version string
	up      MigrationFunc
	down    MigrationFunc
}

var (
	migrationsMu sync.Mutex
	migrations   = map[string]migration{}
)

// RegisterMigration adds a migration to the registry. Versions are timestamps
// like "20251209T210848" and are applied in lexical order.
// It is meant to be called from init functions.
func RegisterMigration(version string, up, down MigrationFunc) {
	migrationsMu.Lock()
	defer migrationsMu.Unlock()

	if _, exists := migrations[version]; exists {
		panic("database: duplicate migration " + version)
	}
	migrations[version] = migration{version: version, up: up, down: down}
}

func sortedMigrations() []migration {
	migrationsMu.Lock()
	defer migrationsMu.Unlock()

	list := make([]migration, 0, len(migrations))
	for _, m := range migrations {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].version < list[j].version })
	return list
}

// RunMigrationsUp applies every registered migration not yet recorded in the
// schema_migrations table.
func RunMigrationsUp(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY NOT NULL,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return errl.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range sortedMigrations() {
		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, m.version).Scan(&count); err != nil {
			return errl.Errorf("failed to check migration %s: %w", m.version, err)
		}
		if count > 0 {
			continue
		}

		if err := m.up(db); err != nil {
			return errl.Errorf("migration %s failed: %w", m.version, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
			return errl.Errorf("failed to record migration %s: %w", m.version, err)
		}

		slog.Info("Applied migration", "version", m.version)
	}

	return nil
}

// RunMigrationDown reverts the most recently applied migration, if any.
func RunMigrationDown(db *sql.DB) error {
	var version string
	err := db.QueryRow(`SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errl.Errorf("failed to find last migration: %w", err)
	}

	migrationsMu.Lock()
	m, ok := migrations[version]
	migrationsMu.Unlock()

	if !ok || m.down == nil {
		return errl.Errorf("migration %s cannot be reverted", version)
	}

	if err := m.down(db); err != nil {
		return errl.Errorf("reverting migration %s: %w", version, err)
	}
	if _, err := db.Exec(`DELETE FROM schema_migrations WHERE version = ?`, version); err != nil {
		return errl.Errorf("failed to unrecord migration %s: %w", version, err)
	}

	slog.Info("Reverted migration", "version", version)
	return nil
}
