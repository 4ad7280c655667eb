package database

import (
	"database/sql"
)

func init() {
	RegisterMigration("20251209T210848", migration_up_20251209T210848, migration_down_20251209T210848)
}

func migration_up_20251209T210848(db *sql.DB) error {

	// Count how many times the notice of a session was downloaded
	_, err := db.Exec(`
		ALTER TABLE issuances
		ADD COLUMN downloads INTEGER NOT NULL DEFAULT 0;
	`)
	if err != nil {
		return err
	}

	return nil
}

func migration_down_20251209T210848(db *sql.DB) error {
	_, err := db.Exec(`ALTER TABLE issuances DROP COLUMN downloads;`)
	return err
}
