package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. AUTOINCREMENT keeps ids from being
// reused after the highest row is deleted.
const schema = `
CREATE TABLE IF NOT EXISTS co_list_item (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    item_name    TEXT NOT NULL DEFAULT '',
    item_display TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    player       TEXT NOT NULL DEFAULT '',
    enabled      BOOLEAN NOT NULL DEFAULT 1,
    command      TEXT NOT NULL DEFAULT '',
    used         INTEGER NOT NULL DEFAULT 0
);
`

// EnsureSchema creates all tables if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
