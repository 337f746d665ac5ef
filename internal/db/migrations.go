package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: player lookups back the per-player routes and distinct player scans.
	`CREATE INDEX IF NOT EXISTS idx_co_list_item_player ON co_list_item(player)`,
	// Migration 2: the claim menu lists only enabled records of one player.
	`CREATE INDEX IF NOT EXISTS idx_co_list_item_player_enabled ON co_list_item(player, enabled)`,
}

// Migrate creates the schema and applies all migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
