package db

import (
	"path/filepath"
	"testing"
)

func TestMigrateIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := Migrate(database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var count int
	err := database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_co_list_item_%'`,
	).Scan(&count)
	if err != nil {
		t.Fatalf("counting indexes: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 indexes, got %d", count)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.sqlite3")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	if err := Migrate(database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	var mode string
	if err := database.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("reading journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected journal mode 'wal', got %q", mode)
	}
}

func TestIDsAreNotReused(t *testing.T) {
	database := NewTestDB(t)

	res, err := database.Exec(`INSERT INTO co_list_item (item_name) VALUES ('a')`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	first, _ := res.LastInsertId()

	if _, err := database.Exec(`DELETE FROM co_list_item WHERE id = ?`, first); err != nil {
		t.Fatalf("delete: %v", err)
	}

	res, err = database.Exec(`INSERT INTO co_list_item (item_name) VALUES ('b')`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	second, _ := res.LastInsertId()

	if second == first {
		t.Errorf("expected a new id after delete, got %d again", second)
	}
}
