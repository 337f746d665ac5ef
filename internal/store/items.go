package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cakedek/myitemlibrary/internal/model"
)

const itemColumns = `id, item_name, item_display, description, player, enabled, command, used`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (model.Item, error) {
	var item model.Item
	err := s.Scan(&item.ID, &item.ItemName, &item.ItemDisplay, &item.Description,
		&item.Player, &item.Enabled, &item.Command, &item.Used)
	return item, err
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func insertItem(ctx context.Context, q queryer, item model.Item, player string) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO co_list_item (item_name, item_display, description, player, enabled, command, used)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ItemName, item.ItemDisplay, item.Description, player, item.Enabled, item.Command, item.Used,
	)
	if err != nil {
		return 0, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting item id: %w", err)
	}
	return id, nil
}

// CreateItem inserts an item and returns its id.
func CreateItem(ctx context.Context, db *sql.DB, item model.Item) (int64, error) {
	return insertItem(ctx, db, item, item.Player)
}

// CreateItemForPlayers inserts one copy of item per player in a single
// transaction and returns the number of rows inserted.
func CreateItemForPlayers(ctx context.Context, db *sql.DB, item model.Item, players []string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range players {
		if _, err := insertItem(ctx, tx, item, p); err != nil {
			return 0, fmt.Errorf("creating item for %q: %w", p, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing items: %w", err)
	}
	return len(players), nil
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	return getItem(ctx, db, id)
}

func getItem(ctx context.Context, q queryer, id int64) (*model.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM co_list_item WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return &item, nil
}

// ListItems returns every item ordered by id.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM co_list_item ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return scanItems(rows)
}

// ListItemsByPlayer returns the items owned by player.
func ListItemsByPlayer(ctx context.Context, db *sql.DB, player string) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM co_list_item WHERE player = ? ORDER BY id`, player,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items for player: %w", err)
	}
	return scanItems(rows)
}

// DeleteItem removes an item and reports whether a row was affected.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM co_list_item WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("counting deleted items: %w", err)
	}
	return n > 0, nil
}

// DistinctPlayers returns every non-empty player name that owns at least one
// record. Records with an empty player are never targeted by add-item-all.
func DistinctPlayers(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT player FROM co_list_item WHERE player <> '' ORDER BY player`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	var players []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// SetItemEnabled toggles whether an item can be claimed.
func SetItemEnabled(ctx context.Context, db *sql.DB, id int64, enabled bool) error {
	_, err := db.ExecContext(ctx, `UPDATE co_list_item SET enabled = ? WHERE id = ?`, enabled, id)
	if err != nil {
		return fmt.Errorf("updating item enabled: %w", err)
	}
	return nil
}

// DecrementRemainingUses lowers the used counter by one. It may go negative.
func DecrementRemainingUses(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `UPDATE co_list_item SET used = used - 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("decrementing item uses: %w", err)
	}
	return nil
}

// ListClaimable returns enabled items of player whose name contains search.
func ListClaimable(ctx context.Context, db *sql.DB, player, search string) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM co_list_item
		 WHERE player = ? AND enabled = 1 AND item_name LIKE ? ESCAPE '\'
		 ORDER BY id`,
		player, likePattern(search),
	)
	if err != nil {
		return nil, fmt.Errorf("listing claimable items: %w", err)
	}
	return scanItems(rows)
}

// ClaimItem disables an enabled item and decrements its counter in one
// transaction. It returns the updated item, or nil if the item does not
// exist or was already claimed.
func ClaimItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE co_list_item SET enabled = 0, used = used - 1 WHERE id = ? AND enabled = 1`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("claiming item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("counting claimed items: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	item, err := getItem(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}
	return item, nil
}
