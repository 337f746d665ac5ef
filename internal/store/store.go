// Package store is the data-access layer for item records.
package store

import (
	"context"
	"strings"

	"github.com/cakedek/myitemlibrary/internal/model"
)

// Store is the set of item operations the API and the claim flow rely on.
// Lookups return (nil, nil) when no record matches.
type Store interface {
	CreateItem(ctx context.Context, item model.Item) (int64, error)
	CreateItemForPlayers(ctx context.Context, item model.Item, players []string) (int, error)
	ListItems(ctx context.Context) ([]model.Item, error)
	ListItemsByPlayer(ctx context.Context, player string) ([]model.Item, error)
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	DeleteItem(ctx context.Context, id int64) (bool, error)
	DistinctPlayers(ctx context.Context) ([]string, error)
	SetItemEnabled(ctx context.Context, id int64, enabled bool) error
	DecrementRemainingUses(ctx context.Context, id int64) error
	ListClaimable(ctx context.Context, player, search string) ([]model.Item, error)
	ClaimItem(ctx context.Context, id int64) (*model.Item, error)
	Close() error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a "contains" LIKE pattern with wildcards in s escaped.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
