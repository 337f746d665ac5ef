package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cakedek/myitemlibrary/internal/model"
)

// DefaultQueryTimeout bounds every database call made through a Store.
const DefaultQueryTimeout = 5 * time.Second

// SQLStore implements Store on a database/sql connection pool.
type SQLStore struct {
	DB      *sql.DB
	Timeout time.Duration
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore wraps db. A non-positive timeout uses DefaultQueryTimeout.
func NewSQLStore(db *sql.DB, timeout time.Duration) *SQLStore {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &SQLStore{DB: db, Timeout: timeout}
}

func (s *SQLStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.Timeout)
}

func (s *SQLStore) CreateItem(ctx context.Context, item model.Item) (int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return CreateItem(ctx, s.DB, item)
}

func (s *SQLStore) CreateItemForPlayers(ctx context.Context, item model.Item, players []string) (int, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return CreateItemForPlayers(ctx, s.DB, item, players)
}

func (s *SQLStore) ListItems(ctx context.Context) ([]model.Item, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return ListItems(ctx, s.DB)
}

func (s *SQLStore) ListItemsByPlayer(ctx context.Context, player string) ([]model.Item, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return ListItemsByPlayer(ctx, s.DB, player)
}

func (s *SQLStore) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return GetItem(ctx, s.DB, id)
}

func (s *SQLStore) DeleteItem(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return DeleteItem(ctx, s.DB, id)
}

func (s *SQLStore) DistinctPlayers(ctx context.Context) ([]string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return DistinctPlayers(ctx, s.DB)
}

func (s *SQLStore) SetItemEnabled(ctx context.Context, id int64, enabled bool) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return SetItemEnabled(ctx, s.DB, id, enabled)
}

func (s *SQLStore) DecrementRemainingUses(ctx context.Context, id int64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return DecrementRemainingUses(ctx, s.DB, id)
}

func (s *SQLStore) ListClaimable(ctx context.Context, player, search string) ([]model.Item, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return ListClaimable(ctx, s.DB, player, search)
}

func (s *SQLStore) ClaimItem(ctx context.Context, id int64) (*model.Item, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return ClaimItem(ctx, s.DB, id)
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.DB.Close()
}
