package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cakedek/myitemlibrary/internal/model"
)

// GormStore implements Store on PostgreSQL through gorm.
type GormStore struct {
	DB      *gorm.DB
	Timeout time.Duration
}

var _ Store = (*GormStore)(nil)

// OpenPostgres connects to dsn and migrates the item table.
func OpenPostgres(dsn string, timeout time.Duration) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := db.AutoMigrate(&model.Item{}); err != nil {
		return nil, fmt.Errorf("migrating postgres schema: %w", err)
	}

	return NewGormStore(db, timeout), nil
}

// NewGormStore wraps an open gorm connection.
func NewGormStore(db *gorm.DB, timeout time.Duration) *GormStore {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &GormStore{DB: db, Timeout: timeout}
}

func (s *GormStore) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	return s.DB.WithContext(ctx), cancel
}

func (s *GormStore) CreateItem(ctx context.Context, item model.Item) (int64, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	item.ID = 0
	if err := db.Create(&item).Error; err != nil {
		return 0, fmt.Errorf("creating item: %w", err)
	}
	return item.ID, nil
}

func (s *GormStore) CreateItemForPlayers(ctx context.Context, item model.Item, players []string) (int, error) {
	if len(players) == 0 {
		return 0, nil
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	items := make([]model.Item, len(players))
	for i, p := range players {
		items[i] = item
		items[i].ID = 0
		items[i].Player = p
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&items).Error
	})
	if err != nil {
		return 0, fmt.Errorf("creating items for players: %w", err)
	}
	return len(items), nil
}

func (s *GormStore) ListItems(ctx context.Context) ([]model.Item, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var items []model.Item
	if err := db.Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

func (s *GormStore) ListItemsByPlayer(ctx context.Context, player string) ([]model.Item, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var items []model.Item
	if err := db.Where("player = ?", player).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("listing items for player: %w", err)
	}
	return items, nil
}

func (s *GormStore) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var item model.Item
	err := db.First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return &item, nil
}

func (s *GormStore) DeleteItem(ctx context.Context, id int64) (bool, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	result := db.Delete(&model.Item{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("deleting item: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) DistinctPlayers(ctx context.Context) ([]string, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var players []string
	err := db.Model(&model.Item{}).
		Where("player <> ''").
		Distinct().
		Order("player").
		Pluck("player", &players).Error
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	return players, nil
}

func (s *GormStore) SetItemEnabled(ctx context.Context, id int64, enabled bool) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	err := db.Model(&model.Item{}).Where("id = ?", id).Update("enabled", enabled).Error
	if err != nil {
		return fmt.Errorf("updating item enabled: %w", err)
	}
	return nil
}

func (s *GormStore) DecrementRemainingUses(ctx context.Context, id int64) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	err := db.Model(&model.Item{}).Where("id = ?", id).Update("used", gorm.Expr("used - 1")).Error
	if err != nil {
		return fmt.Errorf("decrementing item uses: %w", err)
	}
	return nil
}

func (s *GormStore) ListClaimable(ctx context.Context, player, search string) ([]model.Item, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var items []model.Item
	err := db.Where("player = ? AND enabled = ? AND item_name ILIKE ?", player, true, likePattern(search)).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("listing claimable items: %w", err)
	}
	return items, nil
}

func (s *GormStore) ClaimItem(ctx context.Context, id int64) (*model.Item, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var claimed *model.Item
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Item{}).
			Where("id = ? AND enabled = ?", id, true).
			Updates(map[string]any{"enabled": false, "used": gorm.Expr("used - 1")})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		var item model.Item
		if err := tx.First(&item, id).Error; err != nil {
			return err
		}
		claimed = &item
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claiming item: %w", err)
	}
	return claimed, nil
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("getting postgres pool: %w", err)
	}
	return sqlDB.Close()
}
