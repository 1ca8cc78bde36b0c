package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gunnas32/QR-Stock/internal/model"
)

// PostgresStore persists items and ledger entries incrementally instead of
// rewriting a snapshot: one upsert plus one append per mutation, in a single
// database transaction.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context) ([]*model.Item, error) {
	var items []*model.Item
	if err := s.db.WithContext(ctx).Order("code").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	var entries []model.Entry
	if err := s.db.WithContext(ctx).Order("item_code, at, id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	byCode := make(map[string]*model.Item, len(items))
	for _, it := range items {
		it.History = []model.Entry{}
		byCode[it.Code] = it
	}
	for _, e := range entries {
		it, ok := byCode[e.ItemCode]
		if !ok {
			// Entry without an item row; keep loading, the registry will log
			// anything the replay check turns up.
			continue
		}
		it.History = append(it.History, e)
	}
	return items, nil
}

func (s *PostgresStore) SaveItem(ctx context.Context, item *model.Item, entry *model.Entry) error {
	row := *item
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			UpdateAll: true,
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert item %s: %w", item.Code, err)
		}
		if entry != nil {
			e := *entry
			e.ItemCode = item.Code
			if err := tx.Create(&e).Error; err != nil {
				return fmt.Errorf("append entry for %s: %w", item.Code, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) Rename(ctx context.Context, oldCode string, item *model.Item) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Item{}).Where("code = ?", oldCode).
			Updates(map[string]any{"code": item.Code, "updated_at": item.UpdatedAt})
		if res.Error != nil {
			return fmt.Errorf("rename item %s: %w", oldCode, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("rename item %s: no row", oldCode)
		}
		if err := tx.Model(&model.Entry{}).Where("item_code = ?", oldCode).
			Update("item_code", item.Code).Error; err != nil {
			return fmt.Errorf("rename ledger of %s: %w", oldCode, err)
		}
		return nil
	})
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
