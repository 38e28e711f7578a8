// Package sqlite persists category snapshots in a local SQLite file through
// gorm. Each bookmark row carries its codec record.
package sqlite

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/MrSnakeDoc/mapmarks/internal/engine"
	"github.com/MrSnakeDoc/mapmarks/internal/store"
	"github.com/MrSnakeDoc/mapmarks/internal/utils"
)

// CategoryRow is one category. Position keeps the display order.
type CategoryRow struct {
	ID        string        `gorm:"primaryKey;size:36"`
	Name      string        `gorm:"not null"`
	Position  int           `gorm:"not null;index"`
	Bookmarks []BookmarkRow `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

func (CategoryRow) TableName() string { return "categories" }

// BookmarkRow is one bookmark inside a category.
type BookmarkRow struct {
	ID         uint   `gorm:"primaryKey"`
	CategoryID string `gorm:"size:36;not null;index:idx_bookmark_slot,priority:1"`
	Position   int    `gorm:"not null;index:idx_bookmark_slot,priority:2"`
	Title      string
	Record     []byte `gorm:"not null"`
}

func (BookmarkRow) TableName() string { return "bookmarks" }

// Store implements engine.Persister on top of gorm.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the schema. An
// empty path opens a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// one connection keeps an in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			utils.Close(sqlDB)
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	store, err := New(db)
	if err != nil {
		utils.Close(sqlDB)
		return nil, err
	}
	return store, nil
}

// New wraps an existing connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&CategoryRow{}, &BookmarkRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Name() string { return "sqlite" }

// SaveCategories replaces every stored row in one transaction.
func (s *Store) SaveCategories(ctx context.Context, cats []engine.CategoryData) error {
	rows := make([]CategoryRow, 0, len(cats))
	for ci, c := range cats {
		row := CategoryRow{ID: c.ID, Name: c.Name, Position: ci}
		for bi, b := range c.Bookmarks {
			rec, err := store.EncodeBookmark(ci, bi, b)
			if err != nil {
				return err
			}
			row.Bookmarks = append(row.Bookmarks, BookmarkRow{
				CategoryID: c.ID,
				Position:   bi,
				Title:      b.Attrs.Title,
				Record:     rec,
			})
		}
		rows = append(rows, row)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&BookmarkRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear bookmarks: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&CategoryRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear categories: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert categories: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	return nil
}

// LoadCategories returns the stored snapshot in saved order.
func (s *Store) LoadCategories(ctx context.Context) ([]engine.CategoryData, error) {
	var rows []CategoryRow
	err := s.db.WithContext(ctx).
		Preload("Bookmarks", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("position").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	cats := make([]engine.CategoryData, 0, len(rows))
	for _, row := range rows {
		c := engine.CategoryData{ID: row.ID, Name: row.Name}
		for _, b := range row.Bookmarks {
			data, err := store.DecodeBookmark(b.Record)
			if err != nil {
				return nil, fmt.Errorf("bookmark %d of %s: %w", b.Position, row.ID, err)
			}
			c.Bookmarks = append(c.Bookmarks, data)
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
