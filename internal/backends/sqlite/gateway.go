// Package sqlite keeps the collections in a local SQLite file, the default for a single device.
package sqlite

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvEntry is one persisted collection blob.
type kvEntry struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "kv_store" }

type Gateway struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at path and migrates the key-value table.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Gateway, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	// One connection: SQLite has a single writer, and each ":memory:" connection is its own database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return NewGateway(db)
}

func NewGateway(db *gorm.DB) (*Gateway, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, err
	}
	return &Gateway{db: db}, nil
}

func (g *Gateway) Get(ctx context.Context, key string) (string, bool, error) {
	var e kvEntry
	err := g.db.WithContext(ctx).Where(map[string]any{"key": key}).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return e.Value, true, nil
}

func (g *Gateway) Set(ctx context.Context, key string, value string) error {
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}).Error
}

// Close releases the underlying connection pool.
func (g *Gateway) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
