package client

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"joincloud-billing/internal/model"
)

// InitSqliteClient opens the local activation journal. A single-file sqlite
// database is enough here: the journal is per-process dedup state, not the
// system of record for licenses.
func InitSqliteClient(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.AutoMigrate(&model.ActivationRecord{}); err != nil {
		return nil, fmt.Errorf("migrate activation journal: %w", err)
	}

	return db, nil
}
