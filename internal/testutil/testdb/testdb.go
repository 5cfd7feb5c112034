// Package testdb opens throwaway in-memory sqlite databases carrying the
// production schema.
package testdb

import (
	"fmt"
	"testing"

	"miniloan-backend/internal/domain/loan"
	"miniloan-backend/internal/domain/payment"
	"miniloan-backend/internal/domain/user"
	"miniloan-backend/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh, migrated database private to t. A single pooled
// connection keeps the in-memory database alive and serializes writers.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", id.NewID32())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&user.User{}, &loan.Loan{}, &payment.Payment{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
