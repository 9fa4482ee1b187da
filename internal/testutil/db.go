// Package testutil provides a migrated sqlite database and catalog
// fixtures for package tests.
package testutil

import (
	"context"
	"order-payment-engine/internal/client"
	"order-payment-engine/internal/model"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns a migrated sqlite database in the test's temp dir. The
// pool holds one connection, so concurrent callers queue on the pool rather
// than fail with SQLITE_BUSY.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "orders.db") + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := client.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

// SeedProduct inserts one product and returns it.
func SeedProduct(t *testing.T, db *gorm.DB, id string, price int64, stock int) *model.Product {
	t.Helper()

	product := &model.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.NewFromInt(price),
		Currency: "INR",
		Stock:    stock,
	}
	if err := db.WithContext(context.Background()).Create(product).Error; err != nil {
		t.Fatalf("seed product %s: %v", id, err)
	}
	return product
}

// Stock reads the current stock of a product.
func Stock(t *testing.T, db *gorm.DB, id string) int {
	t.Helper()

	var product model.Product
	if err := db.Where("id = ?", id).First(&product).Error; err != nil {
		t.Fatalf("read product %s: %v", id, err)
	}
	return product.Stock
}

// History returns the status history of an order in insertion order.
func History(t *testing.T, db *gorm.DB, orderID string) []model.OrderStatusHistory {
	t.Helper()

	var entries []model.OrderStatusHistory
	if err := db.Where("order_id = ?", orderID).Order("id").Find(&entries).Error; err != nil {
		t.Fatalf("read history %s: %v", orderID, err)
	}
	return entries
}

// SetPrice changes a product's catalog price.
func SetPrice(t *testing.T, db *gorm.DB, id string, price int64) {
	t.Helper()

	if err := db.Model(&model.Product{}).Where("id = ?", id).Update("price", decimal.NewFromInt(price)).Error; err != nil {
		t.Fatalf("set price %s: %v", id, err)
	}
}
