// Package dbtest provides an in-memory database for tests.
package dbtest

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"webshop/internal/models"
)

// Open returns a fresh, migrated in-memory sqlite database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// every connection to ":memory:" is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// Category inserts a category named name.
func Category(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return c
}

// Product inserts a product in category c with the given image path.
func Product(t *testing.T, db *gorm.DB, c models.Category, name, imageURL string) models.Product {
	t.Helper()
	p := models.Product{
		Base:        models.Base{Version: 1},
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString("9.99"),
		Stock:       5,
		CategoryID:  c.ID,
		ImageURL:    imageURL,
	}
	if err := db.Omit("Category").Create(&p).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return p
}
