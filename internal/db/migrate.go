package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"webshop/internal/models"
)

// DefaultCategories are inserted into an empty categories table.
var DefaultCategories = []string{"Electronics", "Fashion", "Home & Kitchen", "Books"}

// Migrate creates or updates the tables this app owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SeedCategories fills the categories table when it is empty.
func SeedCategories(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Category{}).Count(&n).Error; err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		return nil
	}
	cats := make([]models.Category, 0, len(DefaultCategories))
	for _, name := range DefaultCategories {
		cats = append(cats, models.Category{Name: name})
	}
	if err := db.WithContext(ctx).Create(&cats).Error; err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	log.Info().Int("count", len(cats)).Msg("seeded categories")
	return nil
}

// EnsureAdmin creates username as an admin, or promotes and re-keys an
// existing account with that name.
func EnsureAdmin(ctx context.Context, db *gorm.DB, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("admin username and password are required")
	}
	hash, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var u models.User
	err = db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = models.User{Username: username, PasswordHash: hash, Role: models.RoleAdmin}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, fmt.Errorf("create admin: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("find admin: %w", err)
	default:
		u.PasswordHash = hash
		u.Role = models.RoleAdmin
		if err := db.WithContext(ctx).Save(&u).Error; err != nil {
			return nil, fmt.Errorf("promote admin: %w", err)
		}
	}
	return &u, nil
}

// SeedAdmin creates the configured admin account unless it already exists.
// Existing accounts are left alone so a restart never resets a password.
func SeedAdmin(ctx context.Context, db *gorm.DB, username, password string, log zerolog.Logger) error {
	if username == "" || password == "" {
		return nil
	}
	var n int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := EnsureAdmin(ctx, db, username, password); err != nil {
		return err
	}
	log.Info().Str("username", username).Msg("seeded admin account")
	return nil
}
