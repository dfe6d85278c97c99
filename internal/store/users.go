package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"webshop/internal/models"
)

// Users is the gorm-backed account store.
type Users struct {
	db *gorm.DB
}

// NewUsers creates a user store.
func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// FindByUsername loads an account by its login name.
func (s *Users) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	return &u, nil
}

// Create inserts a new account.
func (s *Users) Create(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user %q: %w", u.Username, err)
	}
	return nil
}

// Save writes every column of an existing account.
func (s *Users) Save(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return fmt.Errorf("save user %q: %w", u.Username, err)
	}
	return nil
}

// CountAdmins returns how many admin accounts exist.
func (s *Users) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}
