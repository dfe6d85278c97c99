package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"webshop/internal/models"
)

// Products is the gorm-backed product and category store.
type Products struct {
	db *gorm.DB
}

// NewProducts creates a product store.
func NewProducts(db *gorm.DB) *Products {
	return &Products{db: db}
}

// ListWithCategory returns every product with its category, newest first.
func (s *Products) ListWithCategory(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := s.db.WithContext(ctx).Preload("Category").Order("id desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

// FindByID loads a single product without its category.
func (s *Products) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	return s.find(s.db.WithContext(ctx), id)
}

// FindWithCategory loads a single product with its category.
func (s *Products) FindWithCategory(ctx context.Context, id uint) (*models.Product, error) {
	return s.find(s.db.WithContext(ctx).Preload("Category"), id)
}

func (s *Products) find(q *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	if err := q.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return &p, nil
}

// Insert stores a new product and fills in its id and version.
func (s *Products) Insert(ctx context.Context, p *models.Product) error {
	p.ID = 0
	p.Version = 1
	// Omit the association so a preloaded Category is never upserted.
	if err := s.db.WithContext(ctx).Omit("Category").Create(p).Error; err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update writes every mutable column of p and bumps the version. The write
// wins over any edit committed since p was loaded; only a row that no
// longer exists is reported, as ErrConflict. On success p carries the
// version the row now has.
func (s *Products) Update(ctx context.Context, p *models.Product) error {
	rev := p.Revision()
	now := time.Now()
	var versions []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ?", rev.ID).
			Updates(map[string]any{
				"name":        p.Name,
				"description": p.Description,
				"price":       p.Price,
				"stock":       p.Stock,
				"category_id": p.CategoryID,
				"image_url":   p.ImageURL,
				"version":     gorm.Expr("version + 1"),
				"updated_at":  now,
			})
		if res.Error != nil {
			return fmt.Errorf("update product %d: %w", rev.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return tx.Model(&models.Product{}).Where("id = ?", rev.ID).Pluck("version", &versions).Error
	})
	if err != nil {
		return err
	}
	if len(versions) == 1 {
		p.Version = versions[0]
	} else {
		p.Version = rev.Next().Version
	}
	p.UpdatedAt = now
	return nil
}

// Remove deletes the product row. Removing a row that is already gone is not an error.
func (s *Products) Remove(ctx context.Context, p *models.Product) error {
	if err := s.db.WithContext(ctx).Delete(&models.Product{}, p.ID).Error; err != nil {
		return fmt.Errorf("remove product %d: %w", p.ID, err)
	}
	return nil
}

// Exists reports whether a product row with id is present.
func (s *Products) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check product %d: %w", id, err)
	}
	return n > 0, nil
}

// ListCategories returns every category ordered by name.
func (s *Products) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}
