package models

import "github.com/shopspring/decimal"

// DefaultImageURL is served for products saved without an upload.
const DefaultImageURL = "/images/default-product.png"

// Product is the products table.
type Product struct {
	Base
	Name        string          `gorm:"size:200;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	CategoryID  uint            `gorm:"index;not null"`
	Category    Category        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	ImageURL    string          `gorm:"size:512;not null;default:'/images/default-product.png'"` // public path, e.g. "/images/products/<uuid>_photo.png"
}

// HasDefaultImage reports whether the product points at the shared placeholder.
func (p Product) HasDefaultImage() bool {
	return p.ImageURL == "" || p.ImageURL == DefaultImageURL
}

// Category is the categories table. Products reference it; this app never edits it.
type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;uniqueIndex;not null"`
}
