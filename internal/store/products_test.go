package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webshop/internal/db/dbtest"
	"webshop/internal/models"
)

func TestProductsInsertAndFind(t *testing.T) {
	db := dbtest.Open(t)
	s := NewProducts(db)
	ctx := context.Background()
	cat := dbtest.Category(t, db, "Books")

	p := &models.Product{
		Name:       "Go in Action",
		Price:      decimal.RequireFromString("39.90"),
		Stock:      3,
		CategoryID: cat.ID,
		ImageURL:   models.DefaultImageURL,
		Category:   cat,
	}
	require.NoError(t, s.Insert(ctx, p))
	assert.NotZero(t, p.ID)
	assert.Equal(t, uint(1), p.Version)

	got, err := s.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go in Action", got.Name)
	assert.True(t, p.Price.Equal(got.Price))
	assert.Zero(t, got.Category.ID)

	got, err = s.FindWithCategory(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Books", got.Category.Name)

	_, err = s.FindByID(ctx, p.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindWithCategory(ctx, p.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductsListWithCategory(t *testing.T) {
	db := dbtest.Open(t)
	s := NewProducts(db)
	books := dbtest.Category(t, db, "Books")
	home := dbtest.Category(t, db, "Home")
	dbtest.Product(t, db, books, "Novel", models.DefaultImageURL)
	dbtest.Product(t, db, home, "Lamp", models.DefaultImageURL)

	items, err := s.ListWithCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Lamp", items[0].Name)
	assert.Equal(t, "Home", items[0].Category.Name)
	assert.Equal(t, "Books", items[1].Category.Name)
}

func TestProductsUpdateBumpsVersion(t *testing.T) {
	db := dbtest.Open(t)
	s := NewProducts(db)
	ctx := context.Background()
	cat := dbtest.Category(t, db, "Books")
	p := dbtest.Product(t, db, cat, "Atlas", models.DefaultImageURL)

	p.Name = "World Atlas"
	p.Stock = 0
	p.Price = decimal.Zero
	require.NoError(t, s.Update(ctx, &p))
	assert.Equal(t, uint(2), p.Version)

	got, err := s.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "World Atlas", got.Name)
	assert.Equal(t, 0, got.Stock)
	assert.True(t, got.Price.IsZero())
	assert.Equal(t, uint(2), got.Version)
}

func TestProductsUpdateLastWriterWins(t *testing.T) {
	db := dbtest.Open(t)
	s := NewProducts(db)
	ctx := context.Background()
	cat := dbtest.Category(t, db, "Books")
	p := dbtest.Product(t, db, cat, "Atlas", models.DefaultImageURL)

	first, second := p, p
	first.Name = "first"
	require.NoError(t, s.Update(ctx, &first))
	assert.Equal(t, uint(2), first.Version)

	second.Name = "second"
	require.NoError(t, s.Update(ctx, &second))
	assert.Equal(t, uint(3), second.Version)

	got, err := s.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)
	assert.Equal(t, uint(3), got.Version)
}

func TestProductsUpdateDeletedRowConflicts(t *testing.T) {
	db := dbtest.Open(t)
	s := NewProducts(db)
	ctx := context.Background()
	cat := dbtest.Category(t, db, "Books")
	p := dbtest.Product(t, db, cat, "Atlas", models.DefaultImageURL)

	require.NoError(t, s.Remove(ctx, &p))
	assert.ErrorIs(t, s.Update(ctx, &p), ErrConflict)

	ok, err := s.Exists(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductsRemoveAndExists(t *testing.T) {
	db := dbtest.Open(t)
	s := NewProducts(db)
	ctx := context.Background()
	cat := dbtest.Category(t, db, "Books")
	p := dbtest.Product(t, db, cat, "Atlas", models.DefaultImageURL)

	ok, err := s.Exists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Remove(ctx, &p))
	require.NoError(t, s.Remove(ctx, &p))

	ok, err = s.Exists(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductsListCategories(t *testing.T) {
	db := dbtest.Open(t)
	s := NewProducts(db)
	dbtest.Category(t, db, "Toys")
	dbtest.Category(t, db, "Books")

	cats, err := s.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Books", cats[0].Name)
	assert.Equal(t, "Toys", cats[1].Name)
}
