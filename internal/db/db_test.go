package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"webshop/internal/db/dbtest"
	"webshop/internal/models"
)

func TestOpenWithSucceeds(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "shop.db")
	db, err := openWith(context.Background(), sqlite.Open(dsn), 0, time.Millisecond, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestOpenWithGivesUpAfterRetries(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "missing", "dir", "shop.db")
	_, err := openWith(context.Background(), sqlite.Open(dsn), 2, time.Millisecond, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestOpenWithStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dsn := filepath.Join(t.TempDir(), "missing", "shop.db")
	_, err := openWith(ctx, sqlite.Open(dsn), 5, time.Second, zerolog.Nop())
	require.Error(t, err)
}

func TestSeedCategories(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	require.NoError(t, SeedCategories(ctx, db, zerolog.Nop()))
	require.NoError(t, SeedCategories(ctx, db, zerolog.Nop()))

	var n int64
	require.NoError(t, db.Model(&models.Category{}).Count(&n).Error)
	assert.Equal(t, int64(len(DefaultCategories)), n)
}

func TestEnsureAdmin(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{Username: "bob", PasswordHash: "x", Role: models.RoleCustomer}).Error)

	u, err := EnsureAdmin(ctx, db, "bob", "new-pass")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	assert.True(t, models.CheckPassword(u.PasswordHash, "new-pass"))

	u, err = EnsureAdmin(ctx, db, "alice", "pw123456")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.True(t, u.IsAdmin())

	_, err = EnsureAdmin(ctx, db, "", "pw")
	assert.Error(t, err)
}

func TestSeedAdminKeepsExistingPassword(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	require.NoError(t, SeedAdmin(ctx, db, "admin", "first", zerolog.Nop()))
	require.NoError(t, SeedAdmin(ctx, db, "admin", "second", zerolog.Nop()))
	require.NoError(t, SeedAdmin(ctx, db, "", "", zerolog.Nop()))

	var u models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&u).Error)
	assert.True(t, models.CheckPassword(u.PasswordHash, "first"))
}
