package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webshop/internal/db/dbtest"
	"webshop/internal/models"
)

func TestUsers(t *testing.T) {
	db := dbtest.Open(t)
	s := NewUsers(db)
	ctx := context.Background()

	n, err := s.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	u := &models.User{Username: "root", PasswordHash: "h", Role: models.RoleAdmin}
	require.NoError(t, s.Create(ctx, u))
	require.Error(t, s.Create(ctx, &models.User{Username: "root", PasswordHash: "h"}), "usernames are unique")

	got, err := s.FindByUsername(ctx, "root")
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())

	got.Role = models.RoleCustomer
	require.NoError(t, s.Save(ctx, got))
	n, err = s.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
