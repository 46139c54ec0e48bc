package repository

import (
	"context"
	"errors"
	"testing"

	"foodgram/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewUserRepository(pool, zerolog.Nop())
	ctx := context.Background()

	alice := seedUser(t, pool, "alice")
	bob := seedUser(t, pool, "bob")

	t.Run("Create assigns id", func(t *testing.T) {
		assert.NotZero(t, alice.ID)
		assert.False(t, alice.CreatedAt.IsZero())
	})

	t.Run("Create rejects duplicate email", func(t *testing.T) {
		dup := &model.User{
			Email:        "alice@example.com",
			Username:     "alice2",
			FirstName:    "A",
			LastName:     "B",
			PasswordHash: "hash",
		}
		err := repo.Create(ctx, dup)
		assert.True(t, errors.Is(err, model.ErrEmailTaken))
	})

	t.Run("GetByID", func(t *testing.T) {
		u, err := repo.GetByID(ctx, bob.ID)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "bob", u.Username)

		missing, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("GetByIDs skips unknown ids", func(t *testing.T) {
		users, err := repo.GetByIDs(ctx, []int64{bob.ID, 999999, alice.ID})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, alice.ID, users[0].ID)
		assert.Equal(t, bob.ID, users[1].ID)

		empty, err := repo.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("GetByEmail is case-insensitive", func(t *testing.T) {
		u, err := repo.GetByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, alice.ID, u.ID)
	})

	t.Run("List is newest first", func(t *testing.T) {
		users, total, err := repo.List(ctx, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, users, 1)
		assert.Equal(t, bob.ID, users[0].ID)
	})

	t.Run("UpdatePassword", func(t *testing.T) {
		require.NoError(t, repo.UpdatePassword(ctx, alice.ID, "new-hash"))

		u, err := repo.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", u.PasswordHash)

		err = repo.UpdatePassword(ctx, 999999, "x")
		assert.True(t, errors.Is(err, model.ErrUserNotFound))
	})
}

func TestSubscriptionRepository(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewSubscriptionRepository(pool, zerolog.Nop())
	ctx := context.Background()

	alice := seedUser(t, pool, "alice")
	bob := seedUser(t, pool, "bob")
	carol := seedUser(t, pool, "carol")

	created, err := repo.Add(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Add(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, created, "second add is a no-op")

	_, err = repo.Add(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	_, err = repo.Add(ctx, alice.ID, alice.ID)
	assert.Error(t, err, "self subscription violates the check constraint")

	following, err := repo.Following(ctx, alice.ID, []int64{bob.ID, carol.ID, alice.ID})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{bob.ID: true, carol.ID: true}, following)

	authors, total, err := repo.ListAuthors(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, authors, 2)

	removed, err := repo.Remove(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	following, err = repo.Following(ctx, alice.ID, []int64{bob.ID})
	require.NoError(t, err)
	assert.Empty(t, following)
}
