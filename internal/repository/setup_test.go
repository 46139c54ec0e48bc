package repository

import (
	"context"
	"testing"
	"time"

	"foodgram/internal/database"
	"foodgram/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the application
// schema applied and returns a connection pool.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := database.Connect(ctx, connStr, database.DefaultPoolOptions())
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})

	return pool
}

// seedUser inserts a user with the given username.
func seedUser(t *testing.T, pool *pgxpool.Pool, username string) *model.User {
	t.Helper()

	u := &model.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "First",
		LastName:     "Last",
		PasswordHash: "hash",
	}
	require.NoError(t, NewUserRepository(pool, zerolog.Nop()).Create(context.Background(), u))
	return u
}

// seedIngredient inserts an ingredient and returns its id.
func seedIngredient(t *testing.T, pool *pgxpool.Pool, name, unit string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO ingredients (name, measurement_unit) VALUES ($1, $2) RETURNING id`,
		name, unit).Scan(&id)
	require.NoError(t, err)
	return id
}

// tagID returns the id of a seeded tag.
func tagID(t *testing.T, pool *pgxpool.Pool, slug string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `SELECT id FROM tags WHERE slug = $1`, slug).Scan(&id)
	require.NoError(t, err)
	return id
}

// seedRecipe creates a recipe with tags and ingredients in one transaction.
func seedRecipe(t *testing.T, pool *pgxpool.Pool, authorID int64, name string, tags []int64, items []model.IngredientAmount) *model.Recipe {
	t.Helper()
	ctx := context.Background()

	repo := NewRecipeRepository(pool, zerolog.Nop())
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	rec := &model.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Image:       "recipes/images/" + name + ".png",
		Text:        "Cook it.",
		CookingTime: 10,
	}
	require.NoError(t, repo.Create(ctx, tx, rec))
	require.NoError(t, repo.ReplaceTags(ctx, tx, rec.ID, tags))
	require.NoError(t, repo.ReplaceIngredients(ctx, tx, rec.ID, items))
	require.NoError(t, tx.Commit(ctx))

	return rec
}
