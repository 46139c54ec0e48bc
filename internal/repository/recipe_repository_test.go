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

func TestRecipeRepository(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRecipeRepository(pool, zerolog.Nop())
	favorites := NewFavoriteRepository(pool, zerolog.Nop())
	ctx := context.Background()

	alice := seedUser(t, pool, "alice")
	bob := seedUser(t, pool, "bob")
	flour := seedIngredient(t, pool, "flour", "g")
	eggs := seedIngredient(t, pool, "eggs", "pcs")
	breakfast := tagID(t, pool, "breakfast")
	dinner := tagID(t, pool, "dinner")

	pancakes := seedRecipe(t, pool, alice.ID, "pancakes", []int64{breakfast},
		[]model.IngredientAmount{{ID: flour, Amount: 200}, {ID: eggs, Amount: 2}})
	pie := seedRecipe(t, pool, alice.ID, "pie", []int64{dinner},
		[]model.IngredientAmount{{ID: flour, Amount: 300}})
	omelette := seedRecipe(t, pool, bob.ID, "omelette", []int64{breakfast, dinner},
		[]model.IngredientAmount{{ID: eggs, Amount: 3}})

	t.Run("GetByID", func(t *testing.T) {
		rec, err := repo.GetByID(ctx, pie.ID)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "pie", rec.Name)
		assert.Equal(t, alice.ID, rec.AuthorID)

		missing, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("List with filters", func(t *testing.T) {
		_, err := favorites.Add(ctx, bob.ID, pancakes.ID)
		require.NoError(t, err)

		tests := []struct {
			name     string
			filter   model.RecipeFilter
			expected []int64
		}{
			{
				name:     "No filter, newest first",
				filter:   model.RecipeFilter{},
				expected: []int64{omelette.ID, pie.ID, pancakes.ID},
			},
			{
				name:     "By author",
				filter:   model.RecipeFilter{AuthorID: alice.ID},
				expected: []int64{pie.ID, pancakes.ID},
			},
			{
				name:     "By tag slug",
				filter:   model.RecipeFilter{Tags: []string{"breakfast"}},
				expected: []int64{omelette.ID, pancakes.ID},
			},
			{
				name:     "By any of several tags",
				filter:   model.RecipeFilter{Tags: []string{"breakfast", "dinner"}},
				expected: []int64{omelette.ID, pie.ID, pancakes.ID},
			},
			{
				name:     "Favorited by",
				filter:   model.RecipeFilter{FavoritedBy: bob.ID},
				expected: []int64{pancakes.ID},
			},
			{
				name:     "In empty cart",
				filter:   model.RecipeFilter{InCartOf: bob.ID},
				expected: []int64{},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				recipes, total, err := repo.List(ctx, tt.filter, 10, 0)
				require.NoError(t, err)
				assert.Equal(t, len(tt.expected), total)

				ids := []int64{}
				for _, r := range recipes {
					ids = append(ids, r.ID)
				}
				assert.Equal(t, tt.expected, ids)
			})
		}
	})

	t.Run("List paginates", func(t *testing.T) {
		recipes, total, err := repo.List(ctx, model.RecipeFilter{}, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, recipes, 1)
		assert.Equal(t, pancakes.ID, recipes[0].ID)
	})

	t.Run("TagsFor and IngredientsFor", func(t *testing.T) {
		tags, err := repo.TagsFor(ctx, []int64{pancakes.ID, omelette.ID})
		require.NoError(t, err)
		assert.Len(t, tags[pancakes.ID], 1)
		assert.Len(t, tags[omelette.ID], 2)

		ingredients, err := repo.IngredientsFor(ctx, []int64{pancakes.ID})
		require.NoError(t, err)
		require.Len(t, ingredients[pancakes.ID], 2)
		assert.Equal(t, "eggs", ingredients[pancakes.ID][0].Name)
		assert.Equal(t, 2, ingredients[pancakes.ID][0].Amount)
	})

	t.Run("RecentByAuthors and CountByAuthors", func(t *testing.T) {
		recent, err := repo.RecentByAuthors(ctx, []int64{alice.ID, bob.ID}, 1)
		require.NoError(t, err)
		require.Len(t, recent[alice.ID], 1)
		assert.Equal(t, pie.ID, recent[alice.ID][0].ID)
		assert.Len(t, recent[bob.ID], 1)

		all, err := repo.RecentByAuthors(ctx, []int64{alice.ID}, -1)
		require.NoError(t, err)
		assert.Len(t, all[alice.ID], 2)

		counts, err := repo.CountByAuthors(ctx, []int64{alice.ID, bob.ID})
		require.NoError(t, err)
		assert.Equal(t, map[int64]int{alice.ID: 2, bob.ID: 1}, counts)
	})

	t.Run("Update replaces links", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)

		pie.Name = "apple pie"
		pie.CookingTime = 45
		require.NoError(t, repo.Update(ctx, tx, pie))
		require.NoError(t, repo.ReplaceTags(ctx, tx, pie.ID, []int64{breakfast}))
		require.NoError(t, repo.ReplaceIngredients(ctx, tx, pie.ID, []model.IngredientAmount{{ID: eggs, Amount: 1}}))
		require.NoError(t, tx.Commit(ctx))

		rec, err := repo.GetByID(ctx, pie.ID)
		require.NoError(t, err)
		assert.Equal(t, "apple pie", rec.Name)
		assert.Equal(t, 45, rec.CookingTime)

		tags, err := repo.TagsFor(ctx, []int64{pie.ID})
		require.NoError(t, err)
		require.Len(t, tags[pie.ID], 1)
		assert.Equal(t, "breakfast", tags[pie.ID][0].Slug)
	})

	t.Run("Duplicate ingredient rolls back", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx) //nolint:errcheck

		err = repo.ReplaceIngredients(ctx, tx, omelette.ID, []model.IngredientAmount{
			{ID: eggs, Amount: 1},
			{ID: eggs, Amount: 2},
		})
		assert.True(t, errors.Is(err, model.ErrDuplicateIngredient))
	})

	t.Run("Delete cascades", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, pancakes.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		marked, err := favorites.Marked(ctx, bob.ID, []int64{pancakes.ID})
		require.NoError(t, err)
		assert.Empty(t, marked)

		deleted, err = repo.Delete(ctx, pancakes.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}
