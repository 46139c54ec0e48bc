package repository

import (
	"context"
	"errors"
	"fmt"

	"foodgram/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const recipeColumns = `r.id, r.author_id, r.name, r.image, r.text, r.cooking_time, r.created_at`

// recipeFilterClause narrows recipes by author, tag slugs, favorites and cart.
// Zero values and empty slugs disable the corresponding condition.
const recipeFilterClause = `
	WHERE ($1::bigint = 0 OR r.author_id = $1)
	  AND (COALESCE(cardinality($2::text[]), 0) = 0 OR EXISTS (
	        SELECT 1 FROM recipe_tags rt
	        JOIN tags t ON t.id = rt.tag_id
	        WHERE rt.recipe_id = r.id AND t.slug = ANY($2)))
	  AND ($3::bigint = 0 OR EXISTS (
	        SELECT 1 FROM favorites f WHERE f.recipe_id = r.id AND f.user_id = $3))
	  AND ($4::bigint = 0 OR EXISTS (
	        SELECT 1 FROM shopping_cart_items c WHERE c.recipe_id = r.id AND c.user_id = $4))
`

// recipeRepository implements the RecipeRepository interface using PostgreSQL.
type recipeRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRecipeRepository creates a new PostgreSQL-backed recipe repository.
func NewRecipeRepository(pool *pgxpool.Pool, logger zerolog.Logger) RecipeRepository {
	return &recipeRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "recipe").Logger(),
	}
}

func scanRecipe(row pgx.Row, rec *model.Recipe) error {
	return row.Scan(
		&rec.ID,
		&rec.AuthorID,
		&rec.Name,
		&rec.Image,
		&rec.Text,
		&rec.CookingTime,
		&rec.CreatedAt,
	)
}

// BeginTx starts a new database transaction.
func (r *recipeRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts rec within tx and fills in its ID and CreatedAt.
func (r *recipeRepository) Create(ctx context.Context, tx pgx.Tx, rec *model.Recipe) error {
	query := `
		INSERT INTO recipes (author_id, name, image, text, cooking_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query, rec.AuthorID, rec.Name, rec.Image, rec.Text, rec.CookingTime).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("author_id", rec.AuthorID).Msg("failed to create recipe")
		return fmt.Errorf("failed to create recipe: %w", err)
	}

	r.logger.Debug().Int64("recipe_id", rec.ID).Msg("recipe created successfully")

	return nil
}

// Update overwrites the scalar fields of rec within tx.
func (r *recipeRepository) Update(ctx context.Context, tx pgx.Tx, rec *model.Recipe) error {
	query := `
		UPDATE recipes
		SET name = $2, image = $3, text = $4, cooking_time = $5
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, rec.ID, rec.Name, rec.Image, rec.Text, rec.CookingTime)
	if err != nil {
		r.logger.Error().Err(err).Int64("recipe_id", rec.ID).Msg("failed to update recipe")
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRecipeNotFound
	}

	return nil
}

// ReplaceTags sets the tags of a recipe within tx.
func (r *recipeRepository) ReplaceTags(ctx context.Context, tx pgx.Tx, recipeID int64, tagIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, recipeID); err != nil {
		r.logger.Error().Err(err).Int64("recipe_id", recipeID).Msg("failed to clear recipe tags")
		return fmt.Errorf("failed to clear recipe tags: %w", err)
	}

	if len(tagIDs) == 0 {
		return nil
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO recipe_tags (recipe_id, tag_id)
		SELECT $1, unnest($2::bigint[])
	`, recipeID, tagIDs)
	if err != nil {
		r.logger.Error().Err(err).Int64("recipe_id", recipeID).Msg("failed to link recipe tags")
		return fmt.Errorf("failed to link recipe tags: %w", err)
	}

	return nil
}

// ReplaceIngredients sets the ingredient amounts of a recipe within tx.
func (r *recipeRepository) ReplaceIngredients(ctx context.Context, tx pgx.Tx, recipeID int64, items []model.IngredientAmount) error {
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipeID); err != nil {
		r.logger.Error().Err(err).Int64("recipe_id", recipeID).Msg("failed to clear recipe ingredients")
		return fmt.Errorf("failed to clear recipe ingredients: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount)
		VALUES ($1, $2, $3)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, recipeID, item.ID, item.Amount)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Int64("recipe_id", recipeID).
				Int64("ingredient_id", items[i].ID).
				Msg("failed to add recipe ingredient")
			if isUniqueViolation(err) {
				return model.ErrDuplicateIngredient
			}
			return fmt.Errorf("failed to add recipe ingredient: %w", err)
		}
	}

	return nil
}

// Delete removes a recipe. Reports whether a row was removed.
func (r *recipeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("recipe_id", id).Msg("failed to delete recipe")
		return false, fmt.Errorf("failed to delete recipe: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID returns nil, nil when the recipe does not exist.
func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.id = $1`

	var rec model.Recipe
	if err := scanRecipe(r.pool.QueryRow(ctx, query, id), &rec); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("recipe_id", id).Msg("recipe not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("recipe_id", id).Msg("failed to query recipe")
		return nil, fmt.Errorf("failed to query recipe: %w", err)
	}

	return &rec, nil
}

// List returns one page of recipes matching filter, newest first, and the total count.
func (r *recipeRepository) List(ctx context.Context, filter model.RecipeFilter, limit, offset int) ([]model.Recipe, int, error) {
	args := []any{filter.AuthorID, filter.Tags, filter.FavoritedBy, filter.InCartOf}

	var total int
	countQuery := `SELECT COUNT(*) FROM recipes r ` + recipeFilterClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count recipes")
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes r ` + recipeFilterClause + `
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $5 OFFSET $6
	`

	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query recipes")
		return nil, 0, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	recipes := []model.Recipe{}
	for rows.Next() {
		var rec model.Recipe
		if err := scanRecipe(rows, &rec); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan recipe row")
			return nil, 0, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating recipe rows")
		return nil, 0, fmt.Errorf("error iterating recipes: %w", err)
	}

	return recipes, total, nil
}

// TagsFor loads the tags of many recipes at once.
func (r *recipeRepository) TagsFor(ctx context.Context, recipeIDs []int64) (map[int64][]model.Tag, error) {
	result := make(map[int64][]model.Tag, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT rt.recipe_id, t.id, t.name, t.color, t.slug
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ANY($1)
		ORDER BY t.name
	`

	rows, err := r.pool.Query(ctx, query, recipeIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(recipeIDs)).Msg("failed to query recipe tags")
		return nil, fmt.Errorf("failed to query recipe tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID int64
		var t model.Tag
		if err := rows.Scan(&recipeID, &t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan recipe tag: %w", err)
		}
		result[recipeID] = append(result[recipeID], t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe tags: %w", err)
	}

	return result, nil
}

// IngredientsFor loads the ingredient amounts of many recipes at once.
func (r *recipeRepository) IngredientsFor(ctx context.Context, recipeIDs []int64) (map[int64][]model.RecipeIngredient, error) {
	result := make(map[int64][]model.RecipeIngredient, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ANY($1)
		ORDER BY i.name, i.measurement_unit
	`

	rows, err := r.pool.Query(ctx, query, recipeIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(recipeIDs)).Msg("failed to query recipe ingredients")
		return nil, fmt.Errorf("failed to query recipe ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID int64
		var ri model.RecipeIngredient
		if err := rows.Scan(&recipeID, &ri.ID, &ri.Name, &ri.MeasurementUnit, &ri.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan recipe ingredient: %w", err)
		}
		result[recipeID] = append(result[recipeID], ri)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe ingredients: %w", err)
	}

	return result, nil
}

// RecentByAuthors returns up to perAuthor newest recipes of each author.
func (r *recipeRepository) RecentByAuthors(ctx context.Context, authorIDs []int64, perAuthor int) (map[int64][]model.Recipe, error) {
	result := make(map[int64][]model.Recipe, len(authorIDs))
	if len(authorIDs) == 0 || perAuthor == 0 {
		return result, nil
	}

	query := `
		SELECT id, author_id, name, image, text, cooking_time, created_at
		FROM (
			SELECT ` + recipeColumns + `,
			       ROW_NUMBER() OVER (PARTITION BY r.author_id ORDER BY r.created_at DESC, r.id DESC) AS rn
			FROM recipes r
			WHERE r.author_id = ANY($1)
		) ranked
		WHERE $2::int < 0 OR rn <= $2
		ORDER BY author_id, rn
	`

	rows, err := r.pool.Query(ctx, query, authorIDs, perAuthor)
	if err != nil {
		r.logger.Error().Err(err).Int("authors", len(authorIDs)).Msg("failed to query recent recipes")
		return nil, fmt.Errorf("failed to query recent recipes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.Recipe
		if err := scanRecipe(rows, &rec); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		result[rec.AuthorID] = append(result[rec.AuthorID], rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent recipes: %w", err)
	}

	return result, nil
}

// CountByAuthors returns the number of recipes of each author.
func (r *recipeRepository) CountByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int, error) {
	result := make(map[int64]int, len(authorIDs))
	if len(authorIDs) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT author_id, COUNT(*)
		FROM recipes
		WHERE author_id = ANY($1)
		GROUP BY author_id
	`, authorIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("authors", len(authorIDs)).Msg("failed to count recipes by author")
		return nil, fmt.Errorf("failed to count recipes by author: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var authorID int64
		var count int
		if err := rows.Scan(&authorID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan recipe count: %w", err)
		}
		result[authorID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe counts: %w", err)
	}

	return result, nil
}
