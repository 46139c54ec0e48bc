package repository

import (
	"context"
	"fmt"

	"foodgram/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Tables backing per-user recipe sets.
const (
	favoritesTable    = "favorites"
	shoppingCartTable = "shopping_cart_items"
)

// interactionRepository implements InteractionRepository over one
// (user_id, recipe_id) junction table.
type interactionRepository struct {
	pool   *pgxpool.Pool
	table  string
	logger zerolog.Logger
}

// NewFavoriteRepository creates a PostgreSQL-backed favorites repository.
func NewFavoriteRepository(pool *pgxpool.Pool, logger zerolog.Logger) InteractionRepository {
	return newInteractionRepository(pool, favoritesTable, logger)
}

// NewShoppingCartRepository creates a PostgreSQL-backed shopping cart repository.
func NewShoppingCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) ShoppingCartRepository {
	return &shoppingCartRepository{
		interactionRepository: newInteractionRepository(pool, shoppingCartTable, logger),
	}
}

func newInteractionRepository(pool *pgxpool.Pool, table string, logger zerolog.Logger) *interactionRepository {
	return &interactionRepository{
		pool:   pool,
		table:  table,
		logger: logger.With().Str("repository", table).Logger(),
	}
}

// Add puts the recipe in the user's set. Reports whether a row was created.
func (r *interactionRepository) Add(ctx context.Context, userID, recipeID int64) (bool, error) {
	query := `INSERT INTO ` + r.table + ` (user_id, recipe_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, userID, recipeID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Int64("recipe_id", recipeID).
			Msg("failed to add recipe")
		return false, fmt.Errorf("failed to add recipe to %s: %w", r.table, err)
	}

	return tag.RowsAffected() == 1, nil
}

// Remove takes the recipe out of the user's set. Reports whether a row was removed.
func (r *interactionRepository) Remove(ctx context.Context, userID, recipeID int64) (bool, error) {
	query := `DELETE FROM ` + r.table + ` WHERE user_id = $1 AND recipe_id = $2`

	tag, err := r.pool.Exec(ctx, query, userID, recipeID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Int64("recipe_id", recipeID).
			Msg("failed to remove recipe")
		return false, fmt.Errorf("failed to remove recipe from %s: %w", r.table, err)
	}

	return tag.RowsAffected() == 1, nil
}

// Marked reports which of recipeIDs are in the user's set.
func (r *interactionRepository) Marked(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return result, nil
	}

	query := `SELECT recipe_id FROM ` + r.table + ` WHERE user_id = $1 AND recipe_id = ANY($2)`

	rows, err := r.pool.Query(ctx, query, userID, recipeIDs)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query marked recipes")
		return nil, fmt.Errorf("failed to query %s: %w", r.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.table, err)
		}
		result[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", r.table, err)
	}

	return result, nil
}

// shoppingCartRepository adds the ingredient join to the cart set.
type shoppingCartRepository struct {
	*interactionRepository
}

// Lines returns every ingredient quantity of every recipe in the user's cart.
func (r *shoppingCartRepository) Lines(ctx context.Context, userID int64) ([]model.IngredientLine, error) {
	query := `
		SELECT c.recipe_id, i.name, i.measurement_unit, ri.amount
		FROM shopping_cart_items c
		JOIN recipe_ingredients ri ON ri.recipe_id = c.recipe_id
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE c.user_id = $1
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query cart ingredients")
		return nil, fmt.Errorf("failed to query cart ingredients: %w", err)
	}
	defer rows.Close()

	lines := []model.IngredientLine{}
	for rows.Next() {
		var l model.IngredientLine
		if err := rows.Scan(&l.RecipeID, &l.Name, &l.MeasurementUnit, &l.Amount); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart ingredient row")
			return nil, fmt.Errorf("failed to scan cart ingredient: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart ingredients: %w", err)
	}

	return lines, nil
}
