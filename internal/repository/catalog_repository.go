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

// catalogRepository implements the CatalogRepository interface using PostgreSQL.
type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

// ListTags returns every tag ordered by name.
func (r *catalogRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, color, slug FROM tags ORDER BY name`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query tags")
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan tag row")
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

// GetTag returns nil, nil when the tag does not exist.
func (r *catalogRepository) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	var t model.Tag
	err := r.pool.QueryRow(ctx, `SELECT id, name, color, slug FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Color, &t.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("tag_id", id).Msg("tag not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("tag_id", id).Msg("failed to query tag")
		return nil, fmt.Errorf("failed to query tag: %w", err)
	}

	return &t, nil
}

// ListIngredients returns ingredients whose name starts with prefix.
func (r *catalogRepository) ListIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	query := `
		SELECT id, name, measurement_unit
		FROM ingredients
		WHERE lower(name) LIKE lower($1) || '%'
		ORDER BY name, measurement_unit
	`

	rows, err := r.pool.Query(ctx, query, escapeLike(prefix))
	if err != nil {
		r.logger.Error().Err(err).Str("prefix", prefix).Msg("failed to query ingredients")
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []model.Ingredient{}
	for rows.Next() {
		var i model.Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.MeasurementUnit); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan ingredient row")
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingredients: %w", err)
	}

	return ingredients, nil
}

// GetIngredient returns nil, nil when the ingredient does not exist.
func (r *catalogRepository) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	var i model.Ingredient
	err := r.pool.QueryRow(ctx, `SELECT id, name, measurement_unit FROM ingredients WHERE id = $1`, id).
		Scan(&i.ID, &i.Name, &i.MeasurementUnit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("ingredient_id", id).Msg("ingredient not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("ingredient_id", id).Msg("failed to query ingredient")
		return nil, fmt.Errorf("failed to query ingredient: %w", err)
	}

	return &i, nil
}

// ValidateTagsExist returns model.ErrTagNotFound if any id is unknown.
func (r *catalogRepository) ValidateTagsExist(ctx context.Context, ids []int64) error {
	return r.validateExist(ctx, "tags", ids, model.ErrTagNotFound)
}

// ValidateIngredientsExist returns model.ErrIngredientNotFound if any id is unknown.
func (r *catalogRepository) ValidateIngredientsExist(ctx context.Context, ids []int64) error {
	return r.validateExist(ctx, "ingredients", ids, model.ErrIngredientNotFound)
}

// validateExist counts how many of ids are present in table. table is
// always one of the constant names above.
func (r *catalogRepository) validateExist(ctx context.Context, table string, ids []int64, notFound error) error {
	if len(ids) == 0 {
		return nil
	}

	unique := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	query := `SELECT COUNT(DISTINCT id) FROM ` + table + ` WHERE id = ANY($1)`

	var count int
	if err := r.pool.QueryRow(ctx, query, ids).Scan(&count); err != nil {
		r.logger.Error().Err(err).Str("table", table).Int("count", len(ids)).Msg("failed to validate ids exist")
		return fmt.Errorf("failed to validate %s exist: %w", table, err)
	}

	if count != len(unique) {
		r.logger.Warn().
			Str("table", table).
			Int("expected", len(unique)).
			Int("found", count).
			Msg("not all ids exist")
		return notFound
	}

	return nil
}

// UpsertIngredients inserts ingredients that are not yet in the catalog
// and returns how many rows were created.
func (r *catalogRepository) UpsertIngredients(ctx context.Context, items []model.Ingredient) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO ingredients (name, measurement_unit)
		VALUES ($1, $2)
		ON CONFLICT (name, measurement_unit) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.Name, item.MeasurementUnit)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	created := 0
	for i := 0; i < len(items); i++ {
		tag, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("name", items[i].Name).
				Str("measurement_unit", items[i].MeasurementUnit).
				Msg("failed to upsert ingredient")
			return created, fmt.Errorf("failed to upsert ingredient %q: %w", items[i].Name, err)
		}
		created += int(tag.RowsAffected())
	}

	r.logger.Debug().
		Int("submitted", len(items)).
		Int("created", created).
		Msg("ingredients upserted")

	return created, nil
}
