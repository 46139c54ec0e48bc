// Package importer loads ingredient catalog files into the database.
package importer

import (
	"context"
	"fmt"
	"sync"

	"foodgram/internal/model"

	"github.com/rs/zerolog"
)

// Loader reads one ingredient file.
type Loader interface {
	// Load reads the CSV file at path. Rows are "name,measurement_unit".
	Load(ctx context.Context, path string) ([]model.Ingredient, error)
}

// IngredientWriter stores ingredients that are not yet in the catalog.
type IngredientWriter interface {
	UpsertIngredients(ctx context.Context, items []model.Ingredient) (int, error)
}

// Config holds configuration for an import run.
type Config struct {
	// FilePaths is the list of ingredient files to load.
	FilePaths []string

	// BatchSize is the number of ingredients upserted per round trip.
	// Default: 500
	BatchSize int
}

// DefaultConfig returns the default import configuration.
func DefaultConfig() *Config {
	return &Config{
		FilePaths: []string{"data/ingredients.csv"},
		BatchSize: 500,
	}
}

// Result summarises an import run.
type Result struct {
	Rows    int
	Unique  int
	Created int
}

// Importer loads ingredient files concurrently and upserts the union.
type Importer struct {
	config *Config
	loader Loader
	writer IngredientWriter
	logger zerolog.Logger
}

// New creates an importer. A nil config uses DefaultConfig.
func New(config *Config, loader Loader, writer IngredientWriter, logger zerolog.Logger) *Importer {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize < 1 {
		config.BatchSize = DefaultConfig().BatchSize
	}

	return &Importer{
		config: config,
		loader: loader,
		writer: writer,
		logger: logger.With().Str("component", "ingredient-importer").Logger(),
	}
}

// Run loads every configured file and upserts the deduplicated ingredients.
// Nothing is written if any file fails to load.
func (im *Importer) Run(ctx context.Context) (*Result, error) {
	paths := im.config.FilePaths

	im.logger.Info().
		Int("file_count", len(paths)).
		Int("batch_size", im.config.BatchSize).
		Msg("starting ingredient import")

	type loadResult struct {
		index int
		items []model.Ingredient
		err   error
	}

	resultChan := make(chan loadResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			items, err := im.loader.Load(ctx, path)
			resultChan <- loadResult{index: index, items: items, err: err}
		}(i, path)
	}

	wg.Wait()
	close(resultChan)

	// Collect results in order so earlier files win on duplicates.
	results := make([]loadResult, len(paths))
	for result := range resultChan {
		results[result.index] = result
	}

	set := newIngredientSet(0)
	rows := 0
	for i, result := range results {
		if result.err != nil {
			im.logger.Error().
				Err(result.err).
				Str("file", paths[i]).
				Msg("failed to load ingredient file")
			return nil, fmt.Errorf("failed to load ingredient file %s: %w", paths[i], result.err)
		}
		rows += len(result.items)
		for _, item := range result.items {
			set.Add(item)
		}
	}

	items := set.Items()
	created := 0
	for start := 0; start < len(items); start += im.config.BatchSize {
		end := min(start+im.config.BatchSize, len(items))

		n, err := im.writer.UpsertIngredients(ctx, items[start:end])
		created += n
		if err != nil {
			return nil, fmt.Errorf("failed to store ingredients: %w", err)
		}
	}

	result := &Result{Rows: rows, Unique: set.Size(), Created: created}

	im.logger.Info().
		Int("rows", result.Rows).
		Int("unique", result.Unique).
		Int("created", result.Created).
		Msg("ingredient import finished")

	return result, nil
}
