package importer

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"foodgram/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for ingredient files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based ingredient loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "ingredient-loader").Logger(),
	}
}

// Load reads a CSV file, gunzipping it first when the name ends in ".gz".
func (l *fileLoader) Load(ctx context.Context, path string) ([]model.Ingredient, error) {
	l.logger.Info().Str("file", path).Msg("loading ingredient file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open ingredient file")
		return nil, fmt.Errorf("failed to open ingredient file %s: %w", path, err)
	}
	defer file.Close()

	items, err := readIngredients(ctx, file, path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("error reading ingredient file")
		return nil, err
	}

	l.logger.Info().
		Str("file", path).
		Int("ingredients_loaded", len(items)).
		Msg("ingredient file loaded successfully")

	return items, nil
}

// readIngredients parses "name,measurement_unit" rows from r. Blank names
// are skipped and surrounding whitespace is trimmed.
func readIngredients(ctx context.Context, r io.Reader, name string) ([]model.Ingredient, error) {
	if strings.HasSuffix(name, ".gz") {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var items []model.Ingredient
	for line := 0; ; line++ {
		if line%10_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading ingredient file %s: %w", name, err)
		}

		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) != 2 {
			return nil, fmt.Errorf("invalid ingredient row at %s:%d: expected 2 fields, got %d", name, line+1, len(record))
		}

		ingredient := model.Ingredient{
			Name:            strings.TrimSpace(record[0]),
			MeasurementUnit: strings.TrimSpace(record[1]),
		}
		if ingredient.Name == "" || ingredient.MeasurementUnit == "" {
			continue
		}
		items = append(items, ingredient)
	}

	return items, nil
}
