package service

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/model"
	"foodgram/internal/repository"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	repo   repository.CatalogRepository
	logger zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.CatalogRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		logger: logger.With().Str("service", "catalog").Logger(),
	}
}

func (s *catalogService) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *catalogService) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	tag, err := s.repo.GetTag(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	if tag == nil {
		return nil, model.ErrTagNotFound
	}
	return tag, nil
}

func (s *catalogService) ListIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	items, err := s.repo.ListIngredients(ctx, strings.TrimSpace(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}

	s.logger.Debug().Str("prefix", prefix).Int("count", len(items)).Msg("ingredients listed")
	return items, nil
}

func (s *catalogService) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	item, err := s.repo.GetIngredient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	if item == nil {
		return nil, model.ErrIngredientNotFound
	}
	return item, nil
}
