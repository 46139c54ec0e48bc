package service

import (
	"context"
	"fmt"

	"foodgram/internal/metrics"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/shoplist"
	"foodgram/internal/storage"
	"foodgram/internal/validation"

	"github.com/rs/zerolog"
)

// recipeService implements RecipeService.
type recipeService struct {
	recipeRepo  repository.RecipeRepository
	catalogRepo repository.CatalogRepository
	userRepo    repository.UserRepository
	subRepo     repository.SubscriptionRepository
	favRepo     repository.InteractionRepository
	cartRepo    repository.ShoppingCartRepository
	images      storage.ImageStore
	logger      zerolog.Logger
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	catalogRepo repository.CatalogRepository,
	userRepo repository.UserRepository,
	subRepo repository.SubscriptionRepository,
	favRepo repository.InteractionRepository,
	cartRepo repository.ShoppingCartRepository,
	images storage.ImageStore,
	logger zerolog.Logger,
) RecipeService {
	return &recipeService{
		recipeRepo:  recipeRepo,
		catalogRepo: catalogRepo,
		userRepo:    userRepo,
		subRepo:     subRepo,
		favRepo:     favRepo,
		cartRepo:    cartRepo,
		images:      images,
		logger:      logger.With().Str("service", "recipe").Logger(),
	}
}

func (s *recipeService) List(ctx context.Context, viewerID int64, filter model.RecipeFilter, page model.Pagination) ([]model.RecipeDetail, int, error) {
	// Favorite and cart filters only make sense for a signed-in viewer.
	if viewerID == 0 {
		filter.FavoritedBy = 0
		filter.InCartOf = 0
	}

	recipes, total, err := s.recipeRepo.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	details, err := s.details(ctx, viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}

	return details, total, nil
}

func (s *recipeService) Get(ctx context.Context, viewerID, id int64) (*model.RecipeDetail, error) {
	rec, err := s.getRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.details(ctx, viewerID, []model.Recipe{*rec})
	if err != nil {
		return nil, err
	}

	return &details[0], nil
}

func (s *recipeService) Create(ctx context.Context, authorID int64, req *model.RecipeRequest) (*model.RecipeDetail, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	if req.Image == "" {
		return nil, model.NewValidationError("Validation failed", map[string]string{
			"image": "image is required",
		})
	}

	img, err := storage.DecodeDataURI(req.Image)
	if err != nil {
		return nil, err
	}

	imagePath, err := s.images.Save(ctx, img)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to save recipe image")
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	rec := &model.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Image:       imagePath,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}

	if err := s.persist(ctx, rec, req, true); err != nil {
		s.discardImage(ctx, imagePath)
		return nil, err
	}

	metrics.RecordRecipeMutation("create")
	s.logger.Info().
		Int64("recipe_id", rec.ID).
		Int64("author_id", authorID).
		Int("ingredient_count", len(req.Ingredients)).
		Msg("recipe created successfully")

	return s.Get(ctx, authorID, rec.ID)
}

func (s *recipeService) Update(ctx context.Context, userID, id int64, req *model.RecipeRequest) (*model.RecipeDetail, error) {
	rec, err := s.getOwnedRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	oldImage := rec.Image
	if req.Image != "" {
		img, err := storage.DecodeDataURI(req.Image)
		if err != nil {
			return nil, err
		}

		rec.Image, err = s.images.Save(ctx, img)
		if err != nil {
			s.logger.Error().Err(err).Int64("recipe_id", id).Msg("failed to save recipe image")
			return nil, fmt.Errorf("failed to update recipe: %w", err)
		}
	}

	rec.Name = req.Name
	rec.Text = req.Text
	rec.CookingTime = req.CookingTime

	if err := s.persist(ctx, rec, req, false); err != nil {
		if rec.Image != oldImage {
			s.discardImage(ctx, rec.Image)
		}
		return nil, err
	}

	if rec.Image != oldImage {
		s.discardImage(ctx, oldImage)
	}

	metrics.RecordRecipeMutation("update")
	s.logger.Info().Int64("recipe_id", id).Msg("recipe updated successfully")

	return s.Get(ctx, userID, id)
}

func (s *recipeService) Delete(ctx context.Context, userID, id int64) error {
	rec, err := s.getOwnedRecipe(ctx, userID, id)
	if err != nil {
		return err
	}

	deleted, err := s.recipeRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if !deleted {
		return model.ErrRecipeNotFound
	}

	s.discardImage(ctx, rec.Image)

	metrics.RecordRecipeMutation("delete")
	s.logger.Info().Int64("recipe_id", id).Msg("recipe deleted")

	return nil
}

func (s *recipeService) AddFavorite(ctx context.Context, userID, recipeID int64) (*model.RecipeShort, bool, error) {
	return s.addTo(ctx, s.favRepo, "favorite", userID, recipeID)
}

func (s *recipeService) RemoveFavorite(ctx context.Context, userID, recipeID int64) error {
	return s.removeFrom(ctx, s.favRepo, "favorite", userID, recipeID)
}

func (s *recipeService) AddToCart(ctx context.Context, userID, recipeID int64) (*model.RecipeShort, bool, error) {
	return s.addTo(ctx, s.cartRepo, "cart", userID, recipeID)
}

func (s *recipeService) RemoveFromCart(ctx context.Context, userID, recipeID int64) error {
	return s.removeFrom(ctx, s.cartRepo, "cart", userID, recipeID)
}

func (s *recipeService) ShoppingList(ctx context.Context, userID int64) ([]model.ShoppingItem, error) {
	lines, err := s.cartRepo.Lines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build shopping list: %w", err)
	}

	items := shoplist.Aggregate(lines)

	s.logger.Debug().
		Int64("user_id", userID).
		Int("lines", len(lines)).
		Int("items", len(items)).
		Msg("shopping list built")

	return items, nil
}

func (s *recipeService) addTo(ctx context.Context, set repository.InteractionRepository, kind string, userID, recipeID int64) (*model.RecipeShort, bool, error) {
	rec, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return nil, false, err
	}

	created, err := set.Add(ctx, userID, recipeID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to add recipe to %s: %w", kind, err)
	}

	s.logger.Debug().
		Str("set", kind).
		Int64("user_id", userID).
		Int64("recipe_id", recipeID).
		Bool("created", created).
		Msg("recipe added")

	short := shortRecipe(rec, s.images)
	return &short, created, nil
}

func (s *recipeService) removeFrom(ctx context.Context, set repository.InteractionRepository, kind string, userID, recipeID int64) error {
	if _, err := s.getRecipe(ctx, recipeID); err != nil {
		return err
	}

	removed, err := set.Remove(ctx, userID, recipeID)
	if err != nil {
		return fmt.Errorf("failed to remove recipe from %s: %w", kind, err)
	}

	s.logger.Debug().
		Str("set", kind).
		Int64("user_id", userID).
		Int64("recipe_id", recipeID).
		Bool("removed", removed).
		Msg("recipe removed")

	return nil
}

func (s *recipeService) getRecipe(ctx context.Context, id int64) (*model.Recipe, error) {
	rec, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if rec == nil {
		return nil, model.ErrRecipeNotFound
	}
	return rec, nil
}

func (s *recipeService) getOwnedRecipe(ctx context.Context, userID, id int64) (*model.Recipe, error) {
	rec, err := s.getRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.AuthorID != userID {
		s.logger.Warn().
			Int64("recipe_id", id).
			Int64("user_id", userID).
			Msg("recipe write by non-author")
		return nil, model.ErrForbidden
	}
	return rec, nil
}

// validateRequest checks field rules, duplicate ids and that every tag and
// ingredient exists.
func (s *recipeService) validateRequest(ctx context.Context, req *model.RecipeRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return err
	}

	seenTags := make(map[int64]struct{}, len(req.Tags))
	for _, id := range req.Tags {
		if _, dup := seenTags[id]; dup {
			return model.ErrDuplicateTag
		}
		seenTags[id] = struct{}{}
	}

	ingredientIDs := make([]int64, len(req.Ingredients))
	seenIngredients := make(map[int64]struct{}, len(req.Ingredients))
	for i, item := range req.Ingredients {
		if _, dup := seenIngredients[item.ID]; dup {
			return model.ErrDuplicateIngredient
		}
		seenIngredients[item.ID] = struct{}{}
		ingredientIDs[i] = item.ID
	}

	if err := s.catalogRepo.ValidateTagsExist(ctx, req.Tags); err != nil {
		return err
	}
	return s.catalogRepo.ValidateIngredientsExist(ctx, ingredientIDs)
}

// persist writes rec and its tag and ingredient links in one transaction.
func (s *recipeService) persist(ctx context.Context, rec *model.Recipe, req *model.RecipeRequest, create bool) (err error) {
	tx, err := s.recipeRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to save recipe: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if create {
		err = s.recipeRepo.Create(ctx, tx, rec)
	} else {
		err = s.recipeRepo.Update(ctx, tx, rec)
	}
	if err != nil {
		return err
	}

	if err = s.recipeRepo.ReplaceTags(ctx, tx, rec.ID, req.Tags); err != nil {
		return err
	}

	if err = s.recipeRepo.ReplaceIngredients(ctx, tx, rec.ID, req.Ingredients); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("recipe_id", rec.ID).Msg("failed to commit transaction")
		return fmt.Errorf("failed to save recipe: %w", err)
	}

	return nil
}

// discardImage removes an image that is no longer referenced. Failures are
// logged and otherwise ignored.
func (s *recipeService) discardImage(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.images.Delete(ctx, path); err != nil {
		s.logger.Warn().Err(err).Str("image", path).Msg("failed to delete recipe image")
	}
}

// details builds the full representations of recipes as seen by viewerID.
func (s *recipeService) details(ctx context.Context, viewerID int64, recipes []model.Recipe) ([]model.RecipeDetail, error) {
	details := make([]model.RecipeDetail, len(recipes))
	if len(recipes) == 0 {
		return details, nil
	}

	ids := make([]int64, len(recipes))
	authorIDs := make([]int64, 0, len(recipes))
	seenAuthors := make(map[int64]struct{}, len(recipes))
	for i, rec := range recipes {
		ids[i] = rec.ID
		if _, ok := seenAuthors[rec.AuthorID]; !ok {
			seenAuthors[rec.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, rec.AuthorID)
		}
	}

	tags, err := s.recipeRepo.TagsFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe tags: %w", err)
	}

	ingredients, err := s.recipeRepo.IngredientsFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe ingredients: %w", err)
	}

	authorList, err := s.userRepo.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe authors: %w", err)
	}
	authors := make(map[int64]*model.User, len(authorList))
	for i := range authorList {
		authors[authorList[i].ID] = &authorList[i]
	}

	favorited := map[int64]bool{}
	inCart := map[int64]bool{}
	following := map[int64]bool{}
	if viewerID != 0 {
		if favorited, err = s.favRepo.Marked(ctx, viewerID, ids); err != nil {
			return nil, fmt.Errorf("failed to load favorites: %w", err)
		}
		if inCart, err = s.cartRepo.Marked(ctx, viewerID, ids); err != nil {
			return nil, fmt.Errorf("failed to load shopping cart: %w", err)
		}
		if following, err = s.subRepo.Following(ctx, viewerID, authorIDs); err != nil {
			return nil, fmt.Errorf("failed to load subscriptions: %w", err)
		}
	}

	for i, rec := range recipes {
		var author model.UserProfile
		if u, ok := authors[rec.AuthorID]; ok {
			author = model.NewUserProfile(u, following[rec.AuthorID])
		}

		recipeTags := tags[rec.ID]
		if recipeTags == nil {
			recipeTags = []model.Tag{}
		}
		recipeIngredients := ingredients[rec.ID]
		if recipeIngredients == nil {
			recipeIngredients = []model.RecipeIngredient{}
		}

		details[i] = model.RecipeDetail{
			ID:               rec.ID,
			Tags:             recipeTags,
			Author:           author,
			Ingredients:      recipeIngredients,
			IsFavorited:      favorited[rec.ID],
			IsInShoppingCart: inCart[rec.ID],
			Name:             rec.Name,
			Image:            s.images.URL(rec.Image),
			Text:             rec.Text,
			CookingTime:      rec.CookingTime,
		}
	}

	return details, nil
}
