package service

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/auth"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/storage"
	"foodgram/internal/validation"

	"github.com/rs/zerolog"
)

// userService implements UserService.
type userService struct {
	userRepo     repository.UserRepository
	subRepo      repository.SubscriptionRepository
	recipeRepo   repository.RecipeRepository
	images       storage.ImageStore
	hashPassword func(string) (string, error)
	logger       zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	subRepo repository.SubscriptionRepository,
	recipeRepo repository.RecipeRepository,
	images storage.ImageStore,
	logger zerolog.Logger,
) UserService {
	return &userService{
		userRepo:     userRepo,
		subRepo:      subRepo,
		recipeRepo:   recipeRepo,
		images:       images,
		hashPassword: auth.HashPassword,
		logger:       logger.With().Str("service", "user").Logger(),
	}
}

func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.UserProfile, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	u := &model.User{
		Email:        strings.TrimSpace(req.Email),
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("user registered")

	profile := model.NewUserProfile(u, false)
	return &profile, nil
}

func (s *userService) List(ctx context.Context, viewerID int64, page model.Pagination) ([]model.UserProfile, int, error) {
	users, total, err := s.userRepo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	profiles, err := s.profiles(ctx, viewerID, users)
	if err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (s *userService) Profile(ctx context.Context, viewerID, userID int64) (*model.UserProfile, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, model.ErrUserNotFound
	}

	profiles, err := s.profiles(ctx, viewerID, []model.User{*u})
	if err != nil {
		return nil, err
	}

	return &profiles[0], nil
}

func (s *userService) SetPassword(ctx context.Context, userID int64, req *model.SetPasswordRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return err
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return model.ErrUserNotFound
	}

	ok, err := auth.CheckPassword(u.PasswordHash, req.CurrentPassword)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to check password")
		return fmt.Errorf("failed to set password: %w", err)
	}
	if !ok {
		s.logger.Debug().Int64("user_id", userID).Msg("current password mismatch")
		return model.ErrWrongPassword
	}

	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info().Int64("user_id", userID).Msg("password changed")
	return nil
}

func (s *userService) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*model.Subscription, bool, error) {
	if userID == authorID {
		return nil, false, model.ErrSelfSubscription
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get author: %w", err)
	}
	if author == nil {
		return nil, false, model.ErrUserNotFound
	}

	created, err := s.subRepo.Add(ctx, userID, authorID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to subscribe: %w", err)
	}

	subs, err := s.subscriptions(ctx, []model.User{*author}, recipesLimit)
	if err != nil {
		return nil, false, err
	}

	s.logger.Info().
		Int64("user_id", userID).
		Int64("author_id", authorID).
		Bool("created", created).
		Msg("subscribed")

	return &subs[0], created, nil
}

func (s *userService) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return fmt.Errorf("failed to get author: %w", err)
	}
	if author == nil {
		return model.ErrUserNotFound
	}

	removed, err := s.subRepo.Remove(ctx, userID, authorID)
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	s.logger.Info().
		Int64("user_id", userID).
		Int64("author_id", authorID).
		Bool("removed", removed).
		Msg("unsubscribed")

	return nil
}

func (s *userService) Subscriptions(ctx context.Context, userID int64, page model.Pagination, recipesLimit int) ([]model.Subscription, int, error) {
	authors, total, err := s.subRepo.ListAuthors(ctx, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	subs, err := s.subscriptions(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}

// profiles builds the profiles of users as seen by viewerID.
func (s *userService) profiles(ctx context.Context, viewerID int64, users []model.User) ([]model.UserProfile, error) {
	following := map[int64]bool{}
	if viewerID != 0 && len(users) > 0 {
		ids := make([]int64, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}

		var err error
		following, err = s.subRepo.Following(ctx, viewerID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load subscriptions: %w", err)
		}
	}

	profiles := make([]model.UserProfile, len(users))
	for i := range users {
		profiles[i] = model.NewUserProfile(&users[i], following[users[i].ID])
	}
	return profiles, nil
}

// subscriptions attaches recipes and recipe counts to followed authors.
func (s *userService) subscriptions(ctx context.Context, authors []model.User, recipesLimit int) ([]model.Subscription, error) {
	subs := make([]model.Subscription, len(authors))
	if len(authors) == 0 {
		return subs, nil
	}

	ids := make([]int64, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}

	recipes, err := s.recipeRepo.RecentByAuthors(ctx, ids, recipesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load author recipes: %w", err)
	}

	counts, err := s.recipeRepo.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count author recipes: %w", err)
	}

	for i := range authors {
		short := make([]model.RecipeShort, 0, len(recipes[authors[i].ID]))
		for _, rec := range recipes[authors[i].ID] {
			short = append(short, shortRecipe(&rec, s.images))
		}

		subs[i] = model.Subscription{
			UserProfile:  model.NewUserProfile(&authors[i], true),
			Recipes:      short,
			RecipesCount: counts[authors[i].ID],
		}
	}

	return subs, nil
}

// shortRecipe builds the compact representation of rec.
func shortRecipe(rec *model.Recipe, images storage.ImageStore) model.RecipeShort {
	return model.RecipeShort{
		ID:          rec.ID,
		Name:        rec.Name,
		Image:       images.URL(rec.Image),
		CookingTime: rec.CookingTime,
	}
}
