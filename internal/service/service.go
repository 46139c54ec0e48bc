package service

import (
	"context"

	"foodgram/internal/auth"
	"foodgram/internal/model"
)

// Viewer ids identify who a representation is computed for. Zero means an
// anonymous viewer, for whom every per-viewer flag is false.

// UserService defines operations on accounts and follow relationships.
type UserService interface {
	// Register creates an account. Returns model.ErrEmailTaken on conflicts.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.UserProfile, error)

	// List returns one page of users and the total count.
	List(ctx context.Context, viewerID int64, page model.Pagination) ([]model.UserProfile, int, error)

	// Profile returns a user as seen by viewerID.
	Profile(ctx context.Context, viewerID, userID int64) (*model.UserProfile, error)

	// SetPassword replaces the password after checking the current one.
	SetPassword(ctx context.Context, userID int64, req *model.SetPasswordRequest) error

	// Subscribe makes userID follow authorID. created is false when the
	// subscription already existed.
	Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (sub *model.Subscription, created bool, err error)

	// Unsubscribe removes the follow relationship if present.
	Unsubscribe(ctx context.Context, userID, authorID int64) error

	// Subscriptions returns one page of followed authors with up to
	// recipesLimit of their newest recipes. A negative limit returns all.
	Subscriptions(ctx context.Context, userID int64, page model.Pagination, recipesLimit int) ([]model.Subscription, int, error)
}

// AuthService defines token login, logout and verification.
type AuthService interface {
	// Login exchanges credentials for an access token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)

	// Logout revokes the token described by claims.
	Logout(ctx context.Context, claims *auth.Claims) error

	// Authenticate resolves a raw token to its user. Returns
	// model.ErrUnauthorised for invalid, revoked or orphaned tokens.
	Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error)
}

// CatalogService defines read access to tags and ingredients.
type CatalogService interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTag(ctx context.Context, id int64) (*model.Tag, error)

	// ListIngredients returns ingredients whose name starts with prefix.
	ListIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error)
}

// RecipeService defines recipe authoring, per-user recipe sets and the
// shopping list.
type RecipeService interface {
	List(ctx context.Context, viewerID int64, filter model.RecipeFilter, page model.Pagination) ([]model.RecipeDetail, int, error)
	Get(ctx context.Context, viewerID, id int64) (*model.RecipeDetail, error)

	Create(ctx context.Context, authorID int64, req *model.RecipeRequest) (*model.RecipeDetail, error)

	// Update replaces a recipe. Only the author may update it; an empty
	// image keeps the current one.
	Update(ctx context.Context, userID, id int64, req *model.RecipeRequest) (*model.RecipeDetail, error)

	// Delete removes a recipe. Only the author may delete it.
	Delete(ctx context.Context, userID, id int64) error

	// AddFavorite and AddToCart report created=false when the recipe was
	// already in the set.
	AddFavorite(ctx context.Context, userID, recipeID int64) (recipe *model.RecipeShort, created bool, err error)
	RemoveFavorite(ctx context.Context, userID, recipeID int64) error
	AddToCart(ctx context.Context, userID, recipeID int64) (recipe *model.RecipeShort, created bool, err error)
	RemoveFromCart(ctx context.Context, userID, recipeID int64) error

	// ShoppingList aggregates the ingredients of every recipe in the cart.
	ShoppingList(ctx context.Context, userID int64) ([]model.ShoppingItem, error)
}
