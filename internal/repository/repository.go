package repository

import (
	"context"

	"foodgram/internal/model"

	"github.com/jackc/pgx/v5"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create inserts u and fills in its ID and CreatedAt.
	// Returns model.ErrEmailTaken when the email or username is in use.
	Create(ctx context.Context, u *model.User) error

	// GetByID returns nil, nil when no user has the id.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// GetByIDs returns the users with the given ids. Unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]model.User, error)

	// GetByEmail returns nil, nil when no user has the email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns one page of users, newest first, and the total count.
	List(ctx context.Context, limit, offset int) ([]model.User, int, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// SubscriptionRepository defines data access for follow relationships.
type SubscriptionRepository interface {
	// Add records that userID follows authorID. Reports whether a row was created.
	Add(ctx context.Context, userID, authorID int64) (bool, error)

	// Remove deletes the relationship. Reports whether a row was removed.
	Remove(ctx context.Context, userID, authorID int64) (bool, error)

	// Following reports which of authorIDs userID follows.
	Following(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error)

	// ListAuthors returns one page of authors userID follows and the total count.
	ListAuthors(ctx context.Context, userID int64, limit, offset int) ([]model.User, int, error)
}

// CatalogRepository defines data access for tags and ingredients.
type CatalogRepository interface {
	ListTags(ctx context.Context) ([]model.Tag, error)

	// GetTag returns nil, nil when the tag does not exist.
	GetTag(ctx context.Context, id int64) (*model.Tag, error)

	// ListIngredients returns ingredients whose name starts with prefix,
	// compared case-insensitively. An empty prefix returns all ingredients.
	ListIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error)

	// GetIngredient returns nil, nil when the ingredient does not exist.
	GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error)

	// ValidateTagsExist returns model.ErrTagNotFound if any id is unknown.
	ValidateTagsExist(ctx context.Context, ids []int64) error

	// ValidateIngredientsExist returns model.ErrIngredientNotFound if any id is unknown.
	ValidateIngredientsExist(ctx context.Context, ids []int64) error

	// UpsertIngredients inserts ingredients that are not yet in the catalog
	// and returns how many rows were created.
	UpsertIngredients(ctx context.Context, items []model.Ingredient) (int, error)
}

// RecipeRepository defines data access for recipes and their links.
type RecipeRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts r within tx and fills in its ID and CreatedAt.
	Create(ctx context.Context, tx pgx.Tx, r *model.Recipe) error

	// Update overwrites the scalar fields of r within tx.
	Update(ctx context.Context, tx pgx.Tx, r *model.Recipe) error

	// ReplaceTags sets the tags of a recipe within tx.
	ReplaceTags(ctx context.Context, tx pgx.Tx, recipeID int64, tagIDs []int64) error

	// ReplaceIngredients sets the ingredient amounts of a recipe within tx.
	ReplaceIngredients(ctx context.Context, tx pgx.Tx, recipeID int64, items []model.IngredientAmount) error

	// Delete removes a recipe. Reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	// GetByID returns nil, nil when the recipe does not exist.
	GetByID(ctx context.Context, id int64) (*model.Recipe, error)

	// List returns one page of recipes matching filter, newest first, and the total count.
	List(ctx context.Context, filter model.RecipeFilter, limit, offset int) ([]model.Recipe, int, error)

	// TagsFor loads the tags of many recipes at once.
	TagsFor(ctx context.Context, recipeIDs []int64) (map[int64][]model.Tag, error)

	// IngredientsFor loads the ingredient amounts of many recipes at once.
	IngredientsFor(ctx context.Context, recipeIDs []int64) (map[int64][]model.RecipeIngredient, error)

	// RecentByAuthors returns up to perAuthor newest recipes of each author.
	// A negative perAuthor returns every recipe.
	RecentByAuthors(ctx context.Context, authorIDs []int64, perAuthor int) (map[int64][]model.Recipe, error)

	// CountByAuthors returns the number of recipes of each author.
	CountByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int, error)
}

// InteractionRepository defines data access for a per-user recipe set such
// as favorites or the shopping cart.
type InteractionRepository interface {
	// Add puts the recipe in the user's set. Reports whether a row was created.
	Add(ctx context.Context, userID, recipeID int64) (bool, error)

	// Remove takes the recipe out of the user's set. Reports whether a row was removed.
	Remove(ctx context.Context, userID, recipeID int64) (bool, error)

	// Marked reports which of recipeIDs are in the user's set.
	Marked(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error)
}

// ShoppingCartRepository is the cart set plus the ingredient join used to
// build shopping lists.
type ShoppingCartRepository interface {
	InteractionRepository

	// Lines returns every ingredient quantity of every recipe in the user's cart.
	Lines(ctx context.Context, userID int64) ([]model.IngredientLine, error)
}
