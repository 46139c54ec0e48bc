package model

import "time"

// Recipe represents a recipe row.
type Recipe struct {
	ID          int64     `db:"id"`
	AuthorID    int64     `db:"author_id"`
	Name        string    `db:"name"`
	Image       string    `db:"image"`
	Text        string    `db:"text"`
	CookingTime int       `db:"cooking_time"`
	CreatedAt   time.Time `db:"created_at"`
}

// RecipeIngredient is an ingredient of a recipe with its amount.
type RecipeIngredient struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeDetail is the full representation of a recipe as seen by a viewer.
type RecipeDetail struct {
	ID               int64              `json:"id"`
	Tags             []Tag              `json:"tags"`
	Author           UserProfile        `json:"author"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
}

// RecipeShort is the compact representation used by favorites, cart and
// subscription responses.
type RecipeShort struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// IngredientAmount is an ingredient reference in a recipe write request.
type IngredientAmount struct {
	ID     int64 `json:"id" validate:"required,gt=0"`
	Amount int   `json:"amount" validate:"gte=1,lte=32767"`
}

// RecipeRequest is the payload for creating or updating a recipe.
type RecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []int64            `json:"tags" validate:"required,min=1,dive,gt=0"`
	Image       string             `json:"image"`
	Name        string             `json:"name" validate:"required,max=200"`
	Text        string             `json:"text" validate:"required,max=3000"`
	CookingTime int                `json:"cooking_time" validate:"gte=1,lte=32767"`
}

// RecipeFilter narrows recipe listings.
type RecipeFilter struct {
	AuthorID int64
	Tags     []string
	// FavoritedBy and InCartOf restrict results to one user's favorites or
	// cart. Zero means no restriction.
	FavoritedBy int64
	InCartOf    int64
}
