package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"foodgram/internal/metrics"
	"foodgram/internal/middleware"
	"foodgram/internal/model"
	"foodgram/internal/service"
	"foodgram/internal/shoplist"

	"github.com/rs/zerolog"
)

// RecipeHandler handles recipes, favorites and the shopping cart.
type RecipeHandler struct {
	service service.RecipeService
	pager   Pager
	logger  zerolog.Logger
}

// NewRecipeHandler creates a new recipe handler.
func NewRecipeHandler(service service.RecipeService, pager Pager, logger zerolog.Logger) *RecipeHandler {
	return &RecipeHandler{
		service: service,
		pager:   pager,
		logger:  logger.With().Str("handler", "recipe").Logger(),
	}
}

// List handles GET /api/recipes/ with the author, tags, is_favorited and
// is_in_shopping_cart filters.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.pager.Parse(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	filter, err := parseRecipeFilter(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	recipes, total, err := h.service.List(r.Context(), middleware.ViewerID(r.Context()), filter, page)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newPage(r, page, total, recipes))
}

func parseRecipeFilter(r *http.Request) (model.RecipeFilter, error) {
	q := r.URL.Query()
	viewerID := middleware.ViewerID(r.Context())

	var filter model.RecipeFilter
	if raw := q.Get("author"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			return filter, model.NewValidationError("Invalid author filter",
				map[string]string{"author": "must be a user id"})
		}
		filter.AuthorID = id
	}
	for _, slug := range q["tags"] {
		if slug != "" {
			filter.Tags = append(filter.Tags, slug)
		}
	}
	if queryFlag(r, "is_favorited") {
		filter.FavoritedBy = viewerID
	}
	if queryFlag(r, "is_in_shopping_cart") {
		filter.InCartOf = viewerID
	}
	return filter, nil
}

// Get handles GET /api/recipes/{id}/.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrRecipeNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	recipe, err := h.service.Get(r.Context(), middleware.ViewerID(r.Context()), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

// Create handles POST /api/recipes/.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.RecipeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	recipe, err := h.service.Create(r.Context(), middleware.ViewerID(r.Context()), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, recipe)
}

// Update handles PATCH and PUT /api/recipes/{id}/.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrRecipeNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.RecipeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	recipe, err := h.service.Update(r.Context(), middleware.ViewerID(r.Context()), id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

// Delete handles DELETE /api/recipes/{id}/.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrRecipeNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), middleware.ViewerID(r.Context()), id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddFavorite handles GET and POST /api/recipes/{id}/favorite/.
func (h *RecipeHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, h.service.AddFavorite)
}

// RemoveFavorite handles DELETE /api/recipes/{id}/favorite/.
func (h *RecipeHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.service.RemoveFavorite)
}

// AddToCart handles GET and POST /api/recipes/{id}/shopping_cart/.
func (h *RecipeHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, h.service.AddToCart)
}

// RemoveFromCart handles DELETE /api/recipes/{id}/shopping_cart/.
func (h *RecipeHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.service.RemoveFromCart)
}

type addFunc func(ctx context.Context, userID, recipeID int64) (*model.RecipeShort, bool, error)

type removeFunc func(ctx context.Context, userID, recipeID int64) error

func (h *RecipeHandler) add(w http.ResponseWriter, r *http.Request, fn addFunc) {
	id, err := pathID(r, model.ErrRecipeNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	recipe, created, err := fn(r.Context(), middleware.ViewerID(r.Context()), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, recipe)
}

func (h *RecipeHandler) remove(w http.ResponseWriter, r *http.Request, fn removeFunc) {
	id, err := pathID(r, model.ErrRecipeNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := fn(r.Context(), middleware.ViewerID(r.Context()), id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart/.
// The list is plain text unless ?format=pdf is given.
func (h *RecipeHandler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "txt"
	}
	if format != "txt" && format != "pdf" {
		writeError(w, model.NewValidationError("Unsupported format",
			map[string]string{"format": "must be txt or pdf"}), h.logger)
		return
	}

	items, err := h.service.ShoppingList(r.Context(), middleware.ViewerID(r.Context()))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "pdf":
		contentType = "application/pdf"
		err = shoplist.RenderPDF(&buf, items)
	default:
		contentType = "text/plain; charset=utf-8"
		err = shoplist.RenderText(&buf, items)
	}
	if err != nil {
		writeError(w, fmt.Errorf("failed to render shopping list: %w", err), h.logger)
		return
	}

	metrics.RecordShoppingListDownload(format)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="shopping_cart.%s"`, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
