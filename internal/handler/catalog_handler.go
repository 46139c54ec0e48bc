package handler

import (
	"net/http"

	"foodgram/internal/model"
	"foodgram/internal/service"

	"github.com/rs/zerolog"
)

// CatalogHandler serves the read-only tag and ingredient catalog.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// ListTags handles GET /api/tags/. Tags are not paginated.
func (h *CatalogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if tags == nil {
		tags = []model.Tag{}
	}

	writeJSON(w, http.StatusOK, tags)
}

// GetTag handles GET /api/tags/{id}/.
func (h *CatalogHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrTagNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	tag, err := h.service.GetTag(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, tag)
}

// ListIngredients handles GET /api/ingredients/?name=<prefix>.
func (h *CatalogHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.service.ListIngredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if ingredients == nil {
		ingredients = []model.Ingredient{}
	}

	writeJSON(w, http.StatusOK, ingredients)
}

// GetIngredient handles GET /api/ingredients/{id}/.
func (h *CatalogHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrIngredientNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	ingredient, err := h.service.GetIngredient(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ingredient)
}
