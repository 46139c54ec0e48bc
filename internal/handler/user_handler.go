package handler

import (
	"net/http"

	"foodgram/internal/middleware"
	"foodgram/internal/model"
	"foodgram/internal/service"

	"github.com/rs/zerolog"
)

// UserHandler handles accounts and subscriptions.
type UserHandler struct {
	service service.UserService
	pager   Pager
	logger  zerolog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service service.UserService, pager Pager, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		pager:   pager,
		logger:  logger.With().Str("handler", "user").Logger(),
	}
}

// List handles GET /api/users/.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.pager.Parse(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	users, total, err := h.service.List(r.Context(), middleware.ViewerID(r.Context()), page)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newPage(r, page, total, users))
}

// Register handles POST /api/users/.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	profile, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

// Me handles GET /api/users/me/.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.ViewerID(r.Context())

	profile, err := h.service.Profile(r.Context(), viewerID, viewerID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Profile handles GET /api/users/{id}/.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, model.ErrUserNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	profile, err := h.service.Profile(r.Context(), middleware.ViewerID(r.Context()), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// SetPassword handles POST /api/users/set_password/.
func (h *UserHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.SetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.SetPassword(r.Context(), middleware.ViewerID(r.Context()), &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Subscribe handles GET and POST /api/users/{id}/subscribe/. It answers 201
// when the subscription is new and 200 when it already existed.
func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r, model.ErrUserNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	limit, err := recipesLimit(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	sub, created, err := h.service.Subscribe(r.Context(), middleware.ViewerID(r.Context()), authorID, limit)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, sub)
}

// Unsubscribe handles DELETE /api/users/{id}/subscribe/.
func (h *UserHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r, model.ErrUserNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Unsubscribe(r.Context(), middleware.ViewerID(r.Context()), authorID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Subscriptions handles GET /api/users/subscriptions/.
func (h *UserHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	page, err := h.pager.Parse(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	limit, err := recipesLimit(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	subs, total, err := h.service.Subscriptions(r.Context(), middleware.ViewerID(r.Context()), page, limit)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newPage(r, page, total, subs))
}
