package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"foodgram/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies. Recipe payloads carry a base64 image
// of up to 10 MiB, which is roughly 14 MiB once encoded.
const maxBodyBytes = 16 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError maps err onto a status code and writes the error envelope.
// Anything that is not a domain error is logged and reported as a 500.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("handler error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "An unexpected error occurred",
		})
		return
	}

	status := statusFor(domainErr.Code)
	logger.Debug().Str("code", domainErr.Code).Int("status", status).Msg("request rejected")
	writeJSON(w, status, model.ErrorResponse{
		Error:   domainErr.Code,
		Message: domainErr.Message,
		Fields:  domainErr.Fields,
	})
}

func statusFor(code string) int {
	switch code {
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeRecipeNotFound,
		model.ErrCodeUserNotFound,
		model.ErrCodeTagNotFound,
		model.ErrCodeIngredientNotFound:
		return http.StatusNotFound
	case model.ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return model.NewValidationError("Request body is too large", nil)
		}
		if errors.Is(err, io.EOF) {
			return model.NewValidationError("Request body is empty", nil)
		}
		return model.ErrInvalidJSON
	}
	return nil
}

// pathID parses the {id} route parameter. Malformed ids cannot name an
// existing row, so they are reported with notFound.
func pathID(r *http.Request, notFound error) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, notFound
	}
	return id, nil
}

// queryFlag reports whether a boolean query parameter is set ("1" or "true").
func queryFlag(r *http.Request, name string) bool {
	switch strings.ToLower(r.URL.Query().Get(name)) {
	case "1", "true":
		return true
	}
	return false
}

// recipesLimit parses the recipes_limit query parameter. An absent value
// means no limit and is returned as -1.
func recipesLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("recipes_limit")
	if raw == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, model.NewValidationError("recipes_limit must be a non-negative integer",
			map[string]string{"recipes_limit": "must be a non-negative integer"})
	}
	return n, nil
}
