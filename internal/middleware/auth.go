package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"foodgram/internal/auth"
	"foodgram/internal/model"

	"github.com/rs/zerolog"
)

type contextKey int

const (
	userKey contextKey = iota
	claimsKey
)

// Authenticator resolves access tokens to users.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error)
}

// Authenticate attaches the user named by the Authorization header to the
// request context. Requests without the header continue anonymously; a
// malformed, expired or revoked token is rejected with 401.
func Authenticate(authenticator Authenticator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := parseAuthorization(header)
			if !ok {
				logger.Debug().Str("path", r.URL.Path).Msg("malformed authorization header")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Invalid token header")
				return
			}

			user, claims, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, model.ErrUnauthorised) {
					writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Invalid token")
					return
				}
				logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to authenticate request")
				writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "An unexpected error occurred")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, claims)))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthorised.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey).(*model.User)
	return u
}

// ClaimsFromContext returns the claims of the request token, or nil.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

// ViewerID returns the authenticated user id, or 0 for anonymous requests.
func ViewerID(ctx context.Context) int64 {
	if u := UserFromContext(ctx); u != nil {
		return u.ID
	}
	return 0
}

// WithUser returns a copy of ctx carrying u and claims.
func WithUser(ctx context.Context, u *model.User, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return context.WithValue(ctx, claimsKey, claims)
}

// parseAuthorization accepts "Token <t>" and "Bearer <t>".
func parseAuthorization(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return "", false
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
