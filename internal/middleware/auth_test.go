package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodgram/internal/auth"
	"foodgram/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.User), args.Get(1).(*auth.Claims), args.Error(2)
}

func TestAuthenticate(t *testing.T) {
	user := &model.User{ID: 7, Username: "cook"}
	claims := &auth.Claims{}

	tests := []struct {
		name           string
		header         string
		setup          func(m *mockAuthenticator)
		expectedStatus int
		expectedViewer int64
	}{
		{
			name:           "No header is anonymous",
			expectedStatus: http.StatusOK,
			expectedViewer: 0,
		},
		{
			name:   "Token scheme",
			header: "Token abc",
			setup: func(m *mockAuthenticator) {
				m.On("Authenticate", mock.Anything, "abc").Return(user, claims, nil)
			},
			expectedStatus: http.StatusOK,
			expectedViewer: 7,
		},
		{
			name:   "Bearer scheme",
			header: "bearer abc",
			setup: func(m *mockAuthenticator) {
				m.On("Authenticate", mock.Anything, "abc").Return(user, claims, nil)
			},
			expectedStatus: http.StatusOK,
			expectedViewer: 7,
		},
		{
			name:           "Unknown scheme",
			header:         "Basic abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing token",
			header:         "Token ",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "Invalid token",
			header: "Token bad",
			setup: func(m *mockAuthenticator) {
				m.On("Authenticate", mock.Anything, "bad").Return(nil, nil, model.ErrUnauthorised)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "Backend failure",
			header: "Token abc",
			setup: func(m *mockAuthenticator) {
				m.On("Authenticate", mock.Anything, "abc").Return(nil, nil, errors.New("redis down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authenticator := new(mockAuthenticator)
			if tt.setup != nil {
				tt.setup(authenticator)
			}

			var viewer int64 = -1
			handler := Authenticate(authenticator, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				viewer = ViewerID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedViewer, viewer)
			} else {
				assert.Equal(t, int64(-1), viewer, "handler must not run")
			}
			authenticator.AssertExpectations(t)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/recipes", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), model.ErrCodeUnauthorised)

	req := httptest.NewRequest(http.MethodPost, "/api/recipes", nil)
	req = req.WithContext(WithUser(req.Context(), &model.User{ID: 1}, &auth.Claims{}))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, UserFromContext(ctx))
	assert.Nil(t, ClaimsFromContext(ctx))
	assert.Equal(t, int64(0), ViewerID(ctx))

	claims := &auth.Claims{}
	ctx = WithUser(ctx, &model.User{ID: 3}, claims)
	assert.Equal(t, int64(3), ViewerID(ctx))
	assert.Same(t, claims, ClaimsFromContext(ctx))
}
