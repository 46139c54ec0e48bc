package handler

import (
	"context"
	"net/http"

	"foodgram/internal/auth"
	"foodgram/internal/middleware"
	"foodgram/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.UserProfile, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, viewerID int64, page model.Pagination) ([]model.UserProfile, int, error) {
	args := m.Called(ctx, viewerID, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.UserProfile), args.Int(1), args.Error(2)
}

func (m *MockUserService) Profile(ctx context.Context, viewerID, userID int64) (*model.UserProfile, error) {
	args := m.Called(ctx, viewerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func (m *MockUserService) SetPassword(ctx context.Context, userID int64, req *model.SetPasswordRequest) error {
	args := m.Called(ctx, userID, req)
	return args.Error(0)
}

func (m *MockUserService) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*model.Subscription, bool, error) {
	args := m.Called(ctx, userID, authorID, recipesLimit)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*model.Subscription), args.Bool(1), args.Error(2)
}

func (m *MockUserService) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	args := m.Called(ctx, userID, authorID)
	return args.Error(0)
}

func (m *MockUserService) Subscriptions(ctx context.Context, userID int64, page model.Pagination, recipesLimit int) ([]model.Subscription, int, error) {
	args := m.Called(ctx, userID, page, recipesLimit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Subscription), args.Int(1), args.Error(2)
}

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenResponse), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.User), args.Get(1).(*auth.Claims), args.Error(2)
}

// MockCatalogService is a mock implementation of service.CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListTags(ctx context.Context) ([]model.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

func (m *MockCatalogService) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockCatalogService) ListIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Ingredient), args.Error(1)
}

func (m *MockCatalogService) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ingredient), args.Error(1)
}

// MockRecipeService is a mock implementation of service.RecipeService.
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) List(ctx context.Context, viewerID int64, filter model.RecipeFilter, page model.Pagination) ([]model.RecipeDetail, int, error) {
	args := m.Called(ctx, viewerID, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.RecipeDetail), args.Int(1), args.Error(2)
}

func (m *MockRecipeService) Get(ctx context.Context, viewerID, id int64) (*model.RecipeDetail, error) {
	args := m.Called(ctx, viewerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecipeDetail), args.Error(1)
}

func (m *MockRecipeService) Create(ctx context.Context, authorID int64, req *model.RecipeRequest) (*model.RecipeDetail, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecipeDetail), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, userID, id int64, req *model.RecipeRequest) (*model.RecipeDetail, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecipeDetail), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, userID, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockRecipeService) AddFavorite(ctx context.Context, userID, recipeID int64) (*model.RecipeShort, bool, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*model.RecipeShort), args.Bool(1), args.Error(2)
}

func (m *MockRecipeService) RemoveFavorite(ctx context.Context, userID, recipeID int64) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockRecipeService) AddToCart(ctx context.Context, userID, recipeID int64) (*model.RecipeShort, bool, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*model.RecipeShort), args.Bool(1), args.Error(2)
}

func (m *MockRecipeService) RemoveFromCart(ctx context.Context, userID, recipeID int64) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockRecipeService) ShoppingList(ctx context.Context, userID int64) ([]model.ShoppingItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShoppingItem), args.Error(1)
}

// withID sets the chi {id} route parameter on r.
func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// asUser attaches an authenticated user to r.
func asUser(r *http.Request, id int64) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), &model.User{ID: id}, &auth.Claims{}))
}
