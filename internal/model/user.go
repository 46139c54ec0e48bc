package model

import "time"

// User represents an account.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsBlocked    bool      `json:"-" db:"is_blocked"`
	IsSuperuser  bool      `json:"-" db:"is_superuser"`
	CreatedAt    time.Time `json:"-" db:"created_at"`
}

// UserProfile is the public representation of a user as seen by a viewer.
type UserProfile struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// NewUserProfile builds the profile of u.
func NewUserProfile(u *User, subscribed bool) UserProfile {
	return UserProfile{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// Subscription is a followed author together with their latest recipes.
type Subscription struct {
	UserProfile
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int           `json:"recipes_count"`
}

// RegisterRequest represents the payload for POST /api/users/.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest represents the payload for POST /api/auth/token/login/.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SetPasswordRequest represents the payload for POST /api/users/set_password/.
type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}
