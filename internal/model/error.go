package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeRecipeNotFound      = "RECIPE_NOT_FOUND"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeTagNotFound         = "TAG_NOT_FOUND"
	ErrCodeIngredientNotFound  = "INGREDIENT_NOT_FOUND"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeAccountBlocked      = "ACCOUNT_BLOCKED"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeSelfSubscription    = "SELF_SUBSCRIPTION"
	ErrCodeDuplicateIngredient = "DUPLICATE_INGREDIENT"
	ErrCodeDuplicateTag        = "DUPLICATE_TAG"
	ErrCodeInvalidImage        = "INVALID_IMAGE"
	ErrCodeWrongPassword       = "WRONG_PASSWORD"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	// Fields carries per-field messages for validation failures.
	Fields map[string]string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped or field-annotated copies
// still compare equal to the sentinels below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error carrying field messages.
func NewValidationError(message string, fields map[string]string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: message,
		Fields:  fields,
	}
}

// Common domain errors
var (
	ErrValidation          = NewDomainError(ErrCodeValidation, "Validation failed")
	ErrInvalidJSON         = NewDomainError(ErrCodeInvalidJSON, "Request body is not valid JSON")
	ErrRecipeNotFound      = NewDomainError(ErrCodeRecipeNotFound, "Recipe not found")
	ErrUserNotFound        = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrTagNotFound         = NewDomainError(ErrCodeTagNotFound, "One or more tags not found")
	ErrIngredientNotFound  = NewDomainError(ErrCodeIngredientNotFound, "One or more ingredients not found")
	ErrUnauthorised        = NewDomainError(ErrCodeUnauthorised, "Authentication credentials were not provided or are invalid")
	ErrForbidden           = NewDomainError(ErrCodeForbidden, "You do not have permission to perform this action")
	ErrInvalidCredentials  = NewDomainError(ErrCodeInvalidCredentials, "Unable to log in with provided credentials")
	ErrAccountBlocked      = NewDomainError(ErrCodeAccountBlocked, "This account is blocked")
	ErrEmailTaken          = NewDomainError(ErrCodeEmailTaken, "A user with this email or username already exists")
	ErrSelfSubscription    = NewDomainError(ErrCodeSelfSubscription, "You cannot subscribe to yourself")
	ErrDuplicateIngredient = NewDomainError(ErrCodeDuplicateIngredient, "Ingredients must not repeat within a recipe")
	ErrDuplicateTag        = NewDomainError(ErrCodeDuplicateTag, "Tags must not repeat within a recipe")
	ErrInvalidImage        = NewDomainError(ErrCodeInvalidImage, "Image must be a base64 encoded png, jpeg, gif or webp data URI")
	ErrWrongPassword       = NewDomainError(ErrCodeWrongPassword, "Current password is incorrect")
)
