package models

// Payload is a decoded JSON request body before validation.
type Payload map[string]any

// LoginRequest carries credentials for POST /profiles/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by every endpoint that issues an access token.
// The refresh token travels in an HttpOnly cookie, never in the body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// RegisterResponse is returned by POST /profiles.
type RegisterResponse struct {
	Profile UserProfile `json:"profile"`
	TokenResponse
}

// ListResponse wraps list endpoints so pagination is visible to clients.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse is the body of non-validation error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse is the body of 400 responses with field-keyed messages.
type ValidationErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
