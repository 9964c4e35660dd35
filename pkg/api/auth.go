// Package api holds the JSON request and response shapes shared between
// the server handlers and the client.
package api

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupResponse is the success body of POST /auth/signup.
// Signup does not issue tokens; log in separately.
type SignupResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued token pair
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime in seconds
}

// RefreshRequest is the body of POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest is the body of POST /auth/logout
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutResponse is the body of POST /auth/logout.
// Success is always true for an unknown token: logout is idempotent and
// must not reveal whether the token ever existed.
type LogoutResponse struct {
	Success bool `json:"success"`
}

// UserResponse is the public view of a user record
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ErrorResponse is the shape of every error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
