package auth

import "errors"

// Domain errors returned by the auth service. These are expected control
// flow, mapped to HTTP status codes by the handlers; anything else that
// comes out of the service is a persistence failure and maps to 500.
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password. Callers must not be able to tell which one happened.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateUser indicates a signup collision on username or email
	ErrDuplicateUser = errors.New("username or email already exists")

	// ErrInvalidRefreshToken covers a refresh token that is unknown,
	// expired or revoked. One error for all three, so the endpoint cannot
	// be used to probe token state.
	ErrInvalidRefreshToken = errors.New("invalid or revoked refresh token")

	// ErrInvalidAccessToken covers an access token that is malformed,
	// carries a bad signature or has expired. The wrapped detail is for
	// logs only and never reaches a response body.
	ErrInvalidAccessToken = errors.New("invalid access token")
)
