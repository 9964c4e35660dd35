package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that the username or email is taken
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that no matching refresh token row exists.
	// Conditional rotation also returns it when the row was changed or
	// revoked between lookup and update.
	ErrTokenNotFound = errors.New("refresh token not found")
)
