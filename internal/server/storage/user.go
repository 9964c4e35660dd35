package storage

import (
	"context"

	"github.com/stancehq/stance/internal/models"
)

// UserStorage defines interface for user credential persistence
type UserStorage interface {
	// CreateUser creates a new user record.
	// Returns ErrUserAlreadyExists if the username or email is taken;
	// the unique constraints are the final arbiter, so callers racing
	// past a pre-check still get this error.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves user by username
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByEmail retrieves user by email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}
