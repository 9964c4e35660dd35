package storage

import (
	"context"
	"time"

	"github.com/stancehq/stance/internal/models"
)

// TokenStorage defines interface for refresh token persistence.
//
// Rows are never physically deleted by the auth flow: rotation rewrites a
// row in place and revocation flips a flag. DeleteExpiredTokens exists for
// retention sweeps only.
type TokenStorage interface {
	// SaveRefreshToken stores a new refresh token record
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshTokenByHash retrieves a refresh token record by its hash.
	// Returns ErrTokenNotFound if no row matches. Revoked and expired rows
	// are still returned; the caller decides what they mean.
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)

	// RotateRefreshToken atomically replaces the hash and expiry of the row
	// identified by id, but only if it still carries oldHash and has not
	// been revoked. Returns ErrTokenNotFound when the conditional update
	// matched no row, which is how exactly one of two racing rotations
	// loses.
	RotateRefreshToken(ctx context.Context, id, oldHash, newHash string, expiresAt time.Time) error

	// RevokeRefreshToken sets revoked on the row with the given id.
	// Idempotent: revoking an already revoked or missing row is not an error.
	RevokeRefreshToken(ctx context.Context, id string) error

	// DeleteExpiredTokens removes all expired token rows.
	// Returns number of deleted rows.
	DeleteExpiredTokens(ctx context.Context) (int, error)
}
