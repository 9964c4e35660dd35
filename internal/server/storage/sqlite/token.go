package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stancehq/stance/internal/models"
	"github.com/stancehq/stance/internal/server/storage"
)

// SaveRefreshToken stores a new refresh token record
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, created_at, expires_at, revoked)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.CreatedAt,
		token.ExpiresAt,
		token.Revoked,
	)

	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	return nil
}

// GetRefreshTokenByHash retrieves a refresh token record by its hash
func (s *Storage) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, created_at, expires_at, revoked
		FROM refresh_tokens
		WHERE token_hash = ?
	`

	token := &models.RefreshToken{}

	err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.Revoked,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return token, nil
}

// RotateRefreshToken atomically replaces the hash and expiry of a token row.
// The WHERE clause re-checks the old hash and the revoked flag, so when two
// rotations race on the same row only the first one matches; the loser sees
// zero affected rows and gets ErrTokenNotFound.
func (s *Storage) RotateRefreshToken(ctx context.Context, id, oldHash, newHash string, expiresAt time.Time) error {
	query := `
		UPDATE refresh_tokens
		SET token_hash = ?, expires_at = ?
		WHERE id = ? AND token_hash = ? AND revoked = 0
	`

	result, err := s.db.ExecContext(ctx, query, newHash, expiresAt, id, oldHash)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrTokenNotFound
	}

	return nil
}

// RevokeRefreshToken sets revoked on the row with the given id.
// There is no revoked -> unrevoked transition, so repeating the update
// is harmless and a missing row is not an error.
func (s *Storage) RevokeRefreshToken(ctx context.Context, id string) error {
	query := `UPDATE refresh_tokens SET revoked = 1 WHERE id = ?`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// DeleteExpiredTokens removes all expired token rows
func (s *Storage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < ?`

	result, err := s.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}
