package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stancehq/stance/internal/models"
	"github.com/stancehq/stance/internal/server/storage"
)

// refreshTokenBytes is the entropy of a refresh token plaintext.
// 32 random bytes, base64url-encoded before leaving the server.
const refreshTokenBytes = 32

// generateRefreshToken creates a new random refresh token plaintext
func generateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashRefreshToken returns the hex-encoded SHA-256 lookup hash of a
// refresh token. The plaintext is already high-entropy random data, so a
// fast hash is enough; bcrypt here would only slow the refresh path down.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RefreshManager issues, looks up, rotates and revokes refresh token
// records. Persistence only ever sees the SHA-256 hash of a token.
type RefreshManager struct {
	tokens storage.TokenStorage
	ttl    time.Duration
}

// NewRefreshManager creates a manager with the given token TTL.
func NewRefreshManager(tokens storage.TokenStorage, ttl time.Duration) *RefreshManager {
	return &RefreshManager{
		tokens: tokens,
		ttl:    ttl,
	}
}

// Issue generates a fresh refresh token for userID and persists its record.
// The returned plaintext is the only copy that will ever exist.
func (m *RefreshManager) Issue(ctx context.Context, userID string) (string, *models.RefreshToken, error) {
	plaintext, err := generateRefreshToken()
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	record := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: HashRefreshToken(plaintext),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
		Revoked:   false,
	}

	if err := m.tokens.SaveRefreshToken(ctx, record); err != nil {
		return "", nil, err
	}

	return plaintext, record, nil
}

// Lookup resolves a presented plaintext to its active record. A token that
// is unknown, revoked or past its expiry yields storage.ErrTokenNotFound;
// expiry is checked here on every call (lazy expiry), regardless of whether
// a retention sweep has removed the row yet.
func (m *RefreshManager) Lookup(ctx context.Context, plaintext string) (*models.RefreshToken, error) {
	record, err := m.tokens.GetRefreshTokenByHash(ctx, HashRefreshToken(plaintext))
	if err != nil {
		return nil, err
	}

	if !record.Active(time.Now()) {
		return nil, storage.ErrTokenNotFound
	}

	return record, nil
}

// Rotate replaces the secret of an existing record in place: same row, new
// hash, new expiry. The update is conditional on the old hash still being
// present and the row not being revoked, so of two concurrent rotations of
// the same record exactly one succeeds and the other gets
// storage.ErrTokenNotFound. On success the old plaintext is permanently
// unusable.
func (m *RefreshManager) Rotate(ctx context.Context, record *models.RefreshToken) (string, *models.RefreshToken, error) {
	plaintext, err := generateRefreshToken()
	if err != nil {
		return "", nil, err
	}

	newHash := HashRefreshToken(plaintext)
	expiresAt := time.Now().Add(m.ttl)

	if err := m.tokens.RotateRefreshToken(ctx, record.ID, record.TokenHash, newHash, expiresAt); err != nil {
		return "", nil, err
	}

	rotated := *record
	rotated.TokenHash = newHash
	rotated.ExpiresAt = expiresAt

	return plaintext, &rotated, nil
}

// Revoke marks the record unusable. Terminal and idempotent.
func (m *RefreshManager) Revoke(ctx context.Context, recordID string) error {
	return m.tokens.RevokeRefreshToken(ctx, recordID)
}
