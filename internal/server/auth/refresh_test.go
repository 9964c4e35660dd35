package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stancehq/stance/internal/server/storage"
)

func TestGenerateRefreshToken(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		token, err := generateRefreshToken()
		require.NoError(t, err)

		// 32 bytes base64url, no padding
		assert.Len(t, token, 43)
		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

func TestHashRefreshToken(t *testing.T) {
	hash := HashRefreshToken("some-token")

	assert.Len(t, hash, 64) // hex-encoded SHA-256
	assert.Equal(t, hash, HashRefreshToken("some-token"))
	assert.NotEqual(t, hash, HashRefreshToken("other-token"))
}

func TestRefreshManager_IssueAndLookup(t *testing.T) {
	tokens := newMockTokenStorage()
	m := NewRefreshManager(tokens, 24*time.Hour)
	ctx := context.Background()

	plaintext, record, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)

	assert.NotEmpty(t, plaintext)
	assert.Equal(t, "user-1", record.UserID)
	assert.False(t, record.Revoked)
	// only the hash is in the record
	assert.Equal(t, HashRefreshToken(plaintext), record.TokenHash)
	assert.NotContains(t, record.TokenHash, plaintext)

	found, err := m.Lookup(ctx, plaintext)
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
}

func TestRefreshManager_LookupPolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown token", func(t *testing.T) {
		m := NewRefreshManager(newMockTokenStorage(), 24*time.Hour)
		_, err := m.Lookup(ctx, "never-issued")
		assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	})

	t.Run("expired record behaves as missing", func(t *testing.T) {
		tokens := newMockTokenStorage()
		m := NewRefreshManager(tokens, 24*time.Hour)

		plaintext, record, err := m.Issue(ctx, "user-1")
		require.NoError(t, err)
		tokens.expire(record.ID)

		_, err = m.Lookup(ctx, plaintext)
		assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	})

	t.Run("revoked record behaves as missing", func(t *testing.T) {
		tokens := newMockTokenStorage()
		m := NewRefreshManager(tokens, 24*time.Hour)

		plaintext, record, err := m.Issue(ctx, "user-1")
		require.NoError(t, err)
		require.NoError(t, m.Revoke(ctx, record.ID))

		_, err = m.Lookup(ctx, plaintext)
		assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	})
}

func TestRefreshManager_Rotate(t *testing.T) {
	tokens := newMockTokenStorage()
	m := NewRefreshManager(tokens, 24*time.Hour)
	ctx := context.Background()

	oldPlaintext, record, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)

	newPlaintext, rotated, err := m.Rotate(ctx, record)
	require.NoError(t, err)

	assert.NotEqual(t, oldPlaintext, newPlaintext)
	assert.Equal(t, record.ID, rotated.ID, "rotation keeps the same row")

	// the old plaintext is dead the moment rotation completes
	_, err = m.Lookup(ctx, oldPlaintext)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)

	found, err := m.Lookup(ctx, newPlaintext)
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
}

func TestRefreshManager_RotateTwiceFromSameRecord(t *testing.T) {
	tokens := newMockTokenStorage()
	m := NewRefreshManager(tokens, 24*time.Hour)
	ctx := context.Background()

	_, record, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)

	_, _, err = m.Rotate(ctx, record)
	require.NoError(t, err)

	// a second rotation from the same snapshot no longer matches the
	// stored hash; it must lose
	_, _, err = m.Rotate(ctx, record)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestRefreshManager_RevokeIdempotent(t *testing.T) {
	tokens := newMockTokenStorage()
	m := NewRefreshManager(tokens, 24*time.Hour)
	ctx := context.Background()

	_, record, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, record.ID))
	require.NoError(t, m.Revoke(ctx, record.ID))
	require.NoError(t, m.Revoke(ctx, "no-such-record"))
}
