package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stancehq/stance/internal/models"
	"github.com/stancehq/stance/internal/server/storage"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func createTestUser(t *testing.T, s *Storage, username, email string) *models.User {
	t.Helper()

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		FullName:     "Test User",
		Email:        email,
		PasswordHash: "$2a$04$notarealhashbutlookslikeone",
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))

	return user
}

func TestStorage_CreateUser(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	user := createTestUser(t, s, "alice", "alice@example.com")

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.FullName, got.FullName)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.False(t, got.IsAdmin)
}

func TestStorage_CreateUser_UniqueViolations(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	createTestUser(t, s, "alice", "alice@example.com")

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{name: "duplicate username", username: "alice", email: "other@example.com"},
		{name: "duplicate email", username: "other", email: "alice@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Now().UTC()
			err := s.CreateUser(ctx, &models.User{
				ID:           uuid.New().String(),
				Username:     tt.username,
				Email:        tt.email,
				PasswordHash: "x",
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
		})
	}
}

func TestStorage_GetUser(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	user := createTestUser(t, s, "alice", "alice@example.com")

	byUsername, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestStorage_GetUser_NotFound(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	_, err := s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.GetUserByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
